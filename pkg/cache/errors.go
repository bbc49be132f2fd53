package cache

import "errors"

// ErrCacheMiss is returned by RedisCache.GetJSON when the key is absent.
var ErrCacheMiss = errors.New("cache: miss")
