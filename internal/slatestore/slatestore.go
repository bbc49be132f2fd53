// Package slatestore is an in-memory stand-in for the (out-of-scope)
// constraint/ontology store collaborator (spec.md §6.2): it resolves a
// slate id to its ConstraintSpec and driver universe. A production
// deployment replaces this with a call to the ontology service; this
// implementation exists so cmd/server can run standalone, mirroring the
// role internal/scenario.MockSource plays for the scenario source.
package slatestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

// ErrSlateNotFound is returned by Lookup when slateID is unregistered.
var ErrSlateNotFound = fmt.Errorf("slatestore: slate not found")

// Slate bundles one slate's constraint spec and driver universe.
type Slate struct {
	Spec    model.ConstraintSpec
	Drivers []model.DriverRecord
}

// Store is a concurrency-safe in-memory slate registry.
type Store struct {
	mu     sync.RWMutex
	slates map[string]Slate
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{slates: make(map[string]Slate)}
}

// Register adds or replaces a slate.
func (s *Store) Register(slateID string, spec model.ConstraintSpec, drivers []model.DriverRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slates[slateID] = Slate{Spec: spec, Drivers: drivers}
}

// Lookup implements handlers.ConstraintStore.
func (s *Store) Lookup(ctx context.Context, slateID string) (model.ConstraintSpec, []model.DriverRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.ConstraintSpec{}, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	slate, ok := s.slates[slateID]
	if !ok {
		return model.ConstraintSpec{}, nil, fmt.Errorf("%w: %s", ErrSlateNotFound, slateID)
	}
	return slate.Spec, slate.Drivers, nil
}
