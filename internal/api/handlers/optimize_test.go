package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zax-lab/nascar-dfs-optimizer-sub000/internal/model"
)

type fakeStore struct {
	spec    model.ConstraintSpec
	drivers []model.DriverRecord
}

func (f *fakeStore) Lookup(ctx context.Context, slateID string) (model.ConstraintSpec, []model.DriverRecord, error) {
	return f.spec, f.drivers, nil
}

func sampleDrivers(n int) []model.DriverRecord {
	out := make([]model.DriverRecord, n)
	for i := 0; i < n; i++ {
		out[i] = model.DriverRecord{
			DriverID:        i,
			DisplayID:       "driver-" + string(rune('A'+i)),
			Name:            "Driver " + string(rune('A'+i)),
			Team:            "Team" + string(rune('A'+i%4)),
			Salary:          6000 + i*100,
			ProjectedPoints: 40 + float64(i),
		}
	}
	return out
}

func newTestRouter(h *OptimizeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/optimize", h.Optimize)
	return r
}

func TestOptimize_RejectsLowScenarioCount(t *testing.T) {
	store := &fakeStore{spec: model.DefaultConstraintSpec(), drivers: sampleDrivers(10)}
	h := NewOptimizeHandler(store, nil, nil, logrus.New())
	router := newTestRouter(h)

	body, _ := json.Marshal(OptimizeRequest{SlateID: "slate-1", NScenarios: 10, NLineups: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimize_ProducesPortfolio(t *testing.T) {
	store := &fakeStore{spec: model.DefaultConstraintSpec(), drivers: sampleDrivers(12)}
	h := NewOptimizeHandler(store, nil, nil, logrus.New())
	router := newTestRouter(h)

	body, _ := json.Marshal(OptimizeRequest{SlateID: "slate-1", NScenarios: 1000, NLineups: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Lineups)
	for _, l := range resp.Lineups {
		assert.Len(t, l.DriverIDs, 6)
	}
}

func TestOptimize_UnknownSlateReturns404(t *testing.T) {
	store := &erroringStore{}
	h := NewOptimizeHandler(store, nil, nil, logrus.New())
	router := newTestRouter(h)

	body, _ := json.Marshal(OptimizeRequest{SlateID: "missing", NScenarios: 1000, NLineups: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type erroringStore struct{}

func (e *erroringStore) Lookup(ctx context.Context, slateID string) (model.ConstraintSpec, []model.DriverRecord, error) {
	return model.ConstraintSpec{}, nil, assertNotFoundErr
}

var assertNotFoundErr = &notFoundErr{}

type notFoundErr struct{}

func (n *notFoundErr) Error() string { return "slate not found" }
