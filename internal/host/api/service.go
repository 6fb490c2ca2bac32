// Package api exposes the aggregation core over HTTP, playing the role a
// relational database host otherwise plays: it dispatches the scalar
// functions and runs the aggregate state machine for the three surfaces,
// persisting per-entity state through Store. Handler style mirrors the
// teacher's internal/ingestion and internal/projection services.
package api

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/host/storage/postgres"
)

// Store is the per-entity aggregation-state persistence the service needs.
// Implemented by internal/host/storage/postgres.Adapter.
type Store interface {
	SaveState(ctx context.Context, tenantID, entityName string, surface postgres.Surface, agg docstat.StatsAgg) error
	LoadState(ctx context.Context, tenantID, entityName string, surface postgres.Surface) (docstat.StatsAgg, error)
}

// Service implements the host simulation's HTTP surface.
type Service struct {
	store       Store
	workerCount int

	// finalizeGroup collapses duplicate concurrent finalize reads for the
	// same (tenant, entity, surface) key into one Store.LoadState + driver.Final
	// call, mirroring the teacher's schema.Validator cache warm-up.
	finalizeGroup singleflight.Group
}

// New constructs a Service backed by store, with workerCount controlling
// the batch-agg endpoint's parallel fan-out.
func New(store Store, workerCount int) *Service {
	if workerCount <= 0 {
		workerCount = 10
	}
	return &Service{store: store, workerCount: workerCount}
}

func (s *Service) logError(route string, err error) {
	slog.Error("[API] request failed", "route", route, "error", err)
}
