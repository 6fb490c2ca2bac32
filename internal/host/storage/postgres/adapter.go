// Package postgres persists per-entity aggregation state for the host
// simulation, mirroring the teacher's internal/core/storage/postgres
// adapters: a thin database/sql wrapper with prepared statements over
// github.com/lib/pq, fronted by a small domain-specific interface.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" driver

	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/partition"
)

const connectPingTimeout = 5 * time.Second

// ErrNotFound is returned by LoadState when no state is stored yet for the
// given tenant/entity/surface triple.
var ErrNotFound = errors.New("postgres: entity state not found")

// Surface identifies which persisted aggregate surface a stored state
// belongs to, since the same entity name can be aggregated under more
// than one surface concurrently. There are two: agg (which also receives
// pairs accumulated through the pairs endpoint) and merge_agg.
type Surface string

const (
	SurfaceAgg      Surface = "agg"
	SurfaceMergeAgg Surface = "merge_agg"
)

// Adapter implements per-entity aggregation-state storage for PostgreSQL.
type Adapter struct {
	db *sql.DB

	stmtUpsert *sql.Stmt
	stmtLoad   *sql.Stmt
	stmtDelete *sql.Stmt
}

// NewAdapter opens a PostgreSQL connection pool and prepares the
// adapter's statements. Schema must already exist — run
// internal/host/migrations before calling this.
func NewAdapter(dsn string, maxOpenConns, maxIdleConns int) (*Adapter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	stmtUpsert, err := db.Prepare(queryUpsertEntityState)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare upsert statement: %w", err)
	}
	stmtLoad, err := db.Prepare(queryLoadEntityState)
	if err != nil {
		stmtUpsert.Close()
		db.Close()
		return nil, fmt.Errorf("failed to prepare load statement: %w", err)
	}
	stmtDelete, err := db.Prepare(queryDeleteEntityState)
	if err != nil {
		stmtUpsert.Close()
		stmtLoad.Close()
		db.Close()
		return nil, fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	slog.Info("[Postgres] Connection pool configured", "max_open_conns", maxOpenConns, "max_idle_conns", maxIdleConns)

	return &Adapter{db: db, stmtUpsert: stmtUpsert, stmtLoad: stmtLoad, stmtDelete: stmtDelete}, nil
}

// DB exposes the underlying connection pool, e.g. for migrations or health checks.
func (a *Adapter) DB() *sql.DB { return a.db }

func (a *Adapter) Close() error {
	a.stmtUpsert.Close()
	a.stmtLoad.Close()
	a.stmtDelete.Close()
	return a.db.Close()
}

// SaveState upserts the canonical serialized form of agg for one entity's
// surface. partition_id is materialized from the tenant ID at write time
// so a future resharding of this table can split on it without touching
// the aggregation semantics.
func (a *Adapter) SaveState(ctx context.Context, tenantID, entityName string, surface Surface, agg docstat.StatsAgg) error {
	raw, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("marshal entity state: %w", err)
	}
	_, err = a.stmtUpsert.ExecContext(ctx, tenantID, entityName, string(surface), partition.For(tenantID), raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert entity state: %w", err)
	}
	return nil
}

// LoadState loads the previously stored stats_agg document for one
// entity's surface. Returns ErrNotFound if nothing has been saved yet.
func (a *Adapter) LoadState(ctx context.Context, tenantID, entityName string, surface Surface) (docstat.StatsAgg, error) {
	var raw []byte
	err := a.stmtLoad.QueryRowContext(ctx, tenantID, entityName, string(surface)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entity state: %w", err)
	}
	var agg docstat.StatsAgg
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("decode entity state: %w", err)
	}
	return agg, nil
}

// DeleteState removes the stored state for one entity's surface, if any.
func (a *Adapter) DeleteState(ctx context.Context, tenantID, entityName string, surface Surface) error {
	_, err := a.stmtDelete.ExecContext(ctx, tenantID, entityName, string(surface))
	if err != nil {
		return fmt.Errorf("delete entity state: %w", err)
	}
	return nil
}
