package postgres

// SQL for persisting per-entity aggregation state, keyed by
// (tenant_id, entity_name, surface). The state column holds the canonical
// serialized stats_agg document — per spec Design Notes §9, "document
// form is stable; struct layout may change" — so a schema migration never
// has to touch the aggregation semantics themselves.
const (
	queryUpsertEntityState = `
		INSERT INTO entity_aggregate_state (tenant_id, entity_name, surface, partition_id, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, entity_name, surface)
		DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`

	queryLoadEntityState = `
		SELECT state
		FROM entity_aggregate_state
		WHERE tenant_id = $1 AND entity_name = $2 AND surface = $3
	`

	queryDeleteEntityState = `
		DELETE FROM entity_aggregate_state
		WHERE tenant_id = $1 AND entity_name = $2 AND surface = $3
	`
)
