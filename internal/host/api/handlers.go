package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/driver"
	"github.com/veridit/jsonb-stats/internal/core/docstat/entity"
	"github.com/veridit/jsonb-stats/internal/host/httperr"
	"github.com/veridit/jsonb-stats/internal/host/parallel"
	"github.com/veridit/jsonb-stats/internal/host/storage/postgres"
)

const defaultTenantID = "default"

// RegisterRoutes registers the host simulation's HTTP surface on r.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/stat", s.HandleStat)
	r.POST("/v1/stats", s.HandleStats)
	r.POST("/v1/stats/agg", s.HandleStatsAgg)
	r.POST("/v1/merge", s.HandleMerge)

	r.PUT("/v1/entities/:name/pairs", s.HandleEntityPairs)
	r.PUT("/v1/entities/:name/agg", s.HandleEntityAgg)
	r.PUT("/v1/entities/:name/merge-agg", s.HandleEntityMergeAgg)
	r.GET("/v1/entities/:name/agg", s.HandleEntityFinalize)
	r.POST("/v1/entities/:name/agg/batch", s.HandleEntityBatchAgg)
}

func tenantID(c *gin.Context) string {
	if t := c.GetHeader("X-Tenant-ID"); t != "" {
		return t
	}
	return defaultTenantID
}

func surfaceParam(c *gin.Context) postgres.Surface {
	if c.Query("surface") == string(postgres.SurfaceMergeAgg) {
		return postgres.SurfaceMergeAgg
	}
	return postgres.SurfaceAgg
}

func writeError(c *gin.Context, err error) {
	status, body := httperr.FromError(err)
	c.JSON(status, body)
}

// writeBindError reports a request-body decoding failure as HTTP 400,
// matching the teacher's convention of never surfacing a bind error as a
// 500 regardless of what underlying error type it wraps.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidJsonError,
		Message:   "request body is not valid JSON for this operation",
		Details:   err.Error(),
	})
}

// HandleStat implements the scalar tag function: POST /v1/stat with body
// {"type":..., "value":...} returns the same document, canonicalized.
func (s *Service) HandleStat(c *gin.Context) {
	var stat docstat.Stat
	if err := c.ShouldBindJSON(&stat); err != nil {
		writeBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, stat)
}

// HandleStats implements stats-from-pairs (spec §5.1): POST /v1/stats with
// body {"<name>": hostValue, ...} returns the tagged stats bundle.
func (s *Service) HandleStats(c *gin.Context) {
	var pairs map[string]interface{}
	if err := c.ShouldBindJSON(&pairs); err != nil {
		writeBindError(c, err)
		return
	}
	stats, err := driver.StatsFromPairs(pairs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// HandleStatsAgg implements agg-from-stats (spec §5.2) without any
// persisted state: POST /v1/stats/agg with a body of one or more stats
// documents returns the finalized stats_agg document.
func (s *Service) HandleStatsAgg(c *gin.Context) {
	docs, err := bindStatsList(c)
	if err != nil {
		writeBindError(c, err)
		return
	}
	agg, err := driver.AggFromStats(nil, docs...)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

// HandleMerge implements merge-of-aggs (spec §5.3) without any persisted
// state: POST /v1/merge with a body array of stats_agg documents returns
// the finalized merge.
func (s *Service) HandleMerge(c *gin.Context) {
	var raws []json.RawMessage
	if err := c.ShouldBindJSON(&raws); err != nil {
		writeBindError(c, err)
		return
	}
	aggs := make([]docstat.StatsAgg, 0, len(raws))
	for _, raw := range raws {
		var agg docstat.StatsAgg
		if err := json.Unmarshal(raw, &agg); err != nil {
			writeError(c, err)
			return
		}
		aggs = append(aggs, agg)
	}
	merged, err := driver.MergeOfAggs(aggs...)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, merged)
}

// bindStatsList accepts either a single stats document or a JSON array of
// them, so a caller observing one entity at a time doesn't have to wrap
// its body in an array.
func bindStatsList(c *gin.Context) ([]docstat.Stats, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	trimmed := trimLeadingSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []docstat.Stats
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var doc docstat.Stats
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return []docstat.Stats{doc}, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return b[i:]
}

// HandleEntityPairs accumulates a pairs document into the entity's
// persisted running aggregate: PUT /v1/entities/:name/pairs.
func (s *Service) HandleEntityPairs(c *gin.Context) {
	var pairs map[string]interface{}
	if err := c.ShouldBindJSON(&pairs); err != nil {
		writeBindError(c, err)
		return
	}
	stats, err := driver.StatsFromPairs(pairs)
	if err != nil {
		writeError(c, err)
		return
	}
	s.accumulateIntoEntity(c, []docstat.Stats{stats})
}

// HandleEntityAgg accumulates one or more stats documents into the
// entity's persisted running aggregate: PUT /v1/entities/:name/agg.
func (s *Service) HandleEntityAgg(c *gin.Context) {
	docs, err := bindStatsList(c)
	if err != nil {
		writeBindError(c, err)
		return
	}
	s.accumulateIntoEntity(c, docs)
}

func (s *Service) accumulateIntoEntity(c *gin.Context, docs []docstat.Stats) {
	ctx := c.Request.Context()
	tenant, name := tenantID(c), c.Param("name")

	state, err := s.loadOrNewState(ctx, tenant, name, postgres.SurfaceAgg)
	if err != nil {
		writeError(c, err)
		return
	}
	for _, doc := range docs {
		for varName, stat := range doc {
			if err := state.Observe(varName, stat); err != nil {
				writeError(c, err)
				return
			}
		}
	}
	snapshot := driver.Serialize(state)
	if err := s.store.SaveState(ctx, tenant, name, postgres.SurfaceAgg, snapshot); err != nil {
		s.logError("entity-agg-save", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// HandleEntityMergeAgg merges an incoming stats_agg document into the
// entity's persisted merge-agg running aggregate: PUT
// /v1/entities/:name/merge-agg.
func (s *Service) HandleEntityMergeAgg(c *gin.Context) {
	var incoming docstat.StatsAgg
	if err := c.ShouldBindJSON(&incoming); err != nil {
		writeBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	tenant, name := tenantID(c), c.Param("name")

	state, err := s.loadOrNewState(ctx, tenant, name, postgres.SurfaceMergeAgg)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := state.MergeAgg(incoming); err != nil {
		writeError(c, err)
		return
	}
	snapshot := driver.Serialize(state)
	if err := s.store.SaveState(ctx, tenant, name, postgres.SurfaceMergeAgg, snapshot); err != nil {
		s.logError("entity-merge-agg-save", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// HandleEntityFinalize returns the finalized stats_agg document for one
// entity's surface: GET /v1/entities/:name/agg?surface=agg|merge_agg.
// Duplicate concurrent requests for the same key collapse into one
// Store.LoadState call via singleflight.
func (s *Service) HandleEntityFinalize(c *gin.Context) {
	ctx := c.Request.Context()
	tenant, name, surface := tenantID(c), c.Param("name"), surfaceParam(c)
	key := tenant + "/" + name + "/" + string(surface)

	result, err, _ := s.finalizeGroup.Do(key, func() (interface{}, error) {
		agg, err := s.store.LoadState(ctx, tenant, name, surface)
		if err != nil {
			return nil, err
		}
		state, err := driver.Deserialize(agg)
		if err != nil {
			return nil, err
		}
		return driver.Final(state), nil
	})
	if err != nil {
		if err == postgres.ErrNotFound {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: "entity_not_found",
				Message:   "no aggregate state stored for this entity and surface",
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.(docstat.StatsAgg))
}

// HandleEntityBatchAgg accumulates a batch of stats documents into the
// entity's agg surface using the worker-pool parallel path: POST
// /v1/entities/:name/agg/batch.
func (s *Service) HandleEntityBatchAgg(c *gin.Context) {
	var docs []docstat.Stats
	if err := c.ShouldBindJSON(&docs); err != nil {
		writeBindError(c, err)
		return
	}

	partial, err := parallel.BuildEntityState(docs, s.workerCount)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	tenant, name := tenantID(c), c.Param("name")

	state, err := s.loadOrNewState(ctx, tenant, name, postgres.SurfaceAgg)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := state.Combine(partial); err != nil {
		writeError(c, err)
		return
	}

	snapshot := driver.Serialize(state)
	if err := s.store.SaveState(ctx, tenant, name, postgres.SurfaceAgg, snapshot); err != nil {
		s.logError("entity-batch-agg-save", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Service) loadOrNewState(ctx context.Context, tenant, name string, surface postgres.Surface) (*entity.State, error) {
	agg, err := s.store.LoadState(ctx, tenant, name, surface)
	if err == postgres.ErrNotFound {
		return entity.New(), nil
	}
	if err != nil {
		return nil, err
	}
	return driver.Deserialize(agg)
}
