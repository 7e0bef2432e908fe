// Package api exposes the insight engine over HTTP for the SaaS layer.
// Handlers are thin: decode, delegate to the engine or planner, encode.
package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formlens/insight-engine/internal/engine"
	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/plans"
	"github.com/formlens/insight-engine/internal/utils"
)

const latencyLogEvery = 20

// Handlers bundles the HTTP handlers and their dependencies.
type Handlers struct {
	logger    *slog.Logger
	engine    *engine.Engine
	planner   *engine.Planner
	plans     *plans.Store
	latencies *utils.LatencyTracker
	analyzed  atomic.Int64
}

// NewHandlers wires the handler set.
func NewHandlers(logger *slog.Logger, eng *engine.Engine, planner *engine.Planner, planStore *plans.Store) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		logger:    logger,
		engine:    eng,
		planner:   planner,
		plans:     planStore,
		latencies: utils.NewLatencyTracker(256),
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type analyzeRequest struct {
	FormID       string               `json:"formId" binding:"required"`
	ForceRefresh bool                 `json:"forceRefresh"`
	Inputs       models.ModularInputs `json:"inputs"`
}

// Analyze runs the metric aggregator for one form snapshot.
func (h *Handlers) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	started := time.Now()
	result := h.engine.AnalyzeAllMetrics(c.Request.Context(), req.Inputs, engine.AnalyzeOptions{
		FormID:       req.FormID,
		ForceRefresh: req.ForceRefresh,
	})
	h.latencies.Observe(time.Since(started))

	if n := h.analyzed.Add(1); n%latencyLogEvery == 0 {
		h.logger.Info("analysis latency",
			slog.Int64("analyses", n),
			slog.Duration("p95", h.latencies.Percentile(95)))
	}

	c.JSON(http.StatusOK, result)
}

type triggerRequest struct {
	FormID        string            `json:"formId"`
	ResponseCount int               `json:"responseCount"`
	Insights      any               `json:"insights"`
	MinIntervalMs int64             `json:"minIntervalMs"`
	LastRunAt     int64             `json:"lastRunAt"`
	LastPlanHash  string            `json:"lastPlanHash"`
	UserPlan      string            `json:"userPlan"`
	QuestionIDMap map[string]string `json:"questionIdMap"`
}

// TriggerRebuild evaluates a rebuild trigger. Ineligible triggers still
// return 200 with an eligible=false plan; ineligibility is not an error.
func (h *Handlers) TriggerRebuild(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	plan := h.planner.TriggerSurveyRebuildIfNeeded(c.Request.Context(), req.Insights, engine.TriggerOptions{
		FormID:        req.FormID,
		ResponseCount: req.ResponseCount,
		LastRunAt:     req.LastRunAt,
		MinInterval:   time.Duration(req.MinIntervalMs) * time.Millisecond,
		UserPlan:      req.UserPlan,
		LastPlanHash:  req.LastPlanHash,
		QuestionIDMap: req.QuestionIDMap,
	})
	c.JSON(http.StatusOK, plan)
}

// LastPlan returns the stored plan for a form.
func (h *Handlers) LastPlan(c *gin.Context) {
	formID := c.Param("formId")
	plan := h.plans.LastPlan(c.Request.Context(), formID)
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plan for form " + formID})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// LastRun returns the last-run timestamp for a form.
func (h *Handlers) LastRun(c *gin.Context) {
	formID := c.Param("formId")
	lastRunAt := h.plans.LastRunAt(c.Request.Context(), formID)
	if lastRunAt == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recorded run for form " + formID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastRunAt": lastRunAt})
}

// ClearPlan removes the stored plan and last-run stamp for a form.
func (h *Handlers) ClearPlan(c *gin.Context) {
	h.plans.Clear(c.Request.Context(), c.Param("formId"))
	c.Status(http.StatusNoContent)
}
