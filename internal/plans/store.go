// Package plans persists the latest rebuild plan and last-run timestamp per
// form. Like the result cache, everything is best-effort: a failed write
// means the next trigger re-plans, and a malformed record reads as absent.
package plans

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/formlens/insight-engine/internal/metrics"
	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/store"
)

const (
	planKeyPrefix    = "insight-engine:plans:"
	lastRunKeyPrefix = "insight-engine:plans:lastrun:"
)

// Store reads and writes rebuild plans over the injected key-value store.
type Store struct {
	kv     store.KV
	logger *slog.Logger
}

// NewStore wraps kv for plan persistence.
func NewStore(kv store.KV, logger *slog.Logger) *Store {
	if kv == nil {
		kv = store.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// SavePlan writes plan as the latest for its form and stamps the last run.
func (s *Store) SavePlan(ctx context.Context, formID string, plan models.AutoRebuildPlan) {
	if formID == "" {
		return
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		s.logger.Warn("plan encode failed", slog.String("form_id", formID), slog.Any("error", err))
		return
	}
	if err := s.kv.Set(ctx, planKeyPrefix+formID, payload, 0); err != nil {
		metrics.ObserveStoreError("plan_save")
		s.logger.Warn("plan write failed", slog.String("form_id", formID), slog.Any("error", err))
		return
	}
	stamp := strconv.FormatInt(plan.CreatedAt, 10)
	if err := s.kv.Set(ctx, lastRunKeyPrefix+formID, []byte(stamp), 0); err != nil {
		metrics.ObserveStoreError("lastrun_save")
		s.logger.Warn("last-run write failed", slog.String("form_id", formID), slog.Any("error", err))
	}
}

// LastPlan returns the most recent plan for formID, or nil when absent or
// unreadable.
func (s *Store) LastPlan(ctx context.Context, formID string) *models.AutoRebuildPlan {
	if formID == "" {
		return nil
	}
	payload, err := s.kv.Get(ctx, planKeyPrefix+formID)
	if err != nil {
		if err != store.ErrNotFound {
			metrics.ObserveStoreError("plan_load")
			s.logger.Warn("plan read failed", slog.String("form_id", formID), slog.Any("error", err))
		}
		return nil
	}
	var plan models.AutoRebuildPlan
	if err := json.Unmarshal(payload, &plan); err != nil || plan.FormID == "" {
		return nil
	}
	return &plan
}

// LastRunAt returns the last-run epoch milliseconds for formID, or 0 when no
// run has been recorded.
func (s *Store) LastRunAt(ctx context.Context, formID string) int64 {
	if formID == "" {
		return 0
	}
	payload, err := s.kv.Get(ctx, lastRunKeyPrefix+formID)
	if err != nil {
		if err != store.ErrNotFound {
			metrics.ObserveStoreError("lastrun_load")
		}
		return 0
	}
	ms, err := strconv.ParseInt(string(payload), 10, 64)
	if err != nil || ms < 0 {
		return 0
	}
	return ms
}

// Clear removes the stored plan and last-run stamp for formID.
func (s *Store) Clear(ctx context.Context, formID string) {
	if formID == "" {
		return
	}
	if err := s.kv.Del(ctx, planKeyPrefix+formID); err != nil {
		metrics.ObserveStoreError("plan_clear")
		s.logger.Warn("plan delete failed", slog.String("form_id", formID), slog.Any("error", err))
	}
	if err := s.kv.Del(ctx, lastRunKeyPrefix+formID); err != nil {
		metrics.ObserveStoreError("lastrun_clear")
	}
}
