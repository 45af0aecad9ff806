// Package worker runs the hourly optimization loop: sync fresh data from
// Meta, analyze every campaign, archive the recommendations and, when a
// campaign opts in, apply the safest ones automatically.
package worker

import (
	"context"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/Moneymanners/meta-ads-bot2/internal/daterange"
	"github.com/Moneymanners/meta-ads-bot2/internal/models"
	"github.com/Moneymanners/meta-ads-bot2/internal/optimizer"
	metasync "github.com/Moneymanners/meta-ads-bot2/internal/sync"
	"github.com/Moneymanners/meta-ads-bot2/internal/telemetry"
	"github.com/Moneymanners/meta-ads-bot2/internal/utils"
)

const DefaultInterval = time.Hour

type Syncer interface {
	Run(ctx context.Context, rng daterange.Range) (metasync.Stats, error)
}

type Storage interface {
	Campaigns(ctx context.Context) ([]models.Campaign, error)
	EffectiveSettings(ctx context.Context, campaignID string) (models.Settings, error)
	HourlyRows(ctx context.Context, campaignID, fromDate, toDate string) ([]models.PerformanceRecord, error)
	InsertRecommendations(ctx context.Context, recs []models.Recommendation) error
	InsertActionLog(ctx context.Context, a models.ActionLog) error
}

type BudgetAPI interface {
	UpdateCampaignBudget(ctx context.Context, campaignID string, dailyBudget float64) error
}

type Worker struct {
	syncer   Syncer
	st       Storage
	api      BudgetAPI
	log      *slog.Logger
	interval time.Duration

	mu      stdsync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(syncer Syncer, st Storage, api BudgetAPI, log *slog.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{syncer: syncer, st: st, api: api, log: log, interval: interval}
}

func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true
	go w.loop(ctx)
	return nil
}

func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	done := w.done
	w.running = false
	w.mu.Unlock()
	<-done
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs one full sync-and-optimize pass. Per-campaign failures
// are logged and skipped so one bad campaign cannot stall the loop.
func (w *Worker) RunOnce(ctx context.Context) {
	now := time.Now()
	rng, _ := daterange.Resolve(daterange.DefaultToken, "", "", now)

	// The Meta API throttles aggressively around the hour mark; retry the
	// sync a couple of times before giving up on this tick.
	err := utils.NewBackoff(2*time.Second, 2).Do(ctx, func(int) error {
		_, err := w.syncer.Run(ctx, rng)
		return err
	})
	if err != nil {
		w.log.Error("worker sync failed", slog.String("err", err.Error()))
		return
	}

	campaigns, err := w.st.Campaigns(ctx)
	if err != nil {
		w.log.Error("worker list campaigns", slog.String("err", err.Error()))
		return
	}

	for _, c := range campaigns {
		if err := w.optimizeCampaign(ctx, c, rng, now); err != nil {
			w.log.Error("worker optimize campaign",
				slog.String("campaign", c.ID), slog.String("err", err.Error()))
		}
	}
}

func (w *Worker) optimizeCampaign(ctx context.Context, c models.Campaign, rng daterange.Range, now time.Time) error {
	settings, err := w.st.EffectiveSettings(ctx, c.ID)
	if err != nil {
		return err
	}
	rows, err := w.st.HourlyRows(ctx, c.ID, rng.FromDate(), rng.ToDate())
	if err != nil {
		return err
	}

	result := optimizer.Analyze(optimizer.Input{
		CampaignID:    c.ID,
		Rows:          rows,
		Settings:      settings,
		CurrentBudget: c.DailyBudget,
		Ref:           now,
		Period:        rng.Label(),
	})
	if result.Status != "analyzed" || len(result.Recommendations) == 0 {
		return nil
	}
	if err := w.st.InsertRecommendations(ctx, result.Recommendations); err != nil {
		return err
	}
	for _, rec := range result.Recommendations {
		telemetry.Recommendations.WithLabelValues(string(rec.Type)).Inc()
	}

	if !settings.AutoOptimize {
		return nil
	}
	for _, rec := range result.Recommendations {
		if !autoApplicable(rec) {
			continue
		}
		if err := w.api.UpdateCampaignBudget(ctx, c.ID, *rec.RecommendedBudget); err != nil {
			w.log.Error("auto-apply budget", slog.String("campaign", c.ID), slog.String("err", err.Error()))
			continue
		}
		if err := w.st.InsertActionLog(ctx, models.ActionLog{
			CampaignID:  c.ID,
			ActionType:  string(rec.Type),
			Details:     rec.Reason,
			BeforeValue: rec.CurrentBudget,
			AfterValue:  rec.RecommendedBudget,
		}); err != nil {
			w.log.Warn("auto-apply action log", slog.String("err", err.Error()))
		}
		telemetry.AutoApplied.Inc()
		w.log.Info("auto-applied recommendation",
			slog.String("campaign", c.ID),
			slog.String("type", string(rec.Type)),
			slog.Float64("budget", *rec.RecommendedBudget))
	}
	return nil
}

// autoApplicable keeps the worker conservative: only high-confidence,
// high-priority budget changes are pushed without a human in the loop.
func autoApplicable(rec models.Recommendation) bool {
	if rec.Type != models.RecBudgetIncrease && rec.Type != models.RecBudgetDecrease {
		return false
	}
	if rec.Confidence != models.ConfidenceHigh {
		return false
	}
	if rec.Priority != models.PriorityHigh && rec.Priority != models.PriorityUrgent {
		return false
	}
	return rec.RecommendedBudget != nil
}
