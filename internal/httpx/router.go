package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Moneymanners/meta-ads-bot2/internal/cache"
	"github.com/Moneymanners/meta-ads-bot2/internal/daterange"
	"github.com/Moneymanners/meta-ads-bot2/internal/models"
	"github.com/Moneymanners/meta-ads-bot2/internal/sync"
	"github.com/Moneymanners/meta-ads-bot2/internal/telemetry"
	"github.com/Moneymanners/meta-ads-bot2/internal/utils"
)

// Storage is everything the handlers read and write through the store.
type Storage interface {
	Campaigns(ctx context.Context) ([]models.Campaign, error)
	Campaign(ctx context.Context, id string) (*models.Campaign, error)
	HourlyRows(ctx context.Context, campaignID, fromDate, toDate string) ([]models.PerformanceRecord, error)
	RecentRows(ctx context.Context, campaignID string, limit int) ([]models.PerformanceRecord, error)
	InsertRecommendations(ctx context.Context, recs []models.Recommendation) error
	PendingRecommendations(ctx context.Context) ([]models.StoredRecommendation, error)
	Recommendation(ctx context.Context, id string) (*models.StoredRecommendation, error)
	UpdateRecommendationStatus(ctx context.Context, id, status string, appliedAt *time.Time) error
	InsertActionLog(ctx context.Context, a models.ActionLog) error
	Settings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, v models.Settings) error
	CampaignSettings(ctx context.Context, campaignID string) (*models.CampaignSettings, error)
	UpsertCampaignSettings(ctx context.Context, cs models.CampaignSettings) error
	EffectiveSettings(ctx context.Context, campaignID string) (models.Settings, error)
}

// BudgetAPI is the slice of the Meta client used when applying a
// recommendation.
type BudgetAPI interface {
	UpdateCampaignBudget(ctx context.Context, campaignID string, dailyBudget float64) error
}

// Syncer triggers a Meta data pull.
type Syncer interface {
	Run(ctx context.Context, rng daterange.Range) (sync.Stats, error)
}

type Deps struct {
	Log        *slog.Logger
	Store      Storage
	Meta       BudgetAPI
	Sync       Syncer
	Cache      *cache.Cache
	CronSecret string
	Now        func() time.Time // nil means time.Now
}

type server struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &server{Deps: d}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(telemetry.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", telemetry.Handler())

	mux.Route("/api", func(api chi.Router) {
		api.Post("/sync", s.handleSync)
		api.Get("/campaigns", s.handleCampaigns)
		api.Get("/analyze", s.handleAnalyze)
		api.Get("/daily-analysis", s.handleDailyAnalysis)
		api.Get("/recommendations", s.handleRecommendations)
		api.Post("/apply-recommendation", s.handleApplyRecommendation)
		api.Get("/settings", s.handleGetSettings)
		api.Post("/settings", s.handleUpdateSettings)
		api.Get("/campaign-settings", s.handleGetCampaignSettings)
		api.Post("/campaign-settings", s.handleUpdateCampaignSettings)
		api.Get("/impact", s.handleImpact)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
