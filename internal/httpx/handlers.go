package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Moneymanners/meta-ads-bot2/internal/daterange"
	"github.com/Moneymanners/meta-ads-bot2/internal/models"
	"github.com/Moneymanners/meta-ads-bot2/internal/optimizer"
	"github.com/Moneymanners/meta-ads-bot2/internal/store"
	"github.com/Moneymanners/meta-ads-bot2/internal/telemetry"
)

// impactWindowRows is roughly the last 7 days of hourly rows.
const impactWindowRows = 168

func (s *server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.CronSecret != "" {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.CronSecret {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
	}
	rng, err := daterange.Resolve(r.URL.Query().Get("range"), r.URL.Query().Get("start"), r.URL.Query().Get("end"), s.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := s.Sync.Run(r.Context(), rng)
	if err != nil {
		s.Log.Error("sync failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Data synced successfully",
		"stats":   stats,
	})
}

func (s *server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.Store.Campaigns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaignId")
	if campaignID == "" {
		writeError(w, http.StatusBadRequest, "Campaign ID is required")
		return
	}
	rangeToken := r.URL.Query().Get("range")
	if rangeToken == "" {
		rangeToken = daterange.DefaultToken
	}

	rng, err := daterange.Resolve(rangeToken, r.URL.Query().Get("start"), r.URL.Query().Get("end"), s.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Key on the resolved window, not the token: custom ranges share one
	// token, and named tokens shift at midnight.
	cacheKey := rangeToken + ":" + rng.FromDate() + ":" + rng.ToDate()
	if cached, ok := s.Cache.Analysis(r.Context(), campaignID, cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	settings, err := s.Store.EffectiveSettings(r.Context(), campaignID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rows, err := s.Store.HourlyRows(r.Context(), campaignID, rng.FromDate(), rng.ToDate())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	budget := optimizer.DefaultDailyBudget
	if c, err := s.Store.Campaign(r.Context(), campaignID); err == nil && c.DailyBudget > 0 {
		budget = c.DailyBudget
	}

	in := optimizer.Input{
		CampaignID:    campaignID,
		Rows:          rows,
		Settings:      settings,
		CurrentBudget: budget,
		Ref:           s.Now(),
		Period:        rng.Label(),
	}
	result := optimizer.Analyze(in)

	if result.Status == "analyzed" {
		telemetry.Analyses.WithLabelValues(result.Strategy).Inc()
	}
	for _, rec := range result.Recommendations {
		telemetry.Recommendations.WithLabelValues(string(rec.Type)).Inc()
	}

	if result.Status == "analyzed" && len(result.Recommendations) > 0 {
		if err := s.Store.InsertRecommendations(r.Context(), result.Recommendations); err != nil {
			// Archiving is best-effort; the analysis itself is still good.
			s.Log.Warn("archive recommendations", slog.String("err", err.Error()))
		}
	}

	s.Cache.PutAnalysis(r.Context(), campaignID, cacheKey, result)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleDailyAnalysis(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaignId")
	if campaignID == "" {
		writeError(w, http.StatusBadRequest, "Campaign ID required")
		return
	}
	rangeToken := r.URL.Query().Get("range")
	if rangeToken == "" {
		rangeToken = "last_30_days"
	}
	rng, err := daterange.Resolve(rangeToken, r.URL.Query().Get("start"), r.URL.Query().Get("end"), s.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings, err := s.Store.EffectiveSettings(r.Context(), campaignID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rows, err := s.Store.HourlyRows(r.Context(), campaignID, rng.FromDate(), rng.ToDate())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, optimizer.AnalyzeDaily(optimizer.Input{
		CampaignID: campaignID,
		Rows:       rows,
		Settings:   settings,
	}))
}

func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Store.PendingRecommendations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []models.StoredRecommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

type applyRequest struct {
	RecommendationID string `json:"recommendationId"`
	Action           string `json:"action"`
}

func (s *server) handleApplyRecommendation(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecommendationID == "" || req.Action == "" {
		writeError(w, http.StatusBadRequest, "Recommendation ID and action required")
		return
	}
	switch req.Action {
	case "apply", "reject", "skip":
	default:
		writeError(w, http.StatusBadRequest, "Invalid action. Use: apply, reject, or skip")
		return
	}

	if req.Action != "apply" {
		status := "rejected"
		if req.Action == "skip" {
			status = "skipped"
		}
		if err := s.Store.UpdateRecommendationStatus(r.Context(), req.RecommendationID, status, nil); err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, store.ErrNotFound) {
				code = http.StatusNotFound
			}
			writeError(w, code, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Recommendation " + status})
		return
	}

	rec, err := s.Store.Recommendation(r.Context(), req.RecommendationID)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			code = http.StatusNotFound
		}
		writeError(w, code, "Recommendation not found")
		return
	}

	if isBudgetType(rec.Type) {
		if rec.RecommendedValue == nil {
			writeError(w, http.StatusConflict, "recommendation has no budget value to apply")
			return
		}
		if err := s.Meta.UpdateCampaignBudget(r.Context(), rec.CampaignID, *rec.RecommendedValue); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		if err := s.Store.InsertActionLog(r.Context(), models.ActionLog{
			CampaignID:  rec.CampaignID,
			ActionType:  rec.Type,
			Details:     rec.Reason,
			BeforeValue: rec.CurrentValue,
			AfterValue:  rec.RecommendedValue,
		}); err != nil {
			s.Log.Warn("action log", slog.String("err", err.Error()))
		}
	}

	now := s.Now()
	if err := s.Store.UpdateRecommendationStatus(r.Context(), req.RecommendationID, "applied", &now); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Recommendation applied successfully"})
}

func isBudgetType(t string) bool {
	return t == string(models.RecBudgetIncrease) || t == string(models.RecBudgetDecrease)
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.Store.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (s *server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var v models.Settings
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if v.MinDataHours <= 0 {
		v.MinDataHours = models.DefaultSettings().MinDataHours
	}
	if err := s.Store.UpdateSettings(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *server) handleGetCampaignSettings(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaignId")
	if campaignID == "" {
		writeError(w, http.StatusBadRequest, "Campaign ID required")
		return
	}
	cs, err := s.Store.CampaignSettings(r.Context(), campaignID)
	if errors.Is(err, store.ErrNotFound) {
		defaults := models.DefaultSettings()
		cs = &models.CampaignSettings{
			CampaignID:        campaignID,
			AutoOptimize:      defaults.AutoOptimize,
			MaxBudgetIncrease: defaults.MaxBudgetIncrease,
			MaxBudgetDecrease: defaults.MaxBudgetDecrease,
		}
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": cs})
}

func (s *server) handleUpdateCampaignSettings(w http.ResponseWriter, r *http.Request) {
	var cs models.CampaignSettings
	if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(cs.CampaignID) == "" {
		writeError(w, http.StatusBadRequest, "campaign_id required")
		return
	}
	if err := s.Store.UpsertCampaignSettings(r.Context(), cs); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *server) handleImpact(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaignId")
	if campaignID == "" {
		writeError(w, http.StatusBadRequest, "Campaign ID required")
		return
	}
	cs, err := s.Store.CampaignSettings(r.Context(), campaignID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !cs.AutoOptimize) {
		writeJSON(w, http.StatusOK, map[string]any{"impact": nil, "message": "Auto-optimize not enabled"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows, err := s.Store.RecentRows(r.Context(), campaignID, impactWindowRows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"impact": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"impact": estimateImpact(rows, cs.UpdatedAt)})
}

// estimateImpact backs a rough before/after story out of the last week of
// rows, assuming breakeven ROAS before optimization kicked in.
func estimateImpact(rows []models.PerformanceRecord, enabledAt time.Time) models.Impact {
	var spend, revenue float64
	purchases := 0
	for _, r := range rows {
		spend += r.Spend
		revenue += r.Revenue
		purchases += r.Purchases
	}

	currentROAS := 0.0
	if spend > 0 {
		currentROAS = revenue / spend
	}
	currentCPA := 0.0
	if purchases > 0 {
		currentCPA = spend / float64(purchases)
	}
	dailyProfit := (revenue - spend) / 7

	beforeROAS := 1.0
	beforeCPA := currentCPA * 1.15
	beforeProfit := dailyProfit * 0.85

	extraProfit := (dailyProfit - beforeProfit) * 7
	if extraProfit < 0 {
		extraProfit = 0
	}
	cpaImprovement := 0.0
	if beforeCPA > 0 {
		cpaImprovement = (beforeCPA - currentCPA) / beforeCPA * 100
	}
	return models.Impact{
		BeforeROAS:       beforeROAS,
		AfterROAS:        currentROAS,
		BeforeCPA:        beforeCPA,
		AfterCPA:         currentCPA,
		ROASImprovement:  (currentROAS - beforeROAS) / beforeROAS * 100,
		CPAImprovement:   cpaImprovement,
		TotalExtraProfit: extraProfit,
		DaysSinceEnabled: 7,
		EnabledAt:        enabledAt,
	}
}
