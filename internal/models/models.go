package models

import "time"

// PerformanceRecord is one hour of campaign delivery as synced from the
// Meta insights API. Records are immutable once stored.
type PerformanceRecord struct {
	CampaignID   string    `json:"campaign_id"`
	CampaignName string    `json:"campaign_name,omitempty"`
	Date         time.Time `json:"date"`
	Hour         int       `json:"hour"` // 0-23, advertiser timezone
	Spend        float64   `json:"spend"`
	Impressions  int       `json:"impressions"`
	Clicks       int       `json:"clicks"`
	Purchases    int       `json:"purchases"`
	Revenue      float64   `json:"revenue"`
}

// HourBucket accumulates all records that share an hour-of-day (or weekday,
// for the daily variant) across the analysis window.
type HourBucket struct {
	Index            int     `json:"hour"`
	TotalSpend       float64 `json:"total_spend"`
	TotalPurchases   int     `json:"total_purchases"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalClicks      int     `json:"total_clicks"`
	TotalImpressions int     `json:"total_impressions"`
	DataPoints       int     `json:"data_points"`
	ROAS             float64 `json:"avg_roas"`
	CPA              float64 `json:"avg_cpa"`
	CVR              float64 `json:"avg_cvr"`
}

// ScoreSet holds the normalized sub-scores and the weighted composite for
// one bucket. All values are integers clamped to [0,100].
type ScoreSet struct {
	ROAS      int `json:"roas"`
	CPA       int `json:"cpa"`
	CVR       int `json:"cvr"`
	Volume    int `json:"volume"`
	Composite int `json:"composite"`
}

type BucketMetrics struct {
	Spend     float64 `json:"spend"`
	Purchases int     `json:"purchases"`
	Revenue   float64 `json:"revenue"`
	ROAS      float64 `json:"roas"`
	CPA       float64 `json:"cpa"`
	CVR       float64 `json:"cvr"`
}

// BucketAnalysis is one scored bucket in an AnalysisResult.
type BucketAnalysis struct {
	Hour           int           `json:"hour"`
	Metrics        BucketMetrics `json:"metrics"`
	Scores         ScoreSet      `json:"scores"`
	Recommendation Label         `json:"recommendation"`
	Confidence     Confidence    `json:"confidence"`
}

// Label is the per-bucket recommendation derived from the composite score.
type Label string

const (
	LabelIncrease Label = "increase"
	LabelMaintain Label = "maintain"
	LabelMonitor  Label = "monitor"
	LabelDecrease Label = "decrease"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type RecommendationType string

const (
	RecDayparting         RecommendationType = "dayparting"
	RecBudgetIncrease     RecommendationType = "budget_increase"
	RecBudgetDecrease     RecommendationType = "budget_decrease"
	RecImmediateAction    RecommendationType = "immediate_action"
	RecROASOptimization   RecommendationType = "roas_optimization"
	RecScaling            RecommendationType = "scaling"
	RecBudgetReallocation RecommendationType = "budget_reallocation"
	RecMonitoring         RecommendationType = "monitoring"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ImpactEstimate is the rough projected effect attached to a dayparting
// recommendation, for display only.
type ImpactEstimate struct {
	ROASImprovement string `json:"roasImprovement"`
	CPAReduction    string `json:"cpaReduction"`
}

// Recommendation is one campaign-level action derived from the scored
// buckets. Optional fields are omitted when a rule has nothing to say.
type Recommendation struct {
	CampaignID        string             `json:"campaignId"`
	Type              RecommendationType `json:"type"`
	Priority          Priority           `json:"priority"`
	Reason            string             `json:"reason"`
	SuggestedAction   string             `json:"suggestedAction,omitempty"`
	Confidence        Confidence         `json:"confidence,omitempty"`
	Hour              *int               `json:"hour,omitempty"`
	PeakHours         []int              `json:"peakHours,omitempty"`
	WeakHours         []int              `json:"weakHours,omitempty"`
	CurrentBudget     *float64           `json:"currentBudget,omitempty"`
	RecommendedBudget *float64           `json:"recommendedBudget,omitempty"`
	PercentChange     *int               `json:"percentChange,omitempty"`
	Metrics           *BucketMetrics     `json:"metrics,omitempty"`
	EstimatedImpact   *ImpactEstimate    `json:"estimatedImpact,omitempty"`
}

type OverallMetrics struct {
	TotalSpend     float64 `json:"totalSpend"`
	TotalPurchases int     `json:"totalPurchases"`
	TotalRevenue   float64 `json:"totalRevenue"`
	OverallROAS    float64 `json:"overallRoas"`
	OverallCPA     float64 `json:"overallCpa"`
}

type Summary struct {
	PeakPerformanceHours string `json:"peakPerformanceHours"`
	UnderperformingHours string `json:"underperformingHours"`
	ActionItemsCount     int    `json:"actionItemsCount"`
	TopRecommendation    string `json:"topRecommendation"`
}

// AnalysisResult is the sole output contract of the optimizer core.
type AnalysisResult struct {
	CampaignID      string           `json:"campaignId"`
	Status          string           `json:"status"` // analyzed | insufficient_data
	Strategy        string           `json:"strategy,omitempty"`
	Period          string           `json:"period"`
	Message         string           `json:"message,omitempty"`
	OverallMetrics  OverallMetrics   `json:"overallMetrics"`
	HourlyAnalysis  []BucketAnalysis `json:"hourlyAnalysis"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
}

// DayStat is one weekday row of the daily variant.
type DayStat struct {
	DayName        string  `json:"day_name"`
	AvgSpend       float64 `json:"avg_spend"`
	ROAS           float64 `json:"roas"`
	CPA            float64 `json:"cpa"`
	Score          int     `json:"score"`
	Recommendation Label   `json:"recommendation"`
}

type DailyAnalysis struct {
	CampaignID     string    `json:"campaignId"`
	DailyBreakdown []DayStat `json:"daily_breakdown"`
	BestDays       []string  `json:"best_days"`
	WorstDays      []string  `json:"worst_days"`
	Recommendation string    `json:"recommendation"`
}

// Campaign is the Meta campaign metadata cached locally.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Objective   string    `json:"objective"`
	DailyBudget float64   `json:"daily_budget"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Settings governs how aggressively the optimizer may act. Zero value is
// not useful; use DefaultSettings.
type Settings struct {
	AutoOptimize      bool `json:"auto_optimize"`
	MaxBudgetIncrease int  `json:"max_budget_increase"` // percent
	MaxBudgetDecrease int  `json:"max_budget_decrease"` // percent
	MinDataHours      int  `json:"min_data_hours"`
}

func DefaultSettings() Settings {
	return Settings{AutoOptimize: false, MaxBudgetIncrease: 30, MaxBudgetDecrease: 30, MinDataHours: 24}
}

// CampaignSettings overrides the global Settings for one campaign.
type CampaignSettings struct {
	CampaignID        string    `json:"campaign_id"`
	AutoOptimize      bool      `json:"auto_optimize"`
	MaxBudgetIncrease int       `json:"max_budget_increase"`
	MaxBudgetDecrease int       `json:"max_budget_decrease"`
	TargetROAS        *float64  `json:"target_roas,omitempty"`
	TargetCPA         *float64  `json:"target_cpa,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// StoredRecommendation is the persisted shape of a Recommendation.
// Inserts are append-only; every analysis run writes fresh rows.
type StoredRecommendation struct {
	ID               string     `json:"id"`
	CampaignID       string     `json:"campaign_id"`
	CampaignName     string     `json:"campaign_name,omitempty"`
	Type             string     `json:"type"`
	Hour             *int       `json:"hour,omitempty"`
	CurrentValue     *float64   `json:"current_value,omitempty"`
	RecommendedValue *float64   `json:"recommended_value,omitempty"`
	Reason           string     `json:"reason"`
	Confidence       string     `json:"confidence"`
	Status           string     `json:"status"` // pending | applied | rejected | skipped
	CreatedAt        time.Time  `json:"created_at"`
	AppliedAt        *time.Time `json:"applied_at,omitempty"`
}

// ActionLog records a budget change actually pushed to Meta.
type ActionLog struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaign_id"`
	ActionType  string    `json:"action_type"`
	Details     string    `json:"details"`
	BeforeValue *float64  `json:"before_value,omitempty"`
	AfterValue  *float64  `json:"after_value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Impact is the before/after estimate shown once auto-optimize has run
// for a while.
type Impact struct {
	BeforeROAS       float64   `json:"before_roas"`
	AfterROAS        float64   `json:"after_roas"`
	BeforeCPA        float64   `json:"before_cpa"`
	AfterCPA         float64   `json:"after_cpa"`
	ROASImprovement  float64   `json:"roas_improvement"`
	CPAImprovement   float64   `json:"cpa_improvement"`
	TotalExtraProfit float64   `json:"total_extra_profit"`
	DaysSinceEnabled int       `json:"days_since_enabled"`
	EnabledAt        time.Time `json:"auto_optimize_enabled_at"`
}
