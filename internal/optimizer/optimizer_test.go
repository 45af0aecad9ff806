package optimizer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

// fourteenDays builds two weeks of rows with strong mornings (9-11) and
// weak early hours (2-4).
func fourteenDays() []models.PerformanceRecord {
	var rows []models.PerformanceRecord
	for d := 0; d < 14; d++ {
		date := day("2026-08-01").AddDate(0, 0, d)
		for _, h := range []int{9, 10, 11} {
			rows = append(rows, models.PerformanceRecord{
				CampaignID: "c1", Date: date, Hour: h,
				Spend: 10, Revenue: 40, Purchases: 2, Clicks: 20, Impressions: 400,
			})
		}
		for _, h := range []int{2, 3, 4} {
			rows = append(rows, models.PerformanceRecord{
				CampaignID: "c1", Date: date, Hour: h,
				Spend: 10, Revenue: 2, Clicks: 20, Impressions: 400,
			})
		}
	}
	return rows
}

func TestAnalyzeFullPipeline(t *testing.T) {
	in := Input{
		CampaignID:    "c1",
		Rows:          fourteenDays(),
		Settings:      models.DefaultSettings(),
		CurrentBudget: 150,
		Ref:           time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Period:        "Last 14 days",
	}
	got := Analyze(in)

	assert.Equal(t, "c1", got.CampaignID)
	assert.Equal(t, "analyzed", got.Status)
	assert.Equal(t, string(StrategyMinMax), got.Strategy)
	assert.Equal(t, "Last 14 days", got.Period)
	require.Len(t, got.HourlyAnalysis, 24)

	assert.InDelta(t, 840, got.OverallMetrics.TotalSpend, 0.001)
	assert.Equal(t, 84, got.OverallMetrics.TotalPurchases)
	assert.InDelta(t, 2.1, got.OverallMetrics.OverallROAS, 0.001)
	assert.InDelta(t, 10, got.OverallMetrics.OverallCPA, 0.001)

	for _, h := range []int{9, 10, 11} {
		assert.Equal(t, models.LabelIncrease, got.HourlyAnalysis[h].Recommendation, "hour %d", h)
		assert.Equal(t, models.ConfidenceHigh, got.HourlyAnalysis[h].Confidence)
	}

	assert.True(t, hasRec(got.Recommendations, models.RecDayparting))
	assert.True(t, hasRec(got.Recommendations, models.RecScaling), "roas 2.1 should trigger scaling")
	assert.True(t, hasRec(got.Recommendations, models.RecBudgetReallocation))

	assert.Equal(t, "9:00-11:59", got.Summary.PeakPerformanceHours)
	assert.Equal(t, 1, got.Summary.ActionItemsCount)
}

func TestAnalyzeDeterministic(t *testing.T) {
	in := Input{
		CampaignID:    "c1",
		Rows:          fourteenDays(),
		Settings:      models.DefaultSettings(),
		CurrentBudget: 150,
		Ref:           time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Period:        "Last 14 days",
	}
	first := Analyze(in)
	second := Analyze(in)

	require.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	got := Analyze(Input{
		CampaignID: "c1",
		Settings:   models.DefaultSettings(),
		Ref:        time.Now(),
		Period:     "Last 14 days",
	})

	assert.Equal(t, "insufficient_data", got.Status)
	assert.Empty(t, got.Strategy)
	assert.Contains(t, got.Message, "24 hours")
	assert.NotNil(t, got.HourlyAnalysis)
	assert.Empty(t, got.HourlyAnalysis)
	assert.NotNil(t, got.Recommendations)
	assert.Empty(t, got.Recommendations)
	assert.Zero(t, got.OverallMetrics)
	assert.Equal(t, "none", got.Summary.PeakPerformanceHours)
	assert.Equal(t, syncDataMessage, got.Summary.TopRecommendation)
}

func TestAnalyzeSparseWindowUsesFixedScale(t *testing.T) {
	got := Analyze(Input{
		CampaignID: "c1",
		Rows: []models.PerformanceRecord{
			{CampaignID: "c1", Date: day("2026-08-10"), Hour: 9, Spend: 10, Revenue: 30, Purchases: 1, Clicks: 10},
		},
		Settings: models.DefaultSettings(),
		Ref:      time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "analyzed", got.Status)
	assert.Equal(t, string(StrategyFixedScale), got.Strategy)
}

func TestAnalyzeDefaultsBudget(t *testing.T) {
	got := Analyze(Input{
		CampaignID: "c1",
		Rows:       fourteenDays(),
		Settings:   models.DefaultSettings(),
		Ref:        time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC),
	})
	for _, r := range got.Recommendations {
		if r.CurrentBudget != nil {
			assert.Equal(t, DefaultDailyBudget, *r.CurrentBudget)
		}
	}
}

func TestAnalyzeDaily(t *testing.T) {
	rows := []models.PerformanceRecord{
		{CampaignID: "c1", Date: day("2026-08-02"), Hour: 10, Spend: 50, Revenue: 200, Purchases: 4, Clicks: 40},
		{CampaignID: "c1", Date: day("2026-08-02"), Hour: 14, Spend: 50, Revenue: 200, Purchases: 4, Clicks: 40},
		{CampaignID: "c1", Date: day("2026-08-03"), Hour: 10, Spend: 50, Revenue: 10, Clicks: 40},
		{CampaignID: "c1", Date: day("2026-08-03"), Hour: 14, Spend: 50, Revenue: 10, Clicks: 40},
	}
	got := AnalyzeDaily(Input{CampaignID: "c1", Rows: rows, Settings: models.DefaultSettings()})

	require.Len(t, got.DailyBreakdown, 7)
	sunday := got.DailyBreakdown[0]
	assert.Equal(t, "Sunday", sunday.DayName)
	assert.InDelta(t, 50, sunday.AvgSpend, 0.001)
	assert.InDelta(t, 4, sunday.ROAS, 0.001)

	assert.Contains(t, got.BestDays, "Sunday")
	assert.Contains(t, got.WorstDays, "Monday")
	assert.Contains(t, got.Recommendation, "Monday")
}
