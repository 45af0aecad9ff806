package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

func TestBuildSummaryPeakAndWeakHours(t *testing.T) {
	analysis := []models.BucketAnalysis{
		scored(2, 10), scored(3, 25), scored(4, 39),
		scored(9, 70), scored(10, 85),
		scored(12, 55),
	}
	s := BuildSummary(analysis, nil)

	assert.Equal(t, "9:00-10:59", s.PeakPerformanceHours)
	assert.Equal(t, "2:00-4:59", s.UnderperformingHours)
	assert.Equal(t, 0, s.ActionItemsCount)
	assert.Equal(t, "No immediate actions needed", s.TopRecommendation)
}

func TestBuildSummaryCapsDisplayedHours(t *testing.T) {
	var analysis []models.BucketAnalysis
	for h := 0; h < 12; h++ {
		analysis = append(analysis, scored(h, 90))
	}
	for h := 12; h < 24; h++ {
		analysis = append(analysis, scored(h, 10))
	}
	s := BuildSummary(analysis, nil)

	assert.Equal(t, "0:00-4:59", s.PeakPerformanceHours, "first five peak hours")
	assert.Equal(t, "21:00-23:59", s.UnderperformingHours, "last three weak hours")
}

func TestBuildSummaryTopRecommendation(t *testing.T) {
	recs := []models.Recommendation{
		{Type: models.RecScaling, Priority: models.PriorityMedium, SuggestedAction: "scale it"},
		{Type: models.RecDayparting, Priority: models.PriorityHigh, SuggestedAction: "shift the schedule"},
		{Type: models.RecImmediateAction, Priority: models.PriorityUrgent, Reason: "pause now"},
	}
	s := BuildSummary([]models.BucketAnalysis{scored(9, 55)}, recs)

	assert.Equal(t, 2, s.ActionItemsCount, "medium priority does not count")
	assert.Equal(t, "shift the schedule", s.TopRecommendation, "first high or urgent wins")
}

func TestBuildSummaryFallsBackToReason(t *testing.T) {
	recs := []models.Recommendation{
		{Type: models.RecBudgetDecrease, Priority: models.PriorityHigh, Reason: "cut the waste"},
	}
	s := BuildSummary([]models.BucketAnalysis{scored(9, 55)}, recs)
	assert.Equal(t, "cut the waste", s.TopRecommendation)
}

func TestBuildSummaryNoAnalysis(t *testing.T) {
	s := BuildSummary(nil, nil)
	assert.Equal(t, "none", s.PeakPerformanceHours)
	assert.Equal(t, "none", s.UnderperformingHours)
	assert.Equal(t, syncDataMessage, s.TopRecommendation)
}
