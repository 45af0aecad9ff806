package optimizer

import (
	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

const syncDataMessage = "No performance data yet. Sync more data from Meta to get recommendations."

const (
	peakScoreFloor = 70
	weakScoreCeil  = 40
	peakDisplayMax = 5
	weakDisplayMax = 3
)

// BuildSummary condenses the scored buckets and the recommendation list into
// the three headline fields the dashboard shows.
func BuildSummary(analysis []models.BucketAnalysis, recs []models.Recommendation) models.Summary {
	var peak, weak []int
	for _, a := range analysis {
		if a.Scores.Composite >= peakScoreFloor {
			peak = append(peak, a.Hour)
		}
		if a.Scores.Composite < weakScoreCeil {
			weak = append(weak, a.Hour)
		}
	}
	if len(peak) > peakDisplayMax {
		peak = peak[:peakDisplayMax]
	}
	if len(weak) > weakDisplayMax {
		weak = weak[len(weak)-weakDisplayMax:]
	}

	actionItems := 0
	top := ""
	for _, r := range recs {
		if r.Priority != models.PriorityHigh && r.Priority != models.PriorityUrgent {
			continue
		}
		actionItems++
		if top == "" {
			top = r.SuggestedAction
			if top == "" {
				top = r.Reason
			}
		}
	}
	if top == "" {
		if len(analysis) == 0 {
			top = syncDataMessage
		} else {
			top = "No immediate actions needed"
		}
	}

	return models.Summary{
		PeakPerformanceHours: FormatHours(peak),
		UnderperformingHours: FormatHours(weak),
		ActionItemsCount:     actionItems,
		TopRecommendation:    top,
	}
}
