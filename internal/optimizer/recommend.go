package optimizer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

// DaypartingRule selects which trigger fires the dayparting recommendation.
type DaypartingRule string

const (
	// DaypartingByCount fires when enough peak and weak hours exist.
	DaypartingByCount DaypartingRule = "count"
	// DaypartingByVariance fires on a wide composite-score spread.
	DaypartingByVariance DaypartingRule = "variance"
)

// GeneratorConfig carries the campaign-level knobs for recommendation
// generation. Dayparting defaults to the count rule.
type GeneratorConfig struct {
	Dayparting        DaypartingRule
	MaxBudgetIncrease int // percent cap
	MaxBudgetDecrease int // percent cap
}

func GeneratorConfigFrom(s models.Settings) GeneratorConfig {
	return GeneratorConfig{
		Dayparting:        DaypartingByCount,
		MaxBudgetIncrease: s.MaxBudgetIncrease,
		MaxBudgetDecrease: s.MaxBudgetDecrease,
	}
}

// GenerateRecommendations turns the scored buckets into campaign-level
// actions. ref supplies the "current hour" for the immediate-action rule so
// callers (and tests) control the clock. Rule order is stable; if nothing
// fires, a single monitoring record is emitted so the dashboard always has
// something to show.
func GenerateRecommendations(campaignID string, analysis []models.BucketAnalysis, overall models.OverallMetrics, currentBudget float64, ref time.Time, cfg GeneratorConfig) []models.Recommendation {
	var recs []models.Recommendation

	var increase, decrease []models.BucketAnalysis
	minComposite, maxComposite := 100, 0
	for _, a := range analysis {
		switch a.Recommendation {
		case models.LabelIncrease:
			increase = append(increase, a)
		case models.LabelDecrease:
			decrease = append(decrease, a)
		}
		if a.Scores.Composite < minComposite {
			minComposite = a.Scores.Composite
		}
		if a.Scores.Composite > maxComposite {
			maxComposite = a.Scores.Composite
		}
	}

	avgIncrease := avgComposite(increase)
	avgDecrease := avgComposite(decrease)

	if r := daypartingRec(campaignID, increase, decrease, avgIncrease, avgDecrease, maxComposite-minComposite, cfg.Dayparting); r != nil {
		recs = append(recs, *r)
	}

	if len(increase) >= 5 && avgIncrease > 70 {
		pct := int(math.Min(float64(cfg.MaxBudgetIncrease), math.Round((avgIncrease-50)/2)))
		priority := models.PriorityMedium
		if avgIncrease > 80 {
			priority = models.PriorityHigh
		}
		recommended := currentBudget * (1 + float64(pct)/100)
		recs = append(recs, models.Recommendation{
			CampaignID:        campaignID,
			Type:              models.RecBudgetIncrease,
			Priority:          priority,
			CurrentBudget:     &currentBudget,
			RecommendedBudget: &recommended,
			PercentChange:     intPtr(pct),
			Reason:            fmt.Sprintf("%d hours show strong performance (avg score: %d).", len(increase), int(math.Round(avgIncrease))),
			Confidence:        increase[0].Confidence,
		})
	}

	if len(decrease) >= 5 && avgDecrease < 30 {
		pct := int(math.Min(float64(cfg.MaxBudgetDecrease), math.Round((50-avgDecrease)/2)))
		priority := models.PriorityMedium
		if avgDecrease < 20 {
			priority = models.PriorityHigh
		}
		recommended := currentBudget * (1 - float64(pct)/100)
		recs = append(recs, models.Recommendation{
			CampaignID:        campaignID,
			Type:              models.RecBudgetDecrease,
			Priority:          priority,
			CurrentBudget:     &currentBudget,
			RecommendedBudget: &recommended,
			PercentChange:     intPtr(-pct),
			Reason:            fmt.Sprintf("%d hours underperforming (avg score: %d). Spending without adequate returns.", len(decrease), int(math.Round(avgDecrease))),
			Confidence:        decrease[0].Confidence,
		})
	}

	if overall.OverallROAS < 1 {
		recs = append(recs, models.Recommendation{
			CampaignID:      campaignID,
			Type:            models.RecROASOptimization,
			Priority:        models.PriorityHigh,
			Reason:          fmt.Sprintf("Overall ROAS of %.2f is below breakeven. Every dollar spent is returning less than a dollar.", overall.OverallROAS),
			SuggestedAction: "Review targeting and creatives, or shift budget toward the strongest hours.",
		})
	} else if overall.OverallROAS > 2 {
		recs = append(recs, models.Recommendation{
			CampaignID:      campaignID,
			Type:            models.RecScaling,
			Priority:        models.PriorityMedium,
			PercentChange:   intPtr(20),
			Reason:          fmt.Sprintf("Overall ROAS of %.2f leaves room to scale.", overall.OverallROAS),
			SuggestedAction: "Increase daily budget by 20% and watch for ROAS erosion.",
		})
	}

	if len(increase) > 0 && len(decrease) > 0 {
		recs = append(recs, models.Recommendation{
			CampaignID: campaignID,
			Type:       models.RecBudgetReallocation,
			Priority:   models.PriorityMedium,
			Reason: fmt.Sprintf("Budget could be shifted from weak hours (%s) to peak hours (%s).",
				FormatHours(hoursOf(decrease)), FormatHours(hoursOf(increase))),
		})
	}

	if r := immediateActionRec(campaignID, analysis, ref); r != nil {
		recs = append(recs, *r)
	}

	if len(recs) == 0 {
		recs = append(recs, models.Recommendation{
			CampaignID: campaignID,
			Type:       models.RecMonitoring,
			Priority:   models.PriorityLow,
			Reason:     "Performance is stable across the analysis window.",
			SuggestedAction: "No changes needed right now. Keep monitoring as more data accumulates.",
		})
	}
	return recs
}

func daypartingRec(campaignID string, increase, decrease []models.BucketAnalysis, avgIncrease, avgDecrease float64, spread int, rule DaypartingRule) *models.Recommendation {
	switch rule {
	case DaypartingByVariance:
		if spread <= 30 {
			return nil
		}
	default:
		if len(increase) < 3 || len(decrease) < 3 {
			return nil
		}
	}
	peak := hoursOf(increase)
	weak := hoursOf(decrease)
	gap := int(math.Round(avgIncrease - avgDecrease))
	return &models.Recommendation{
		CampaignID: campaignID,
		Type:       models.RecDayparting,
		Priority:   models.PriorityHigh,
		PeakHours:  peak,
		WeakHours:  weak,
		Reason: fmt.Sprintf("Performance varies significantly by hour. Peak hours (%s) score %d points higher than weak hours (%s).",
			FormatHours(peak), gap, FormatHours(weak)),
		SuggestedAction: fmt.Sprintf("Consider ad scheduling to reduce spend during %s and increase during %s.",
			FormatHours(weak), FormatHours(peak)),
		EstimatedImpact: &models.ImpactEstimate{
			ROASImprovement: fmt.Sprintf("+%d%%", gap/2),
			CPAReduction:    fmt.Sprintf("-%d%%", gap/3),
		},
	}
}

func immediateActionRec(campaignID string, analysis []models.BucketAnalysis, ref time.Time) *models.Recommendation {
	hour := ref.Hour()
	for _, a := range analysis {
		if a.Hour != hour {
			continue
		}
		if a.Recommendation != models.LabelDecrease || a.Scores.Composite >= 25 {
			return nil
		}
		metrics := a.Metrics
		return &models.Recommendation{
			CampaignID:      campaignID,
			Type:            models.RecImmediateAction,
			Priority:        models.PriorityUrgent,
			Hour:            intPtr(hour),
			Reason:          fmt.Sprintf("Current hour (%d:00) is historically your worst performing time (score: %d).", hour, a.Scores.Composite),
			SuggestedAction: "Consider pausing or reducing budget immediately.",
			Metrics:         &metrics,
		}
	}
	return nil
}

// FormatHours renders bucket indices for display, merging consecutive hours
// into inclusive ranges: [9,10,11,14] -> "9:00-11:59, 14:00".
func FormatHours(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)

	var ranges []string
	start, end := sorted[0], sorted[0]
	flush := func() {
		if start == end {
			ranges = append(ranges, fmt.Sprintf("%d:00", start))
		} else {
			ranges = append(ranges, fmt.Sprintf("%d:00-%d:59", start, end))
		}
	}
	for _, h := range sorted[1:] {
		if h == end+1 {
			end = h
			continue
		}
		flush()
		start, end = h, h
	}
	flush()
	return strings.Join(ranges, ", ")
}

func hoursOf(analysis []models.BucketAnalysis) []int {
	hours := make([]int, 0, len(analysis))
	for _, a := range analysis {
		hours = append(hours, a.Hour)
	}
	sort.Ints(hours)
	return hours
}

func avgComposite(analysis []models.BucketAnalysis) float64 {
	if len(analysis) == 0 {
		return 0
	}
	sum := 0
	for _, a := range analysis {
		sum += a.Scores.Composite
	}
	return float64(sum) / float64(len(analysis))
}

func intPtr(i int) *int { return &i }
