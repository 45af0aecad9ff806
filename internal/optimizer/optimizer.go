// Package optimizer scores hourly campaign performance and derives budget
// and scheduling recommendations. It is a pure computation layer: rows in,
// AnalysisResult out, no I/O and no shared state between calls.
package optimizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

// DefaultDailyBudget is assumed when a campaign has no configured budget.
const DefaultDailyBudget = 100.0

// Input is everything one analysis call depends on. Ref supplies the
// reference timestamp; the pipeline never reads the wall clock itself.
type Input struct {
	CampaignID    string
	Rows          []models.PerformanceRecord
	Settings      models.Settings
	CurrentBudget float64
	Ref           time.Time
	Period        string         // display label, e.g. "Last 14 days"
	Dayparting    DaypartingRule // zero value selects the count rule
	Strategy      Strategy       // zero value selects by data volume
}

// Analyze runs the full pipeline: aggregate, score, recommend, summarize.
// It is deterministic for identical input and never fails; an empty row set
// yields a valid insufficient_data result.
func Analyze(in Input) models.AnalysisResult {
	if in.CurrentBudget <= 0 {
		in.CurrentBudget = DefaultDailyBudget
	}

	if len(in.Rows) == 0 {
		return models.AnalysisResult{
			CampaignID:      in.CampaignID,
			Status:          "insufficient_data",
			Period:          in.Period,
			Message:         fmt.Sprintf("Need at least %d hours of data. No rows in the requested window.", in.Settings.MinDataHours),
			HourlyAnalysis:  []models.BucketAnalysis{},
			Recommendations: []models.Recommendation{},
			Summary:         BuildSummary(nil, nil),
		}
	}

	buckets := AggregateHourly(in.Rows)
	strategy := in.Strategy
	if strategy == "" {
		strategy = ChooseStrategy(buckets, in.Settings.MinDataHours)
	}
	analysis := ScoreBuckets(buckets, strategy)
	overall := overallMetrics(in.Rows)

	cfg := GeneratorConfigFrom(in.Settings)
	if in.Dayparting != "" {
		cfg.Dayparting = in.Dayparting
	}
	recs := GenerateRecommendations(in.CampaignID, analysis, overall, in.CurrentBudget, in.Ref, cfg)

	return models.AnalysisResult{
		CampaignID:      in.CampaignID,
		Status:          "analyzed",
		Strategy:        string(strategy),
		Period:          in.Period,
		OverallMetrics:  overall,
		HourlyAnalysis:  analysis,
		Recommendations: recs,
		Summary:         BuildSummary(analysis, recs),
	}
}

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// AnalyzeDaily is the weekday variant: the same scorer over 7 buckets,
// reported as a day-of-week breakdown.
func AnalyzeDaily(in Input) models.DailyAnalysis {
	buckets := AggregateWeekday(in.Rows)
	strategy := in.Strategy
	if strategy == "" {
		strategy = ChooseStrategy(buckets, in.Settings.MinDataHours)
	}
	analysis := ScoreBuckets(buckets, strategy)

	out := models.DailyAnalysis{CampaignID: in.CampaignID}
	for i, a := range analysis {
		b := buckets[i]
		avgSpend := 0.0
		if b.DataPoints > 0 {
			avgSpend = b.TotalSpend / float64(b.DataPoints)
		}
		out.DailyBreakdown = append(out.DailyBreakdown, models.DayStat{
			DayName:        dayNames[a.Hour],
			AvgSpend:       round2(avgSpend),
			ROAS:           round2(b.ROAS),
			CPA:            round2(b.CPA),
			Score:          a.Scores.Composite,
			Recommendation: a.Recommendation,
		})
		if a.Scores.Composite >= peakScoreFloor {
			out.BestDays = append(out.BestDays, dayNames[a.Hour])
		}
		if a.Scores.Composite < weakScoreCeil {
			out.WorstDays = append(out.WorstDays, dayNames[a.Hour])
		}
	}
	if len(out.WorstDays) > 0 {
		out.Recommendation = fmt.Sprintf("Consider reducing budget on %s", strings.Join(out.WorstDays, ", "))
	} else {
		out.Recommendation = "Performance is consistent across all days"
	}
	return out
}

func overallMetrics(rows []models.PerformanceRecord) models.OverallMetrics {
	var m models.OverallMetrics
	for _, r := range rows {
		m.TotalSpend += maxf(r.Spend)
		m.TotalPurchases += max0(r.Purchases)
		m.TotalRevenue += maxf(r.Revenue)
	}
	m.OverallROAS = round2(safeDiv(m.TotalRevenue, m.TotalSpend))
	m.OverallCPA = round2(safeDiv(m.TotalSpend, float64(m.TotalPurchases)))
	return m
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
