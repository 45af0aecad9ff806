package optimizer

import (
	"math"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

// Strategy selects how sub-scores are normalized before weighting.
type Strategy string

const (
	// StrategyMinMax stretches each metric between the window's observed
	// min and max. Meaningful once a full day of data exists.
	StrategyMinMax Strategy = "minmax"
	// StrategyFixedScale scores each bucket against fixed reference points
	// and the window averages. Robust to sparse data.
	StrategyFixedScale Strategy = "fixed_scale"
)

// Min-max weights: ROAS drives the score, volume only adds confidence.
const (
	wROAS   = 0.35
	wCPA    = 0.30
	wCVR    = 0.20
	wVolume = 0.15
)

// Fixed-scale weights. CVR does not participate on this scale.
const (
	wFixedROAS   = 0.40
	wFixedCPA    = 0.30
	wFixedVolume = 0.30
)

// ChooseStrategy picks min-max when the window carries at least minDataHours
// source rows, otherwise the fixed scale.
func ChooseStrategy(buckets []models.HourBucket, minDataHours int) Strategy {
	total := 0
	for _, b := range buckets {
		total += b.DataPoints
	}
	if total >= minDataHours {
		return StrategyMinMax
	}
	return StrategyFixedScale
}

// ScoreBuckets converts every bucket into a scored analysis. The input
// order is preserved, so output stays index-ascending.
func ScoreBuckets(buckets []models.HourBucket, strategy Strategy) []models.BucketAnalysis {
	out := make([]models.BucketAnalysis, 0, len(buckets))
	for _, b := range buckets {
		var scores models.ScoreSet
		if strategy == StrategyFixedScale {
			scores = fixedScaleScores(b, buckets)
		} else {
			scores = minMaxScores(b, buckets)
		}
		out = append(out, models.BucketAnalysis{
			Hour: b.Index,
			Metrics: models.BucketMetrics{
				Spend:     b.TotalSpend,
				Purchases: b.TotalPurchases,
				Revenue:   b.TotalRevenue,
				ROAS:      b.ROAS,
				CPA:       b.CPA,
				CVR:       b.CVR,
			},
			Scores:         scores,
			Recommendation: LabelFor(scores.Composite),
			Confidence:     ConfidenceFor(b.DataPoints),
		})
	}
	return out
}

// LabelFor maps a composite score onto the bucket recommendation.
// Thresholds are fixed product constants.
func LabelFor(composite int) models.Label {
	switch {
	case composite >= 70:
		return models.LabelIncrease
	case composite >= 50:
		return models.LabelMaintain
	case composite >= 30:
		return models.LabelMonitor
	default:
		return models.LabelDecrease
	}
}

// ConfidenceFor grades a bucket by how many source rows back it. Two weeks
// of hourly data per bucket is as good as it gets.
func ConfidenceFor(dataPoints int) models.Confidence {
	switch {
	case dataPoints >= 14:
		return models.ConfidenceHigh
	case dataPoints >= 7:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func minMaxScores(b models.HourBucket, window []models.HourBucket) models.ScoreSet {
	var roasVals, cpaVals, cvrVals []float64
	maxSpend := 0.0
	for _, w := range window {
		if w.ROAS > 0 {
			roasVals = append(roasVals, w.ROAS)
		}
		if w.CPA > 0 {
			cpaVals = append(cpaVals, w.CPA)
		}
		if w.CVR > 0 {
			cvrVals = append(cvrVals, w.CVR)
		}
		if w.TotalSpend > maxSpend {
			maxSpend = w.TotalSpend
		}
	}

	roasScore := stretch(b.ROAS, roasVals, false)
	cpaScore := stretch(b.CPA, cpaVals, true) // lower CPA is better
	cvrScore := stretch(b.CVR, cvrVals, false)
	volumeScore := 50.0
	if maxSpend > 0 {
		volumeScore = b.TotalSpend / maxSpend * 100
	}

	composite := roasScore*wROAS + cpaScore*wCPA + cvrScore*wCVR + volumeScore*wVolume
	return models.ScoreSet{
		ROAS:      roundScore(roasScore),
		CPA:       roundScore(cpaScore),
		CVR:       roundScore(cvrScore),
		Volume:    roundScore(volumeScore),
		Composite: roundScore(composite),
	}
}

// stretch places v between the window's min and max observed values,
// defaulting to the midpoint when there is no spread to stretch over.
func stretch(v float64, vals []float64, invert bool) float64 {
	if len(vals) == 0 {
		return 50
	}
	lo, hi := vals[0], vals[0]
	for _, x := range vals[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	if hi <= lo {
		return 50
	}
	if invert {
		return clamp01((hi-v)/(hi-lo)) * 100
	}
	return clamp01((v-lo)/(hi-lo)) * 100
}

func fixedScaleScores(b models.HourBucket, window []models.HourBucket) models.ScoreSet {
	var windowSpend float64
	var windowPurchases, activeBuckets int
	for _, w := range window {
		windowSpend += w.TotalSpend
		windowPurchases += w.TotalPurchases
		if w.DataPoints > 0 {
			activeBuckets++
		}
	}
	avgCPA := 0.0
	if windowPurchases > 0 {
		avgCPA = windowSpend / float64(windowPurchases)
	}
	avgPurchases := 0.0
	if activeBuckets > 0 {
		avgPurchases = float64(windowPurchases) / float64(activeBuckets)
	}

	// ROAS of 2 maps to a perfect score.
	roasScore := math.Min(100, b.ROAS*50)

	cpaScore := 50.0
	if avgCPA > 0 {
		cpaScore = math.Max(0, 100-(b.CPA/avgCPA)*50)
	}

	volumeScore := 50.0
	if avgPurchases > 0 {
		volumeScore = math.Min(100, float64(b.TotalPurchases)/avgPurchases*50)
	}

	composite := roasScore*wFixedROAS + cpaScore*wFixedCPA + volumeScore*wFixedVolume
	return models.ScoreSet{
		ROAS:      roundScore(roasScore),
		CPA:       roundScore(cpaScore),
		CVR:       0, // not scored on the fixed scale
		Volume:    roundScore(volumeScore),
		Composite: roundScore(composite),
	}
}

func roundScore(f float64) int {
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
