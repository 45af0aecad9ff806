package optimizer

import (
	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

const (
	hourBuckets    = 24
	weekdayBuckets = 7
)

// AggregateHourly folds an unordered set of records into exactly 24 buckets
// indexed by hour-of-day. Buckets with no source rows stay zero-valued.
// Rows with an out-of-range hour are skipped; negative numerics count as 0.
func AggregateHourly(rows []models.PerformanceRecord) []models.HourBucket {
	buckets := newBuckets(hourBuckets)
	for _, r := range rows {
		if r.Hour < 0 || r.Hour >= hourBuckets {
			continue
		}
		fold(&buckets[r.Hour], r)
	}
	derive(buckets)
	return buckets
}

// AggregateWeekday is the daily variant: 7 buckets indexed by weekday,
// Sunday = 0.
func AggregateWeekday(rows []models.PerformanceRecord) []models.HourBucket {
	buckets := newBuckets(weekdayBuckets)
	for _, r := range rows {
		dow := int(r.Date.Weekday())
		fold(&buckets[dow], r)
	}
	derive(buckets)
	return buckets
}

func newBuckets(n int) []models.HourBucket {
	buckets := make([]models.HourBucket, n)
	for i := range buckets {
		buckets[i].Index = i
	}
	return buckets
}

func fold(b *models.HourBucket, r models.PerformanceRecord) {
	b.TotalSpend += maxf(r.Spend)
	b.TotalPurchases += max0(r.Purchases)
	b.TotalRevenue += maxf(r.Revenue)
	b.TotalClicks += max0(r.Clicks)
	b.TotalImpressions += max0(r.Impressions)
	b.DataPoints++
}

// derive computes the per-bucket rates with zero-guarded division so no
// NaN or Inf ever reaches the score calculator.
func derive(buckets []models.HourBucket) {
	for i := range buckets {
		b := &buckets[i]
		b.ROAS = safeDiv(b.TotalRevenue, b.TotalSpend)
		b.CPA = safeDiv(b.TotalSpend, float64(b.TotalPurchases))
		b.CVR = safeDiv(float64(b.TotalPurchases), float64(b.TotalClicks)) * 100
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}

func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
