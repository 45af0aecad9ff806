package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestAggregateHourlyAlways24Buckets(t *testing.T) {
	for _, rows := range [][]models.PerformanceRecord{
		nil,
		{},
		{{CampaignID: "c1", Hour: 5, Spend: 10}},
		manyRows(300),
	} {
		buckets := AggregateHourly(rows)
		require.Len(t, buckets, 24)
		for i, b := range buckets {
			assert.Equal(t, i, b.Index)
		}
	}
}

func manyRows(n int) []models.PerformanceRecord {
	rows := make([]models.PerformanceRecord, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.PerformanceRecord{
			CampaignID: "c1",
			Date:       day("2026-08-01").AddDate(0, 0, i/24),
			Hour:       i % 24,
			Spend:      float64(i),
			Clicks:     i,
		})
	}
	return rows
}

func TestAggregateHourlyFoldsSameHour(t *testing.T) {
	rows := []models.PerformanceRecord{
		{CampaignID: "c1", Date: day("2026-08-01"), Hour: 9, Spend: 100, Purchases: 5, Revenue: 200},
		{CampaignID: "c1", Date: day("2026-08-01"), Hour: 9, Spend: 50, Purchases: 1, Revenue: 40},
	}
	buckets := AggregateHourly(rows)

	b := buckets[9]
	assert.Equal(t, 150.0, b.TotalSpend)
	assert.Equal(t, 6, b.TotalPurchases)
	assert.Equal(t, 240.0, b.TotalRevenue)
	assert.Equal(t, 2, b.DataPoints)
	assert.InDelta(t, 1.6, b.ROAS, 1e-9)
	assert.InDelta(t, 25.0, b.CPA, 1e-9)

	for i, b := range buckets {
		if i == 9 {
			continue
		}
		assert.Zero(t, b.TotalSpend, "hour %d", i)
		assert.Zero(t, b.DataPoints, "hour %d", i)
	}
}

func TestAggregateHourlyCoercesNegatives(t *testing.T) {
	rows := []models.PerformanceRecord{
		{CampaignID: "c1", Hour: 3, Spend: -10, Clicks: -5, Impressions: -1, Purchases: -2, Revenue: -7},
	}
	b := AggregateHourly(rows)[3]
	assert.Zero(t, b.TotalSpend)
	assert.Zero(t, b.TotalClicks)
	assert.Zero(t, b.TotalImpressions)
	assert.Zero(t, b.TotalPurchases)
	assert.Zero(t, b.TotalRevenue)
	assert.Equal(t, 1, b.DataPoints)
}

func TestAggregateHourlySkipsOutOfRangeHours(t *testing.T) {
	rows := []models.PerformanceRecord{
		{CampaignID: "c1", Hour: -1, Spend: 10},
		{CampaignID: "c1", Hour: 24, Spend: 10},
		{CampaignID: "c1", Hour: 0, Spend: 10},
	}
	buckets := AggregateHourly(rows)
	assert.Equal(t, 10.0, buckets[0].TotalSpend)
	total := 0.0
	for _, b := range buckets {
		total += b.TotalSpend
	}
	assert.Equal(t, 10.0, total)
}

func TestAggregateNoDivisionByZeroEscapes(t *testing.T) {
	rows := []models.PerformanceRecord{
		{CampaignID: "c1", Hour: 7, Spend: 0, Purchases: 0, Clicks: 0, Revenue: 100},
	}
	b := AggregateHourly(rows)[7]
	assert.Zero(t, b.ROAS, "roas must be 0 when spend is 0")
	assert.Zero(t, b.CPA, "cpa must be 0 when purchases is 0")
	assert.Zero(t, b.CVR, "cvr must be 0 when clicks is 0")
}

func TestAggregateWeekday(t *testing.T) {
	// 2026-08-02 is a Sunday.
	rows := []models.PerformanceRecord{
		{CampaignID: "c1", Date: day("2026-08-02"), Hour: 9, Spend: 10},
		{CampaignID: "c1", Date: day("2026-08-03"), Hour: 14, Spend: 20},
		{CampaignID: "c1", Date: day("2026-08-10"), Hour: 7, Spend: 30},
	}
	buckets := AggregateWeekday(rows)
	require.Len(t, buckets, 7)
	assert.Equal(t, 10.0, buckets[0].TotalSpend) // Sunday
	assert.Equal(t, 50.0, buckets[1].TotalSpend) // both Mondays
	assert.Equal(t, 2, buckets[1].DataPoints)
}
