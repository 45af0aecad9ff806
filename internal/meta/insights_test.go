package meta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHourBreakdown(t *testing.T) {
	tests := []struct {
		in   string
		hour int
		ok   bool
	}{
		{"06:00:00 - 06:59:59", 6, true},
		{"00:00:00 - 00:59:59", 0, true},
		{"23:00:00 - 23:59:59", 23, true},
		{"  14:00:00 - 14:59:59", 14, true},
		{"24:00:00 - 24:59:59", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
		{"7", 0, false},
	}
	for _, tt := range tests {
		h, ok := parseHourBreakdown(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.hour, h, "input %q", tt.in)
		}
	}
}

func TestInsightRecord(t *testing.T) {
	in := Insight{
		CampaignID:   "123",
		CampaignName: "Summer Sale",
		DateStart:    "2026-08-10",
		Spend:        "45.67",
		Impressions:  "1200",
		Clicks:       "89",
		Actions: []action{
			{ActionType: "link_click", Value: "89"},
			{ActionType: "purchase", Value: "3"},
		},
		ActionValues: []action{
			{ActionType: "purchase", Value: "120.50"},
		},
		HourlyStats: "06:00:00 - 06:59:59",
	}

	rec, ok := in.Record()
	require.True(t, ok)
	assert.Equal(t, "123", rec.CampaignID)
	assert.Equal(t, "Summer Sale", rec.CampaignName)
	assert.Equal(t, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.Equal(t, 6, rec.Hour)
	assert.InDelta(t, 45.67, rec.Spend, 0.001)
	assert.Equal(t, 1200, rec.Impressions)
	assert.Equal(t, 89, rec.Clicks)
	assert.Equal(t, 3, rec.Purchases)
	assert.InDelta(t, 120.50, rec.Revenue, 0.001)
}

func TestInsightRecordOmniPurchaseFallback(t *testing.T) {
	in := Insight{
		CampaignID:  "123",
		DateStart:   "2026-08-10",
		Spend:       "10",
		Actions:     []action{{ActionType: "omni_purchase", Value: "2"}},
		ActionValues: []action{{ActionType: "omni_purchase", Value: "80"}},
		HourlyStats: "09:00:00 - 09:59:59",
	}
	rec, ok := in.Record()
	require.True(t, ok)
	assert.Equal(t, 2, rec.Purchases)
	assert.InDelta(t, 80, rec.Revenue, 0.001)
}

func TestInsightRecordCoercesMalformedNumerics(t *testing.T) {
	in := Insight{
		CampaignID:  "123",
		DateStart:   "2026-08-10",
		Spend:       "not-a-number",
		Impressions: "",
		Clicks:      "??",
		Actions:     []action{{ActionType: "purchase", Value: "bad"}},
		HourlyStats: "09:00:00 - 09:59:59",
	}
	rec, ok := in.Record()
	require.True(t, ok)
	assert.Zero(t, rec.Spend)
	assert.Zero(t, rec.Impressions)
	assert.Zero(t, rec.Clicks)
	assert.Zero(t, rec.Purchases)
	assert.Zero(t, rec.Revenue)
}

func TestInsightRecordRejectsBadHourOrDate(t *testing.T) {
	bad := Insight{CampaignID: "123", DateStart: "2026-08-10", HourlyStats: "nope"}
	_, ok := bad.Record()
	assert.False(t, ok)

	bad = Insight{CampaignID: "123", DateStart: "08/10/2026", HourlyStats: "09:00:00 - 09:59:59"}
	_, ok = bad.Record()
	assert.False(t, ok)
}
