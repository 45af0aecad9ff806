package meta

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

type campaignResp struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Status      string `json:"status"`
		Objective   string `json:"objective"`
		DailyBudget string `json:"daily_budget"` // cents, as string
	} `json:"data"`
}

// GetCampaigns returns the account's active campaigns. Budgets come back
// in cents and are converted to currency units.
func (cl *Client) GetCampaigns(ctx context.Context) ([]models.Campaign, error) {
	if !cl.Configured() {
		return nil, errNoCredentials
	}
	params := url.Values{}
	params.Set("fields", "id,name,status,objective,daily_budget,lifetime_budget,budget_remaining")
	params.Set("effective_status", `["ACTIVE"]`)

	var resp campaignResp
	if err := cl.getJSON(ctx, cl.endpoint("/"+cl.adAccountID+"/campaigns", params), &resp); err != nil {
		return nil, fmt.Errorf("get campaigns: %w", err)
	}

	out := make([]models.Campaign, 0, len(resp.Data))
	for _, c := range resp.Data {
		out = append(out, models.Campaign{
			ID:          c.ID,
			Name:        c.Name,
			Status:      c.Status,
			Objective:   c.Objective,
			DailyBudget: atofDef(c.DailyBudget, 0) / 100,
		})
	}
	return out, nil
}

type action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight is one raw hourly insight row as returned by the Graph API.
// Numeric fields arrive as strings.
type Insight struct {
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	DateStart    string   `json:"date_start"`
	Spend        string   `json:"spend"`
	Impressions  string   `json:"impressions"`
	Clicks       string   `json:"clicks"`
	Actions      []action `json:"actions"`
	ActionValues []action `json:"action_values"`
	HourlyStats  string   `json:"hourly_stats_aggregated_by_advertiser_time_zone"`
}

type insightsResp struct {
	Data []Insight `json:"data"`
}

// GetHourlyInsights fetches insights for each campaign with the hourly
// breakdown over [dateFrom, dateTo]. A failing campaign is skipped so one
// bad id does not sink the whole sync.
func (cl *Client) GetHourlyInsights(ctx context.Context, campaignIDs []string, dateFrom, dateTo string) ([]Insight, error) {
	if !cl.Configured() {
		return nil, errNoCredentials
	}
	var insights []Insight
	var lastErr error
	for _, id := range campaignIDs {
		params := url.Values{}
		params.Set("fields", "campaign_id,campaign_name,date_start,spend,impressions,clicks,actions,action_values")
		params.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`, dateFrom, dateTo))
		params.Set("breakdowns", "hourly_stats_aggregated_by_advertiser_time_zone")
		params.Set("level", "campaign")

		var resp insightsResp
		if err := cl.getJSON(ctx, cl.endpoint("/"+id+"/insights", params), &resp); err != nil {
			lastErr = fmt.Errorf("insights for %s: %w", id, err)
			continue
		}
		insights = append(insights, resp.Data...)
	}
	if len(insights) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return insights, nil
}

// UpdateCampaignBudget pushes a new daily budget, converted to cents.
func (cl *Client) UpdateCampaignBudget(ctx context.Context, campaignID string, dailyBudget float64) error {
	if !cl.Configured() {
		return errNoCredentials
	}
	form := url.Values{}
	form.Set("daily_budget", strconv.Itoa(int(math.Round(dailyBudget*100))))
	if err := cl.postForm(ctx, "/"+campaignID, form); err != nil {
		return fmt.Errorf("update budget for %s: %w", campaignID, err)
	}
	return nil
}

// Record converts a raw insight into a storable performance record.
// Malformed numerics coerce to zero; an unparsable hour or date rejects
// the row (second return false).
func (in Insight) Record() (models.PerformanceRecord, bool) {
	hour, ok := parseHourBreakdown(in.HourlyStats)
	if !ok {
		return models.PerformanceRecord{}, false
	}
	date, err := time.Parse("2006-01-02", in.DateStart)
	if err != nil {
		return models.PerformanceRecord{}, false
	}
	actions := parseActions(in.Actions)
	values := parseActions(in.ActionValues)
	purchases := actions["purchase"]
	if purchases == 0 {
		purchases = actions["omni_purchase"]
	}
	revenue := values["purchase"]
	if revenue == 0 {
		revenue = values["omni_purchase"]
	}
	return models.PerformanceRecord{
		CampaignID:   in.CampaignID,
		CampaignName: in.CampaignName,
		Date:         date,
		Hour:         hour,
		Spend:        atofDef(in.Spend, 0),
		Impressions:  atoiDef(in.Impressions, 0),
		Clicks:       atoiDef(in.Clicks, 0),
		Purchases:    int(purchases),
		Revenue:      revenue,
	}, true
}

// parseHourBreakdown extracts the hour from breakdown windows shaped like
// "06:00:00 - 06:59:59".
func parseHourBreakdown(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

func parseActions(actions []action) map[string]float64 {
	out := make(map[string]float64, len(actions))
	for _, a := range actions {
		out[a.ActionType] = atofDef(a.Value, 0)
	}
	return out
}

func atofDef(s string, def float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func atoiDef(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
