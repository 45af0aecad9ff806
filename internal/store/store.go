// Package store persists campaigns, hourly performance rows and
// recommendations in PostgreSQL.
//
// Expected schema:
//
//	campaigns(id text primary key, name text, status text, objective text,
//	          daily_budget numeric, updated_at timestamptz)
//	hourly_performance(campaign_id text, campaign_name text, date date,
//	          hour int, spend numeric, impressions int, clicks int,
//	          purchases int, revenue numeric, created_at timestamptz,
//	          unique(campaign_id, date, hour))
//	recommendations(id uuid primary key, campaign_id text, type text,
//	          hour int, current_value numeric, recommended_value numeric,
//	          reason text, confidence text, status text,
//	          created_at timestamptz, applied_at timestamptz)
//	action_log(id uuid primary key, campaign_id text, action_type text,
//	          details text, before_value numeric, after_value numeric,
//	          created_at timestamptz)
//	settings(id int primary key, auto_optimize bool, max_budget_increase int,
//	          max_budget_decrease int, min_data_hours int, updated_at timestamptz)
//	campaign_settings(campaign_id text primary key, auto_optimize bool,
//	          max_budget_increase int, max_budget_decrease int,
//	          target_roas numeric, target_cpa numeric, updated_at timestamptz)
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) UpsertCampaign(ctx context.Context, c models.Campaign) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, status, objective, daily_budget, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			objective = EXCLUDED.objective,
			daily_budget = EXCLUDED.daily_budget,
			updated_at = NOW()
	`, c.ID, c.Name, c.Status, c.Objective, c.DailyBudget)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

func (s *Store) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, COALESCE(objective,''), COALESCE(daily_budget,0), updated_at
		FROM campaigns
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &c.Objective, &c.DailyBudget, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Campaign(ctx context.Context, id string) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, COALESCE(objective,''), COALESCE(daily_budget,0), updated_at
		FROM campaigns
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Status, &c.Objective, &c.DailyBudget, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// UpsertHourly writes synced insight rows, replacing prior values for the
// same campaign/date/hour so re-syncing a window is idempotent.
func (s *Store) UpsertHourly(ctx context.Context, recs []models.PerformanceRecord) (int, error) {
	n := 0
	for _, r := range recs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO hourly_performance
				(campaign_id, campaign_name, date, hour, spend, impressions, clicks, purchases, revenue, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (campaign_id, date, hour) DO UPDATE SET
				campaign_name = EXCLUDED.campaign_name,
				spend = EXCLUDED.spend,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				purchases = EXCLUDED.purchases,
				revenue = EXCLUDED.revenue
		`, r.CampaignID, r.CampaignName, r.Date.Format("2006-01-02"), r.Hour,
			r.Spend, r.Impressions, r.Clicks, r.Purchases, r.Revenue)
		if err != nil {
			return n, fmt.Errorf("upsert hourly row: %w", err)
		}
		n++
	}
	return n, nil
}

// HourlyRows returns the raw records for one campaign inside an inclusive
// date window. NULL numerics coerce to zero at the scan boundary.
func (s *Store) HourlyRows(ctx context.Context, campaignID, fromDate, toDate string) ([]models.PerformanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, COALESCE(campaign_name,''), date, hour,
		       COALESCE(spend,0), COALESCE(impressions,0), COALESCE(clicks,0),
		       COALESCE(purchases,0), COALESCE(revenue,0)
		FROM hourly_performance
		WHERE campaign_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, hour
	`, campaignID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query hourly rows: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// RecentRows returns the newest rows for a campaign, for the impact view.
func (s *Store) RecentRows(ctx context.Context, campaignID string, limit int) ([]models.PerformanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, COALESCE(campaign_name,''), date, hour,
		       COALESCE(spend,0), COALESCE(impressions,0), COALESCE(clicks,0),
		       COALESCE(purchases,0), COALESCE(revenue,0)
		FROM hourly_performance
		WHERE campaign_id = $1
		ORDER BY date DESC, hour DESC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent rows: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.PerformanceRecord, error) {
	var out []models.PerformanceRecord
	for rows.Next() {
		var r models.PerformanceRecord
		var date time.Time
		if err := rows.Scan(&r.CampaignID, &r.CampaignName, &date, &r.Hour,
			&r.Spend, &r.Impressions, &r.Clicks, &r.Purchases, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan hourly row: %w", err)
		}
		r.Date = date
		out = append(out, r)
	}
	return out, rows.Err()
}
