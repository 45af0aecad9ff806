package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

// Settings returns the global optimizer settings, falling back to defaults
// when the row does not exist yet.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	out := models.DefaultSettings()
	err := s.db.QueryRowContext(ctx, `
		SELECT auto_optimize, max_budget_increase, max_budget_decrease, min_data_hours
		FROM settings
		WHERE id = 1
	`).Scan(&out.AutoOptimize, &out.MaxBudgetIncrease, &out.MaxBudgetDecrease, &out.MinDataHours)
	if err == sql.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("get settings: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateSettings(ctx context.Context, v models.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, auto_optimize, max_budget_increase, max_budget_decrease, min_data_hours, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			auto_optimize = EXCLUDED.auto_optimize,
			max_budget_increase = EXCLUDED.max_budget_increase,
			max_budget_decrease = EXCLUDED.max_budget_decrease,
			min_data_hours = EXCLUDED.min_data_hours,
			updated_at = NOW()
	`, v.AutoOptimize, v.MaxBudgetIncrease, v.MaxBudgetDecrease, v.MinDataHours)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func (s *Store) CampaignSettings(ctx context.Context, campaignID string) (*models.CampaignSettings, error) {
	cs := &models.CampaignSettings{}
	var targetROAS, targetCPA sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT campaign_id, auto_optimize, max_budget_increase, max_budget_decrease,
		       target_roas, target_cpa, updated_at
		FROM campaign_settings
		WHERE campaign_id = $1
	`, campaignID).Scan(&cs.CampaignID, &cs.AutoOptimize, &cs.MaxBudgetIncrease,
		&cs.MaxBudgetDecrease, &targetROAS, &targetCPA, &cs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign settings: %w", err)
	}
	if targetROAS.Valid {
		cs.TargetROAS = &targetROAS.Float64
	}
	if targetCPA.Valid {
		cs.TargetCPA = &targetCPA.Float64
	}
	return cs, nil
}

func (s *Store) UpsertCampaignSettings(ctx context.Context, cs models.CampaignSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaign_settings
			(campaign_id, auto_optimize, max_budget_increase, max_budget_decrease,
			 target_roas, target_cpa, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (campaign_id) DO UPDATE SET
			auto_optimize = EXCLUDED.auto_optimize,
			max_budget_increase = EXCLUDED.max_budget_increase,
			max_budget_decrease = EXCLUDED.max_budget_decrease,
			target_roas = EXCLUDED.target_roas,
			target_cpa = EXCLUDED.target_cpa,
			updated_at = NOW()
	`, cs.CampaignID, cs.AutoOptimize, cs.MaxBudgetIncrease, cs.MaxBudgetDecrease,
		cs.TargetROAS, cs.TargetCPA)
	if err != nil {
		return fmt.Errorf("upsert campaign settings: %w", err)
	}
	return nil
}

// EffectiveSettings resolves the settings used for one campaign: the
// per-campaign override when present, otherwise the global row.
func (s *Store) EffectiveSettings(ctx context.Context, campaignID string) (models.Settings, error) {
	global, err := s.Settings(ctx)
	if err != nil {
		return global, err
	}
	if campaignID == "" {
		return global, nil
	}
	cs, err := s.CampaignSettings(ctx, campaignID)
	if err == ErrNotFound {
		return global, nil
	}
	if err != nil {
		return global, err
	}
	global.AutoOptimize = cs.AutoOptimize
	if cs.MaxBudgetIncrease > 0 {
		global.MaxBudgetIncrease = cs.MaxBudgetIncrease
	}
	if cs.MaxBudgetDecrease > 0 {
		global.MaxBudgetDecrease = cs.MaxBudgetDecrease
	}
	return global, nil
}
