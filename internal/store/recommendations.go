package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Moneymanners/meta-ads-bot2/internal/models"
)

// InsertRecommendations archives generated recommendations as pending rows.
// Inserts are at-least-once: every analysis run writes fresh rows and no
// dedup against earlier pending rows is attempted.
func (s *Store) InsertRecommendations(ctx context.Context, recs []models.Recommendation) error {
	for _, r := range recs {
		confidence := r.Confidence
		if confidence == "" {
			confidence = models.ConfidenceMedium
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO recommendations
				(id, campaign_id, type, hour, current_value, recommended_value,
				 reason, confidence, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', NOW())
		`, uuid.New().String(), r.CampaignID, string(r.Type), r.Hour,
			r.CurrentBudget, r.RecommendedBudget, r.Reason, string(confidence))
		if err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}
	return nil
}

func (s *Store) PendingRecommendations(ctx context.Context) ([]models.StoredRecommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.campaign_id, COALESCE(c.name,''), r.type, r.hour,
		       r.current_value, r.recommended_value, r.reason, r.confidence,
		       r.status, r.created_at
		FROM recommendations r
		LEFT JOIN campaigns c ON c.id = r.campaign_id
		WHERE r.status = 'pending'
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending recommendations: %w", err)
	}
	defer rows.Close()

	var out []models.StoredRecommendation
	for rows.Next() {
		var r models.StoredRecommendation
		var hour sql.NullInt64
		var cur, rec sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.CampaignName, &r.Type, &hour,
			&cur, &rec, &r.Reason, &r.Confidence, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if hour.Valid {
			h := int(hour.Int64)
			r.Hour = &h
		}
		if cur.Valid {
			r.CurrentValue = &cur.Float64
		}
		if rec.Valid {
			r.RecommendedValue = &rec.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Recommendation(ctx context.Context, id string) (*models.StoredRecommendation, error) {
	r := &models.StoredRecommendation{}
	var hour sql.NullInt64
	var cur, rec sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, campaign_id, type, hour, current_value, recommended_value,
		       reason, confidence, status, created_at
		FROM recommendations
		WHERE id = $1
	`, id).Scan(&r.ID, &r.CampaignID, &r.Type, &hour, &cur, &rec,
		&r.Reason, &r.Confidence, &r.Status, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	if hour.Valid {
		h := int(hour.Int64)
		r.Hour = &h
	}
	if cur.Valid {
		r.CurrentValue = &cur.Float64
	}
	if rec.Valid {
		r.RecommendedValue = &rec.Float64
	}
	return r, nil
}

func (s *Store) UpdateRecommendationStatus(ctx context.Context, id, status string, appliedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recommendations SET status = $1, applied_at = $2 WHERE id = $3
	`, status, appliedAt, id)
	if err != nil {
		return fmt.Errorf("update recommendation status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertActionLog(ctx context.Context, a models.ActionLog) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_log
			(id, campaign_id, action_type, details, before_value, after_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, a.ID, a.CampaignID, a.ActionType, a.Details, a.BeforeValue, a.AfterValue)
	if err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}
