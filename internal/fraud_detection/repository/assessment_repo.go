package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
)

// AssessmentRepository handles PostgreSQL operations for risk assessments
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// assessmentDetail is the JSONB payload next to the indexed columns.
type assessmentDetail struct {
	Warnings      []string            `json:"warnings"`
	FraudEntities []domain.RiskEntity `json:"fraud_entities"`
	Suspicious    []domain.RiskEntity `json:"suspicious_entities"`
}

// CreateOrUpdate upserts an assessment by id.
func (r *AssessmentRepository) CreateOrUpdate(ctx context.Context, a *domain.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO risk_assessments (
			id, claim_id, score, level, fraud_count, suspicious_count, entities, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			claim_id = EXCLUDED.claim_id,
			score = EXCLUDED.score,
			level = EXCLUDED.level,
			fraud_count = EXCLUDED.fraud_count,
			suspicious_count = EXCLUDED.suspicious_count,
			entities = EXCLUDED.entities,
			details = EXCLUDED.details
		RETURNING created_at
	`

	entitiesJSON, err := json.Marshal(a.Entities)
	if err != nil {
		entitiesJSON = []byte("{}")
	}
	detailJSON, err := json.Marshal(assessmentDetail{
		Warnings:      a.Warnings,
		FraudEntities: a.FraudEntities,
		Suspicious:    a.Suspicious,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal assessment details: %w", err)
	}

	var claimID sql.NullString
	if a.ClaimID != "" {
		claimID = sql.NullString{String: a.ClaimID, Valid: true}
	}

	var createdAt time.Time
	err = r.db.QueryRowContext(ctx, query,
		a.ID,
		claimID,
		a.Score,
		string(a.Level),
		a.FraudCount,
		a.SuspiciousCount,
		entitiesJSON,
		detailJSON,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("failed to store assessment: %w", err)
	}

	a.CreatedAt = createdAt
	return nil
}

const selectAssessment = `
	SELECT id, claim_id, score, level, fraud_count, suspicious_count, entities, details, created_at
	FROM risk_assessments
`

func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	return r.one(ctx, selectAssessment+`WHERE id = $1`, id)
}

// GetByClaimID returns the latest assessment recorded for a claim.
func (r *AssessmentRepository) GetByClaimID(ctx context.Context, claimID string) (*domain.Assessment, error) {
	return r.one(ctx, selectAssessment+`WHERE claim_id = $1 ORDER BY created_at DESC LIMIT 1`, claimID)
}

// ListRecent returns the newest assessments first.
func (r *AssessmentRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Assessment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, selectAssessment+`ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return out, nil
}

func (r *AssessmentRepository) one(ctx context.Context, query string, arg any) (*domain.Assessment, error) {
	a, err := scanAssessment(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAssessmentMissing
	}
	return a, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (*domain.Assessment, error) {
	var (
		a                   domain.Assessment
		claimID             sql.NullString
		level               string
		entitiesJSON, dJSON []byte
	)
	err := row.Scan(&a.ID, &claimID, &a.Score, &level, &a.FraudCount, &a.SuspiciousCount,
		&entitiesJSON, &dJSON, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}

	a.ClaimID = claimID.String
	a.Level = domain.RiskLevel(level)
	a.Entities = map[string]string{}
	if len(entitiesJSON) > 0 {
		_ = json.Unmarshal(entitiesJSON, &a.Entities)
	}
	var d assessmentDetail
	if len(dJSON) > 0 {
		if err := json.Unmarshal(dJSON, &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assessment details: %w", err)
		}
	}
	a.Warnings, a.FraudEntities, a.Suspicious = d.Warnings, d.FraudEntities, d.Suspicious
	return &a, nil
}
