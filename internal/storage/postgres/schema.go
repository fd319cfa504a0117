package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS risk_assessments (
		id               UUID PRIMARY KEY,
		claim_id         TEXT,
		score            INTEGER NOT NULL,
		level            TEXT NOT NULL,
		fraud_count      INTEGER NOT NULL DEFAULT 0,
		suspicious_count INTEGER NOT NULL DEFAULT 0,
		entities         JSONB NOT NULL DEFAULT '{}',
		details          JSONB NOT NULL DEFAULT '{}',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS risk_assessments_claim_idx ON risk_assessments (claim_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS detection_reports (
		run_id              TEXT PRIMARY KEY,
		trigger             TEXT NOT NULL,
		total_findings      INTEGER NOT NULL,
		suspicious_entities INTEGER NOT NULL,
		suspicious_claims   INTEGER NOT NULL,
		started_at          TIMESTAMPTZ NOT NULL,
		finished_at         TIMESTAMPTZ NOT NULL,
		report              JSONB NOT NULL
	)`,
}

// EnsureSchema creates the assessment and report tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
