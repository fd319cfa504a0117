package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the archive needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReportArchive keeps completed detection reports in PostgreSQL after their
// Redis run records expire.
type ReportArchive struct {
	db Querier
}

func NewReportArchive(db Querier) *ReportArchive {
	return &ReportArchive{db: db}
}

func (a *ReportArchive) Save(ctx context.Context, run *domain.DetectionRun) error {
	if run.Report == nil {
		return fmt.Errorf("run %s has no report", run.RunID)
	}
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = a.db.Exec(ctx, `
		INSERT INTO detection_reports (
			run_id, trigger, total_findings, suspicious_entities, suspicious_claims,
			started_at, finished_at, report
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			total_findings = EXCLUDED.total_findings,
			suspicious_entities = EXCLUDED.suspicious_entities,
			suspicious_claims = EXCLUDED.suspicious_claims,
			finished_at = EXCLUDED.finished_at,
			report = EXCLUDED.report
	`,
		run.RunID,
		run.Trigger,
		run.Report.Summary.TotalFindings,
		run.Report.Summary.SuspiciousEntities,
		run.Report.Summary.SuspiciousClaims,
		run.Report.StartedAt,
		run.Report.FinishedAt,
		reportJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}
	return nil
}

func (a *ReportArchive) Get(ctx context.Context, runID string) (*domain.Report, error) {
	var raw []byte
	err := a.db.QueryRow(ctx, `SELECT report FROM detection_reports WHERE run_id = $1`, runID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var rep domain.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}
