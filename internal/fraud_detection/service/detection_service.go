package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection"
	_ "github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/detection/rules"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/network"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/scoring"
	"github.com/insurance-graph/fraud-ring-backend/internal/graphstore"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
	"github.com/insurance-graph/fraud-ring-backend/internal/metrics"
)

const defaultLockTTL = 30 * time.Minute

// RunStore persists run records; *repository.RunRepository implements it.
type RunStore interface {
	Create(ctx context.Context, run *domain.DetectionRun) error
	GetByRunID(ctx context.Context, runID string) (*domain.DetectionRun, error)
	Update(ctx context.Context, run *domain.DetectionRun) error
	List(ctx context.Context, limit int) ([]*domain.DetectionRun, error)
	Delete(ctx context.Context, runID string) error
	AcquireLock(ctx context.Context, runID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, runID string) error
}

// ReportArchiver keeps completed reports; *repository.ReportArchive implements it.
type ReportArchiver interface {
	Save(ctx context.Context, run *domain.DetectionRun) error
}

// DetectionService runs the detectors against the graph store. One run executes
// at a time per process, and per cluster when a RunStore is configured.
type DetectionService struct {
	store    graphstore.Store
	runs     RunStore
	archive  ReportArchiver
	defaults domain.Thresholds
	lockTTL  time.Duration

	busy    atomic.Bool
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

type DetectionOption func(*DetectionService)

func WithRunStore(r RunStore) DetectionOption { return func(s *DetectionService) { s.runs = r } }

func WithArchive(a ReportArchiver) DetectionOption {
	return func(s *DetectionService) { s.archive = a }
}

// WithLockTTL bounds how long a crashed run can hold the cluster lock.
func WithLockTTL(ttl time.Duration) DetectionOption {
	return func(s *DetectionService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithDefaultThresholds(th domain.Thresholds) DetectionOption {
	return func(s *DetectionService) { s.defaults = th.WithDefaults() }
}

func NewDetectionService(store graphstore.Store, opts ...DetectionOption) *DetectionService {
	s := &DetectionService{
		store:    store,
		defaults: domain.DefaultThresholds(),
		lockTTL:  defaultLockTTL,
		cancels:  map[string]context.CancelFunc{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DetectionService) Defaults() domain.Thresholds { return s.defaults }

// resolve applies the caller's overrides to the service defaults.
func (s *DetectionService) resolve(o domain.ThresholdOverrides) (domain.Thresholds, error) {
	th := o.Apply(s.defaults)
	return th, th.Validate()
}

// begin claims the run slot. The returned func releases it.
func (s *DetectionService) begin(ctx context.Context, runID string) (func(), error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrRunInProgress
	}
	if s.runs == nil {
		return func() { s.busy.Store(false) }, nil
	}
	ok, err := s.runs.AcquireLock(ctx, runID, s.lockTTL)
	if err != nil || !ok {
		s.busy.Store(false)
		if err != nil {
			return nil, err
		}
		return nil, domain.ErrRunInProgress
	}
	return func() {
		if err := s.runs.ReleaseLock(context.Background(), runID); err != nil {
			logging.Component("detection").With("run_id", runID).LogError("release_lock", err)
		}
		s.busy.Store(false)
	}, nil
}

// RunAll executes a full detection pass synchronously and returns its report.
func (s *DetectionService) RunAll(ctx context.Context, o domain.ThresholdOverrides) (*domain.Report, error) {
	th, err := s.resolve(o)
	if err != nil {
		return nil, err
	}
	release, err := s.begin(ctx, uuid.New().String())
	if err != nil {
		return nil, err
	}
	defer release()
	return s.execute(ctx, th)
}

func (s *DetectionService) execute(ctx context.Context, th domain.Thresholds) (*domain.Report, error) {
	rep := &domain.Report{StartedAt: time.Now().UTC(), Thresholds: th, Counts: map[domain.FraudKind]int{}}

	cleared, err := s.store.ClearDetections(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear detections: %w", err)
	}
	rep.Cleared = cleared

	g, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findings, err := detection.RunAll(g, th)
	if err != nil {
		return nil, err
	}
	w := detection.BuildWrite(g, findings)
	w.Apply(g)

	// degree is measured on the flagged graph, suspicious links included
	w.Centrality = network.DegreeCentrality(g)
	for _, c := range w.Centrality {
		g.Nodes[c.NodeID].Props[domain.PropDegreeCentrality] = c.Degree
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.ApplyDetections(ctx, w); err != nil {
		return nil, fmt.Errorf("apply detections: %w", err)
	}

	for _, f := range findings {
		rep.Counts[f.Kind]++
	}
	rep.Findings = scoring.PrioritizeFindings(findings)
	rep.Centrality = network.SummarizeCentrality(g, w.Centrality)
	rep.Suspicious = network.SuspiciousSummary(g)
	rep.Communities = network.Communities(g)
	rep.Links = len(w.Links)
	rep.Summary = summarize(g, findings, w)
	rep.FinishedAt = time.Now().UTC()
	return rep, nil
}

func summarize(g *domain.Graph, findings []domain.Finding, w domain.DetectionWrite) domain.RunSummary {
	sum := domain.RunSummary{TotalFindings: len(findings), HighCentrality: len(w.Centrality)}
	for _, n := range g.Nodes {
		if !n.IsSuspicious() {
			continue
		}
		if n.HasLabel(domain.LabelClaim) {
			sum.SuspiciousClaims++
		} else {
			sum.SuspiciousEntities++
		}
	}
	return sum
}

// StartRun records a pending run and executes it in the background.
func (s *DetectionService) StartRun(ctx context.Context, req *domain.CreateRunRequest) (*domain.DetectionRun, error) {
	if s.runs == nil {
		return nil, errors.New("asynchronous runs need a run store")
	}
	th, err := s.resolve(req.Thresholds)
	if err != nil {
		return nil, err
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = domain.TriggerAPI
	}

	run := &domain.DetectionRun{
		RunID:       uuid.New().String(),
		Status:      domain.StatusPending,
		Trigger:     trigger,
		RequestedBy: req.RequestedBy,
		Thresholds:  th,
		CreatedAt:   time.Now(),
	}
	release, err := s.begin(ctx, run.RunID)
	if err != nil {
		return nil, err
	}
	if err := s.runs.Create(ctx, run); err != nil {
		release()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[run.RunID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer release()
		defer func() {
			s.mu.Lock()
			delete(s.cancels, run.RunID)
			s.mu.Unlock()
			cancel()
		}()
		s.process(runCtx, *run)
	}()
	return run, nil
}

func (s *DetectionService) process(ctx context.Context, run domain.DetectionRun) {
	log := logging.Component("detection").With("run_id", run.RunID)
	bg := context.Background()

	run.Status = domain.StatusRunning
	if err := s.runs.Update(bg, &run); err != nil {
		log.LogError("mark_running", err)
	}

	start := time.Now()
	report, err := s.execute(ctx, run.Thresholds)
	now := time.Now()
	run.CompletedAt = &now

	switch {
	case ctx.Err() != nil:
		run.Status = domain.StatusCancelled
	case err != nil:
		run.Status = domain.StatusFailed
		run.Error = err.Error()
	default:
		run.Status = domain.StatusCompleted
		run.Report = report
	}

	// a cancel issued from another process wins over our outcome
	if cur, gerr := s.runs.GetByRunID(bg, run.RunID); gerr == nil && cur.Status == domain.StatusCancelled {
		run.Status = domain.StatusCancelled
		run.Report = nil
	}

	if err := s.runs.Update(bg, &run); err != nil {
		log.LogError("store_result", err)
	}
	metrics.DetectionRuns.WithLabelValues(run.Trigger, run.Status).Inc()

	if run.Status != domain.StatusCompleted {
		log.LogWarnf("detect", "run ended %s: %s", run.Status, run.Error)
		return
	}
	metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	RecordReport(report)
	log.LogInfof("detect", "%d findings, %d suspicious entities, %d suspicious claims",
		report.Summary.TotalFindings, report.Summary.SuspiciousEntities, report.Summary.SuspiciousClaims)

	if s.archive != nil {
		if err := s.archive.Save(bg, &run); err != nil {
			log.LogError("archive_report", err)
		}
	}
}

// RecordReport publishes the gauges describing a completed run.
func RecordReport(rep *domain.Report) {
	for _, k := range domain.RunOrder {
		metrics.Findings.WithLabelValues(string(k)).Set(float64(rep.Counts[k]))
	}
	metrics.SuspiciousNodes.Set(float64(rep.Summary.SuspiciousEntities + rep.Summary.SuspiciousClaims))
}

func (s *DetectionService) GetRun(ctx context.Context, runID string) (*domain.DetectionRun, error) {
	if s.runs == nil {
		return nil, domain.ErrRunNotFound
	}
	return s.runs.GetByRunID(ctx, runID)
}

// ListRuns returns recent runs, newest first.
func (s *DetectionService) ListRuns(ctx context.Context, limit int) ([]*domain.DetectionRun, error) {
	if s.runs == nil {
		return []*domain.DetectionRun{}, nil
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// CancelRun stops an active run, or deletes the record of a finished one.
func (s *DetectionService) CancelRun(ctx context.Context, runID string) (*domain.DetectionRun, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(run.Status) {
		return nil, s.runs.Delete(ctx, runID)
	}

	s.mu.Lock()
	cancel, local := s.cancels[runID]
	s.mu.Unlock()
	if local {
		cancel()
	}

	now := time.Now()
	run.Status = domain.StatusCancelled
	run.CompletedAt = &now
	if err := s.runs.Update(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Running reports whether this process is executing a run.
func (s *DetectionService) Running() bool { return s.busy.Load() }

// Wait blocks until background runs have finished.
func (s *DetectionService) Wait() { s.wg.Wait() }

// Shutdown cancels background runs and waits for them.
func (s *DetectionService) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ClearDetections removes every detector output from the store.
func (s *DetectionService) ClearDetections(ctx context.Context) (domain.ClearStats, error) {
	if s.busy.Load() {
		return domain.ClearStats{}, domain.ErrRunInProgress
	}
	return s.store.ClearDetections(ctx)
}
