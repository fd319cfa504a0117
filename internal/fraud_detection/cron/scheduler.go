package cronjob

import (
	"context"
	"errors"
	"fmt"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/insurance-graph/fraud-ring-backend/internal/logging"
	"github.com/robfig/cron/v3"
)

// Detector starts background detection runs; *service.DetectionService implements it.
type Detector interface {
	Running() bool
	StartRun(ctx context.Context, req *domain.CreateRunRequest) (*domain.DetectionRun, error)
}

// Scheduler triggers a detection run with the configured default thresholds
// on a cron schedule with a seconds field.
type Scheduler struct {
	cron     *cron.Cron
	detector Detector
	schedule string
}

func NewScheduler(detector Detector, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		detector: detector,
		schedule: schedule,
	}
}

// Start registers the detection job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunScheduled); err != nil {
		return fmt.Errorf("invalid detection schedule %q: %w", s.schedule, err)
	}

	logging.Component("scheduler").LogInfof("start", "detection scheduled at %q", s.schedule)
	s.cron.Start()
	return nil
}

// Stop stops the cron loop. The returned context is done once a job that is
// currently being dispatched returns.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunScheduled is the cron job body. It skips when a run is already in progress,
// here or on another instance.
func (s *Scheduler) RunScheduled() {
	log := logging.Component("scheduler")
	if s.detector.Running() {
		log.LogInfo("detect", "skipped: a run is in progress")
		return
	}

	run, err := s.detector.StartRun(context.Background(), &domain.CreateRunRequest{
		Trigger:     domain.TriggerSchedule,
		RequestedBy: "scheduler",
	})
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		log.LogInfo("detect", "skipped: a run is in progress")
	case err != nil:
		log.LogError("detect", err)
	default:
		log.With("run_id", run.RunID).LogInfo("detect", "scheduled run started")
	}
}
