package cronjob

import (
	"context"
	"sync"
	"testing"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	mu      sync.Mutex
	running bool
	err     error
	started []*domain.CreateRunRequest
}

func (d *fakeDetector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *fakeDetector) StartRun(_ context.Context, req *domain.CreateRunRequest) (*domain.DetectionRun, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.started = append(d.started, req)
	return &domain.DetectionRun{RunID: "run-1", Status: domain.StatusPending, Trigger: req.Trigger}, nil
}

func TestScheduler_RunScheduled(t *testing.T) {
	det := &fakeDetector{}
	s := NewScheduler(det, "0 0 2 * * *")

	s.RunScheduled()
	require.Len(t, det.started, 1)
	assert.Equal(t, domain.TriggerSchedule, det.started[0].Trigger)
	assert.Equal(t, domain.ThresholdOverrides{}, det.started[0].Thresholds, "defaults are resolved by the service")

	det.running = true
	s.RunScheduled()
	assert.Len(t, det.started, 1, "skipped while a run is in progress")

	det.running = false
	det.err = domain.ErrRunInProgress
	s.RunScheduled()
	assert.Len(t, det.started, 1)
}

func TestScheduler_Start(t *testing.T) {
	s := NewScheduler(&fakeDetector{}, "0 0 2 * * *")
	require.NoError(t, s.Start())
	<-s.Stop().Done()

	bad := NewScheduler(&fakeDetector{}, "every night")
	assert.ErrorContains(t, bad.Start(), "invalid detection schedule")
}
