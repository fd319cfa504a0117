package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix          = "fraud:run:"       // run record: fraud:run:{run_id}
	runIndexKey           = "fraud:runs"       // sorted set of run ids scored by creation time
	runLockKey            = "fraud:lock:run"   // holder run id while a run executes
	runEventChannelPrefix = "fraud:events:"    // Pub/Sub channel for run events: fraud:events:{run_id}
	runTTL                = 7 * 24 * time.Hour // TTL for run data (7 days)
)

// releaseLock deletes the lock only when it is still held by the caller.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunRepository stores detection run records in Redis.
type RunRepository struct {
	client *redis.Client
}

func NewRunRepository(client *redis.Client) *RunRepository {
	return &RunRepository{client: client}
}

// Create stores a new run and announces it on the run's event channel.
func (r *RunRepository) Create(ctx context.Context, run *domain.DetectionRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = run.CreatedAt
	}

	runData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.runKey(run.RunID), runData, runTTL)
	pipe.ZAdd(ctx, runIndexKey, redis.Z{Score: float64(run.CreatedAt.UnixNano()), Member: run.RunID})
	pipe.Expire(ctx, runIndexKey, runTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	r.publish(ctx, run.RunID, runData)
	return nil
}

func (r *RunRepository) GetByRunID(ctx context.Context, runID string) (*domain.DetectionRun, error) {
	data, err := r.client.Get(ctx, r.runKey(runID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run domain.DetectionRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}
	return &run, nil
}

// Update overwrites an existing run and publishes the new state.
func (r *RunRepository) Update(ctx context.Context, run *domain.DetectionRun) error {
	exists, err := r.client.Exists(ctx, r.runKey(run.RunID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check run: %w", err)
	}
	if exists == 0 {
		return domain.ErrRunNotFound
	}

	run.UpdatedAt = time.Now()
	runData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}
	if err := r.client.Set(ctx, r.runKey(run.RunID), runData, runTTL).Err(); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	if run.Status != "" {
		r.publish(ctx, run.RunID, runData)
	}
	return nil
}

// List returns up to limit run records, newest first. Expired records are skipped.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*domain.DetectionRun, error) {
	if limit <= 0 {
		limit = 50
	}
	ids, err := r.client.ZRevRange(ctx, runIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*domain.DetectionRun, 0, len(ids))
	for _, id := range ids {
		run, err := r.GetByRunID(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			r.client.ZRem(ctx, runIndexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *RunRepository) Delete(ctx context.Context, runID string) error {
	if _, err := r.GetByRunID(ctx, runID); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.runKey(runID))
	pipe.ZRem(ctx, runIndexKey, runID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// AcquireLock claims the cluster-wide run slot for runID. It reports false when
// another run holds it.
func (r *RunRepository) AcquireLock(ctx context.Context, runID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, runLockKey, runID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	return ok, nil
}

func (r *RunRepository) ReleaseLock(ctx context.Context, runID string) error {
	if err := releaseLock.Run(ctx, r.client, []string{runLockKey}, runID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// Subscribe listens to the event channel of one run. Callers close the returned PubSub.
func (r *RunRepository) Subscribe(ctx context.Context, runID string) *redis.PubSub {
	return r.client.Subscribe(ctx, r.runEventChannel(runID))
}

func (r *RunRepository) publish(ctx context.Context, runID string, payload []byte) {
	r.client.Publish(ctx, r.runEventChannel(runID), payload)
}

func (r *RunRepository) runKey(runID string) string {
	return fmt.Sprintf("%s%s", runKeyPrefix, runID)
}

func (r *RunRepository) runEventChannel(runID string) string {
	return fmt.Sprintf("%s%s", runEventChannelPrefix, runID)
}
