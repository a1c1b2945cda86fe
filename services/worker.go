package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	importQueueKey     = "catalog_import:queue"
	importJobKeyPrefix = "catalog_import:job:"
	importJobTTL       = 24 * time.Hour
	// importJobTimeout bounds one job once it has been taken off the queue.
	importJobTimeout = 30 * time.Minute
)

func importJobKey(id string) string { return importJobKeyPrefix + id }

func importBlobKey(id string) string { return fmt.Sprintf("imports/%s.csv", id) }

// ImportJobQueue stages uploaded CSV files in the blob store and queues their
// job ids on a Redis list. Job state is kept in Redis for a day.
type ImportJobQueue struct {
	rdb   *redis.Client
	blobs repository.BlobStore
}

func NewImportJobQueue(rdb *redis.Client, blobs repository.BlobStore) *ImportJobQueue {
	return &ImportJobQueue{rdb: rdb, blobs: blobs}
}

// Enqueue stores data and queues a pending job for it.
func (q *ImportJobQueue) Enqueue(ctx context.Context, data []byte, opts ImportOptions) (*models.ImportJob, error) {
	job := &models.ImportJob{
		ID:            uuid.NewString(),
		Status:        models.JobPending,
		Mapping:       opts.Mapping,
		RefreshCounts: opts.RefreshCounts,
		CreatedAt:     time.Now().UTC(),
	}
	job.BlobKey = importBlobKey(job.ID)

	if _, err := q.blobs.Upload(ctx, job.BlobKey, "text/csv", data); err != nil {
		return nil, fmt.Errorf("stage import file: %w", err)
	}
	if err := q.saveJob(ctx, job); err != nil {
		q.removeStaged(ctx, job.BlobKey)
		return nil, err
	}
	if err := q.rdb.RPush(ctx, importQueueKey, job.ID).Err(); err != nil {
		q.rdb.Del(ctx, importJobKey(job.ID))
		q.removeStaged(ctx, job.BlobKey)
		return nil, fmt.Errorf("enqueue import job: %w", err)
	}
	zap.L().Info("import job queued", zap.String("job", job.ID))
	return job, nil
}

func (q *ImportJobQueue) GetJob(ctx context.Context, id string) (*models.ImportJob, error) {
	val, err := q.rdb.Get(ctx, importJobKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read import job: %w", err)
	}
	var job models.ImportJob
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, fmt.Errorf("parse import job: %w", err)
	}
	return &job, nil
}

func (q *ImportJobQueue) saveJob(ctx context.Context, job *models.ImportJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal import job: %w", err)
	}
	if err := q.rdb.Set(ctx, importJobKey(job.ID), b, importJobTTL).Err(); err != nil {
		return fmt.Errorf("save import job: %w", err)
	}
	return nil
}

func (q *ImportJobQueue) removeStaged(ctx context.Context, key string) {
	if err := q.blobs.Delete(ctx, key); err != nil {
		zap.L().Warn("failed to remove staged import file", zap.String("key", key), zap.Error(err))
	}
}

// process runs one job to completion and records the outcome on it. The job
// id is already off the queue, so the work runs on a context that outlives
// worker shutdown and only the job timeout can stop it.
func (q *ImportJobQueue) process(ctx context.Context, svc *ImportService, job *models.ImportJob) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), importJobTimeout)
	defer cancel()

	job.Status = models.JobProcessing
	if err := q.saveJob(ctx, job); err != nil {
		zap.L().Warn("failed to mark job processing", zap.String("job", job.ID), zap.Error(err))
	}

	result, err := q.run(ctx, svc, job)
	finished := time.Now().UTC()
	job.FinishedAt = &finished
	if err != nil {
		zap.L().Error("import job failed", zap.String("job", job.ID), zap.Error(err))
		job.Status = models.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = models.JobDone
		job.Result = result
	}
	if err := q.saveJob(ctx, job); err != nil {
		zap.L().Error("failed to store job result", zap.String("job", job.ID), zap.Error(err))
	}
	q.removeStaged(ctx, job.BlobKey)
}

func (q *ImportJobQueue) run(ctx context.Context, svc *ImportService, job *models.ImportJob) (*models.BulkImportResult, error) {
	data, err := q.blobs.Download(ctx, job.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("load staged import file: %w", err)
	}
	return svc.Import(ctx, bytes.NewReader(data), ImportOptions{
		Mapping:       job.Mapping,
		RefreshCounts: job.RefreshCounts,
		JobID:         job.ID,
	})
}

// StartImportWorker consumes queued job ids until ctx is cancelled. Jobs are
// processed one at a time in queue order. A job in progress when ctx is
// cancelled still finishes; the returned channel is closed once the worker
// has exited.
func StartImportWorker(ctx context.Context, q *ImportJobQueue, svc *ImportService) <-chan struct{} {
	done := make(chan struct{})
	if q == nil || q.rdb == nil || svc == nil {
		zap.L().Warn("import worker not started: missing dependencies")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		zap.L().Info("import worker started", zap.String("queue", importQueueKey))
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("import worker stopping")
				return
			default:
			}

			res, err := q.rdb.BLPop(ctx, 0*time.Second, importQueueKey).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}

			job, err := q.GetJob(ctx, res[1])
			if err != nil {
				zap.L().Error("failed to read job metadata", zap.String("job", res[1]), zap.Error(err))
				continue
			}
			q.process(ctx, svc, job)
		}
	}()
	return done
}
