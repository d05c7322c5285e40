package audit

import (
	"context"
	"time"

	"github.com/spinworks/draw10/internal/logger"
)

// CleanupJob trims old audit records. Scheduled on the shared worker pool.
type CleanupJob struct {
	service       Service
	retentionDays int
}

// NewCleanupJob creates a new cleanup job
func NewCleanupJob(service Service, retentionDays int) *CleanupJob {
	return &CleanupJob{
		service:       service,
		retentionDays: retentionDays,
	}
}

// Process executes the cleanup job
func (j *CleanupJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCleanupJobStarting, "retentionDays", j.retentionDays)

	start := time.Now()
	count, err := j.service.CleanupOldEvents(ctx, j.retentionDays)
	duration := time.Since(start)

	if err != nil {
		log.Error(LogMsgCleanupJobFailed, "error", err, "duration", duration)
		return err
	}

	log.Info(LogMsgCleanupJobCompleted, "deletedCount", count, "duration", duration)
	return nil
}
