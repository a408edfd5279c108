// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"listing-search-workers/internal/common/config"
	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/metrics"
	"listing-search-workers/internal/common/validation"
)

// JobRecorder receives per-job outcome metrics.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

// Job tracks one job execution for metrics. Create it with Begin and end it
// with exactly one of Completed or Failed.
type Job struct {
	taskType string
	recorder JobRecorder
	start    time.Time
	once     sync.Once
}

func Begin(taskType string, recorder JobRecorder) *Job {
	metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &Job{taskType: taskType, recorder: recorder, start: time.Now()}
}

func (j *Job) Completed(ctx context.Context) {
	j.finish(ctx, "completed", func() {
		metrics.WorkerJobsCompleted.WithLabelValues(j.taskType).Inc()
	})
}

func (j *Job) Failed(ctx context.Context, code string) {
	j.finish(ctx, "failed", func() {
		metrics.WorkerJobsFailed.WithLabelValues(j.taskType, code).Inc()
	})
}

func (j *Job) finish(ctx context.Context, status string, count func()) {
	j.once.Do(func() {
		elapsed := time.Since(j.start)
		metrics.WorkerJobsActive.WithLabelValues(j.taskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(j.taskType).Observe(elapsed.Seconds())
		count()
		if j.recorder != nil {
			j.recorder.RecordJobProcessed(ctx, j.taskType, status)
			j.recorder.RecordJobDuration(ctx, j.taskType, elapsed, status)
		}
	})
}

// DecodeVariables validates the job variables against schema and decodes
// them into out. Failures are returned as INVALID_INPUT errors.
func DecodeVariables(job entities.Job, schema *validation.Schema, out interface{}) error {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if schema != nil {
		result, err := schema.Validate(raw)
		if err != nil {
			return errors.NewInvalidInputError(err.Error())
		}
		if !result.Valid {
			return errors.NewInvalidInputError(result.Summary()).WithMetadata("validationErrors", result.Errors)
		}
	}
	if err := json.Unmarshal([]byte(job.Variables), out); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// Complete sends the job completion with output as its variables.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// StartWorker opens a job worker for taskType when wcfg enables it. It
// returns nil for a disabled worker.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("Worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("Worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return jobWorker
}
