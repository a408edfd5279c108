// internal/workers/insights/neighborhood-insights/handler.go
package neighborhoodinsights

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"listing-search-workers/internal/common/camunda"
	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/validation"
	"listing-search-workers/internal/insights"
	"listing-search-workers/internal/proximity"
)

const TaskType = "neighborhood-insights"

var schema = validation.MustCompile(inputSchema)

type Looker interface {
	Lookup(ctx context.Context, address string, refresh bool) (*insights.Entry, bool, error)
}

type Handler struct {
	config     *Config
	service    Looker
	recorder   camunda.JobRecorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service Looker, recorder camunda.JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		recorder:   recorder,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	tracked := camunda.Begin(TaskType, h.recorder)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, schema, &input); err != nil {
		tracked.Failed(ctx, string(errors.AsStandardError(err).Code))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		tracked.Failed(ctx, string(errors.AsStandardError(err).Code))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.Complete(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
		tracked.Failed(ctx, string(errors.ErrCodeInternal))
		return
	}
	tracked.Completed(ctx)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	// Cached entries are served until they expire or a refresh is requested
	entry, cached, err := h.service.Lookup(ctx, input.Address, input.Refresh)
	if err != nil {
		switch {
		case stderrors.Is(err, insights.ErrEmptyAddress):
			return nil, errors.NewInvalidInputError(err.Error())
		case stderrors.Is(err, proximity.ErrGeocode):
			return nil, errors.NewGeocodeFailedError(input.Address, err)
		case stderrors.Is(err, context.DeadlineExceeded):
			return nil, errors.NewTimeoutError("insights", err)
		default:
			return nil, errors.NewInternalError(err)
		}
	}

	// A failed category still completes the job; the process reads Degraded
	return &Output{
		Insights: entry,
		Cached:   cached,
		Degraded: len(entry.FailedCategories) > 0,
	}, nil
}
