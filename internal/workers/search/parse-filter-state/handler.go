// internal/workers/search/parse-filter-state/handler.go
package parsefilterstate

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"listing-search-workers/internal/common/camunda"
	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/validation"
	"listing-search-workers/internal/search/filter"
)

const TaskType = "parse-filter-state"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config     *Config
	recorder   camunda.JobRecorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, recorder camunda.JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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
		h.fail(ctx, client, job, tracked, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, tracked, err)
		return
	}

	if err := camunda.Complete(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"error": err.Error()})
		tracked.Failed(ctx, string(errors.ErrCodeInternal))
		return
	}
	tracked.Completed(ctx)
}

// Execute normalizes the input into a filter state.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	var (
		state   filter.State
		dropped []string
	)
	if input.Query != "" {
		var err error
		state, dropped, err = filter.ParseQuery(input.Query)
		if err != nil {
			if stderrors.Is(err, filter.ErrValidation) {
				return nil, errors.NewValidationError(err.Error())
			}
			return nil, errors.NewInternalError(err)
		}
	} else {
		state, dropped = filter.FromMap(input.RawFilters)
	}
	if dropped == nil {
		dropped = []string{}
	}

	if len(dropped) > 0 {
		h.logger.Warn("dropped invalid filter fields", map[string]interface{}{
			"fields": dropped,
		})
	}

	return &Output{
		FilterState:   state,
		Query:         filter.Encode(state),
		DroppedFields: dropped,
		IsEmpty:       state.IsEmpty(),
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, tracked *camunda.Job, err error) {
	tracked.Failed(ctx, string(errors.AsStandardError(err).Code))
	h.errHandler.HandleJobError(ctx, client, job, err)
}
