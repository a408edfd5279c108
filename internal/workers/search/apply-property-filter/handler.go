// internal/workers/search/apply-property-filter/handler.go
package applypropertyfilter

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"listing-search-workers/internal/common/camunda"
	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/validation"
	"listing-search-workers/internal/search"
	"listing-search-workers/internal/search/filter"
)

const TaskType = "apply-property-filter"

var schema = validation.MustCompile(inputSchema)

// Applier runs a filter state against the listing source.
type Applier interface {
	Apply(ctx context.Context, state filter.State, p search.Pagination) (*search.FilterResult, error)
	NormalizePage(p search.Pagination) search.Page
}

type Handler struct {
	config     *Config
	applier    Applier
	recorder   camunda.JobRecorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, applier Applier, recorder camunda.JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		applier:    applier,
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

// Execute applies the filter state. Query failures are reported in the
// output, not as an error, so the process can render the empty result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	// A newer request exists; skip the query
	if input.LatestRequestSeq > 0 && input.RequestSeq < input.LatestRequestSeq {
		h.logger.Debug("discarding superseded request", map[string]interface{}{
			"requestSeq":       input.RequestSeq,
			"latestRequestSeq": input.LatestRequestSeq,
		})
		result := search.EmptyResult(input.FilterState, h.applier.NormalizePage(input.Pagination))
		result.RequestSeq = input.RequestSeq
		return &Output{Result: result, Stale: true}, nil
	}

	result, err := h.applier.Apply(ctx, input.FilterState, input.Pagination)
	if result != nil {
		result.RequestSeq = input.RequestSeq
	}
	if err == nil {
		return &Output{Result: result}, nil
	}

	// Only query failures are folded into the output
	code := errors.ErrCodeQueryFailed
	if stderrors.Is(err, search.ErrQueryTimeout) {
		code = errors.ErrCodeQueryTimeout
	} else if !stderrors.Is(err, search.ErrQueryFailed) {
		return nil, errors.NewInternalError(err)
	}

	h.logger.Warn("filter query failed, returning empty result", map[string]interface{}{
		"errorCode": string(code),
		"error":     err.Error(),
	})
	return &Output{
		Result:    result,
		Error:     err.Error(),
		ErrorCode: string(code),
	}, nil
}
