// internal/workers/search/manage-saved-filters/handler.go
package managesavedfilters

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"listing-search-workers/internal/common/camunda"
	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/validation"
	"listing-search-workers/internal/savedfilter"
	"listing-search-workers/internal/search/filter"
)

const TaskType = "manage-saved-filters"

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config     *Config
	store      savedfilter.Store
	recorder   camunda.JobRecorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, store savedfilter.Store, recorder camunda.JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
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

	// Delete is keyed by id; every other action is scoped to an owner
	if input.Action != ActionDelete && strings.TrimSpace(input.OwnerID) == "" {
		return nil, errors.NewInvalidInputError("ownerId is required")
	}

	out := &Output{Action: input.Action}
	switch input.Action {
	case ActionSave, ActionOverwrite:
		if input.FilterState == nil {
			return nil, errors.NewInvalidInputError("filterState is required")
		}
		var (
			saved *savedfilter.SavedFilter
			err   error
		)
		// Save refuses a taken name; Overwrite replaces it
		if input.Action == ActionSave {
			saved, err = h.store.Save(ctx, input.OwnerID, input.Name, *input.FilterState)
		} else {
			saved, err = h.store.Overwrite(ctx, input.OwnerID, input.Name, *input.FilterState)
		}
		if err != nil {
			return nil, h.mapError(string(input.Action), input, err)
		}
		out.SavedFilter = saved
		out.Query = filter.Encode(saved.State)

	case ActionGet:
		saved, err := h.store.Get(ctx, input.OwnerID, input.Name)
		if err != nil {
			return nil, h.mapError("get", input, err)
		}
		out.SavedFilter = saved
		out.Query = filter.Encode(saved.State)
		out.Exists = true

	case ActionList:
		list, err := h.store.List(ctx, input.OwnerID)
		if err != nil {
			return nil, h.mapError("list", input, err)
		}
		out.SavedFilters = list

	case ActionExists:
		exists, err := h.store.Exists(ctx, input.OwnerID, input.Name)
		if err != nil {
			return nil, h.mapError("exists", input, err)
		}
		out.Exists = exists

	case ActionDelete:
		if input.ID == "" {
			return nil, errors.NewInvalidInputError("id is required")
		}
		// Unknown ids succeed
		if err := h.store.Delete(ctx, input.ID); err != nil {
			return nil, h.mapError("delete", input, err)
		}
		out.Deleted = true

	default:
		return nil, errors.NewInvalidActionError(string(input.Action))
	}

	h.logger.Debug("saved filter action done", map[string]interface{}{
		"action":  string(input.Action),
		"ownerId": input.OwnerID,
	})
	return out, nil
}

func (h *Handler) mapError(operation string, input *Input, err error) error {
	switch {
	case stderrors.Is(err, savedfilter.ErrDuplicateName):
		return errors.NewDuplicateFilterNameError(input.OwnerID, input.Name)
	case stderrors.Is(err, savedfilter.ErrNotFound):
		return errors.NewSavedFilterNotFoundError(input.OwnerID, input.Name)
	case stderrors.Is(err, savedfilter.ErrInvalidName):
		return errors.NewInvalidInputError(err.Error())
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("saved filters", err)
	default:
		return errors.NewDatabaseError(fmt.Sprintf("saved filter %s", operation), err)
	}
}
