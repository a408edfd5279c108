// internal/workers/insights/rank-nearby-places/handler.go
package ranknearbyplaces

import (
	"context"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"listing-search-workers/internal/common/camunda"
	"listing-search-workers/internal/common/errors"
	"listing-search-workers/internal/common/logger"
	"listing-search-workers/internal/common/validation"
	"listing-search-workers/internal/models"
	"listing-search-workers/internal/proximity"
)

const TaskType = "rank-nearby-places"

var schema = validation.MustCompile(inputSchema)

// Ranker ranks places of one category around an origin.
type Ranker interface {
	Rank(ctx context.Context, origin models.Coordinate, category proximity.Category, radiusMeters int) ([]models.NearbyPlace, error)
}

type Handler struct {
	config     *Config
	ranker     Ranker
	recorder   camunda.JobRecorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, ranker Ranker, recorder camunda.JobRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ranker:     ranker,
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

	// Resolve category and radius
	category, err := proximity.ParseCategory(input.Category)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	radius := input.RadiusMeters
	if radius <= 0 {
		radius = category.DefaultRadius()
	}

	// Fetch, apply the rating floor and keep the top scorers
	places, err := h.ranker.Rank(ctx, input.Origin, category, radius)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("places", err)
		}
		return nil, errors.NewPlacesProviderFailedError(string(category), err)
	}

	h.logger.Info("ranked nearby places", map[string]interface{}{
		"category": string(category),
		"radius":   radius,
		"count":    len(places),
	})

	return &Output{
		Category:     string(category),
		RadiusMeters: radius,
		Places:       places,
		Count:        len(places),
	}, nil
}
