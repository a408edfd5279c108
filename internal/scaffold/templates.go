// internal/scaffold/templates.go
package scaffold

var templates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ duration .Timeout }},
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- range .Fields }}
	{{ .Name }} {{ .Type }} {{ backtick }}json:"{{ .JSONTag }}"{{ backtick }}
{{- end }}
}

type Output struct {
}

var inputSchema = {{ backtick }}{{ .InputSchema }}{{ backtick }}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"{{ .Module }}/internal/common/camunda"
	"{{ .Module }}/internal/common/errors"
	"{{ .Module }}/internal/common/logger"
	"{{ .Module }}/internal/common/validation"
)

const TaskType = "{{ .TaskType }}"

var schema = validation.MustCompile(inputSchema)
{{ if .Description }}
// Handler serves {{ .DisplayName }}: {{ .Description }}
{{- end }}
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
	// TODO: implement {{ .TaskType }}
	return &Output{}, nil
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"{{ .Module }}/internal/common/errors"
	"{{ .Module }}/internal/common/logger"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))
}

func TestExecute_NilInput(t *testing.T) {
	h := createTestHandler(t)
	_, err := h.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.AsStandardError(err).Code)
}

func TestExecute_Empty(t *testing.T) {
	h := createTestHandler(t)
	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
`
