// internal/workers/semantics/semantics-description/handler.go
package semanticsdescription

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"semantics-workers/internal/common/database"
	"semantics-workers/internal/common/errors"
	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/common/metrics"
	"semantics-workers/internal/common/observability"
	"semantics-workers/internal/common/validation"
	"semantics-workers/internal/llm"
	"semantics-workers/internal/pipeline/semantics"
)

const (
	TaskType = "semantics-description"
)

// Runner is the description pipeline as seen by the worker.
type Runner interface {
	Generate(ctx context.Context, in semantics.Input) (*semantics.Generation, error)
}

// MDLStore resolves an mdlKey to the raw manifest. database.RedisClient satisfies it.
type MDLStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type Handler struct {
	config       *Config
	pipeline     Runner
	store        MDLStore
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler wires the worker. store may be nil when no MDL store is configured, in
// which case jobs must carry the MDL inline.
func NewHandler(config *Config, pipeline Runner, store MDLStore, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		pipeline:     pipeline,
		store:        store,
		obs:          obs,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log).WithMaxRetries(config.MaxRetries),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.handle(ctx, job)

	// the job context may already be expired; commands and metrics get their own
	cmdCtx := context.Background()
	if err != nil {
		stdErr := errors.Normalize(err)
		h.recordFailure(cmdCtx, stdErr, time.Since(start))
		h.errorHandler.HandleJobError(cmdCtx, client, job, stdErr)
		return
	}

	h.recordSuccess(cmdCtx, output, time.Since(start))
	h.completeJob(cmdCtx, client, job, output)
}

func (h *Handler) handle(ctx context.Context, job entities.Job) (*Output, error) {
	raw, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	if err := validation.ValidateDocument(h.config.InputSchema, raw); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.Execute(ctx, &input)
}

// Execute resolves the MDL and runs the pipeline. Every error it returns is a
// *errors.StandardError.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	mdl, err := h.resolveMDL(ctx, input)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	gen, err := h.pipeline.Generate(ctx, semantics.Input{
		UserPrompt:     input.UserPrompt,
		SelectedModels: input.SelectedModels,
		MDL:            mdl,
		RunID:          runID,
	})
	if err != nil {
		return nil, classifyGenerationError(ctx, err)
	}

	return &Output{
		Semantics:  gen.Result,
		ModelCount: len(gen.Result),
		RunID:      runID,
		Degraded:   gen.ParseFailed,
	}, nil
}

func (h *Handler) resolveMDL(ctx context.Context, input *Input) (semantics.MDL, error) {
	inline := hasInlineMDL(input.MDL)
	switch {
	case inline && input.MDLKey != "":
		return semantics.MDL{}, errors.NewInvalidInputError("provide either mdl or mdlKey, not both")
	case inline:
		return decodeMDL(input.MDL)
	case input.MDLKey == "":
		return semantics.MDL{}, errors.NewInvalidInputError("one of mdl or mdlKey is required")
	case h.store == nil:
		return semantics.MDL{}, errors.NewInvalidInputError("mdlKey given but no MDL store is configured")
	}

	data, err := h.store.Get(ctx, input.MDLKey)
	if stderrors.Is(err, database.ErrKeyNotFound) {
		return semantics.MDL{}, errors.NewMDLNotFoundError(input.MDLKey)
	}
	if err != nil {
		return semantics.MDL{}, errors.NewMDLStoreUnavailableError(err)
	}
	h.logger.Debug("loaded MDL from store", map[string]interface{}{
		"mdlKey": input.MDLKey,
		"bytes":  len(data),
	})
	return decodeMDL(data)
}

func hasInlineMDL(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// decodeMDL validates the manifest shape before decoding it into the typed form.
func decodeMDL(data []byte) (semantics.MDL, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return semantics.MDL{}, errors.NewMDLValidationFailedError(fmt.Sprintf("MDL is not valid JSON: %v", err))
	}
	if err := validation.ValidateMDL(doc); err != nil {
		return semantics.MDL{}, errors.NewMDLValidationFailedError(err.Error())
	}

	var mdl semantics.MDL
	if err := json.Unmarshal(data, &mdl); err != nil {
		return semantics.MDL{}, errors.NewMDLValidationFailedError(err.Error())
	}
	return mdl, nil
}

func classifyGenerationError(ctx context.Context, err error) *errors.StandardError {
	switch {
	case stderrors.Is(err, llm.ErrLLMTimeout),
		stderrors.Is(err, context.DeadlineExceeded),
		ctx.Err() != nil:
		return errors.NewLLMTimeoutError(err)
	case stderrors.Is(err, llm.ErrLLMGenerationFailed):
		return errors.NewLLMGenerationFailedError(err)
	default:
		return errors.NewInternalError(err)
	}
}

func (h *Handler) recordSuccess(ctx context.Context, output *Output, elapsed time.Duration) {
	outcome := metrics.OutcomeCompleted
	if output.Degraded {
		outcome = metrics.OutcomeDegraded
		h.logger.Warn("reply could not be parsed, completing with empty semantics", map[string]interface{}{
			"runId": output.RunID,
		})
	}
	metrics.SemanticsRuns.WithLabelValues(outcome).Inc()
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())

	h.obs.RecordJobProcessed(ctx, TaskType, outcome)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, outcome)
	h.obs.RecordModelsDescribed(ctx, output.ModelCount)
}

func (h *Handler) recordFailure(ctx context.Context, stdErr *errors.StandardError, elapsed time.Duration) {
	metrics.SemanticsRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())

	h.obs.RecordJobProcessed(ctx, TaskType, metrics.OutcomeFailed)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, metrics.OutcomeFailed)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"runId":      output.RunID,
		"modelCount": output.ModelCount,
		"degraded":   output.Degraded,
	})
}
