// Package semantics generates descriptions for MDL models and their columns with an
// LLM: pick the requested models, render the prompt, generate, parse the reply.
package semantics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"semantics-workers/internal/common/logger"
	"semantics-workers/internal/llm"
)

const SpanName = "Semantics Description Generation"

// Pipeline is configured once and shared; Run keeps all state on the stack, so
// concurrent runs need no locking.
type Pipeline struct {
	promptBuilder *PromptBuilder
	generator     llm.Generator
	logger        logger.Logger
	tracer        trace.Tracer
}

type Option func(*Pipeline)

// WithTracer sets the tracer used for the per-run span. The default is a no-op.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPromptBuilder replaces the builder for UserPromptTemplate.
func WithPromptBuilder(b *PromptBuilder) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.promptBuilder = b
		}
	}
}

// New builds a pipeline around generator, which must already carry SystemPrompt.
func New(generator llm.Generator, opts ...Option) (*Pipeline, error) {
	if generator == nil {
		return nil, errors.New("semantics: generator is required")
	}

	p := &Pipeline{
		generator: generator,
		logger:    logger.NewNoOpLogger(),
		tracer:    noop.NewTracerProvider().Tracer("semantics"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.promptBuilder == nil {
		b, err := NewPromptBuilder(UserPromptTemplate)
		if err != nil {
			return nil, err
		}
		p.promptBuilder = b
	}
	return p, nil
}

// NewFromProvider binds SystemPrompt to a generator from provider.
func NewFromProvider(provider llm.Provider, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, errors.New("semantics: provider is required")
	}
	return New(provider.GetGenerator(SystemPrompt), opts...)
}

// Run executes one generation. Generator errors are returned wrapped; an unusable
// reply is not an error and produces an empty, degraded Result.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	gen, err := p.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	return gen.Result, nil
}

// Generate is Run that also reports whether the reply failed to parse.
func (p *Pipeline) Generate(ctx context.Context, in Input) (*Generation, error) {
	runID := in.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	log := p.logger.With(map[string]interface{}{"runId": runID})

	ctx, span := p.tracer.Start(ctx, SpanName, trace.WithAttributes(
		attribute.String("semantics.run_id", runID),
		attribute.StringSlice("semantics.selected_models", in.SelectedModels),
	))
	defer span.End()

	log.Info("Semantics Description Generation pipeline is running...", map[string]interface{}{
		"selectedModels": len(in.SelectedModels),
	})

	picked := PickModels(in.MDL, in.SelectedModels)
	span.SetAttributes(attribute.Int("semantics.picked_models", len(picked)))

	prompt, err := p.promptBuilder.Run(picked, in.UserPrompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt")
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	reply, err := p.generator.Run(ctx, prompt.Prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate")
		return nil, fmt.Errorf("generate: %w", err)
	}

	result, parsed := ParseReply(reply, log)
	span.SetAttributes(
		attribute.Int("semantics.described_models", len(result)),
		attribute.Bool("semantics.degraded", !parsed),
	)

	log.Info("Semantics Description Generation pipeline completed", map[string]interface{}{
		"describedModels": len(result),
		"degraded":        !parsed,
	})
	return &Generation{Result: result, ParseFailed: !parsed}, nil
}
