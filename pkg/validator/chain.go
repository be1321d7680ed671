package validator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/intake/pkg/validator"

// Interceptor gets the first look at every answer.
// It reports false when it has no opinion and the chain should continue.
type Interceptor interface {
	Intercept(ctx context.Context, input string, q domain.QuestionSpec) (domain.Verdict, bool, error)
}

// Chain is a ports.AnswerValidator built from interceptors, per-question routes and a fallback.
type Chain struct {
	interceptors []Interceptor
	routes       map[string]ports.AnswerValidator
	fallback     ports.AnswerValidator
	logger       *slog.Logger
	tracer       trace.Tracer
}

// Option configures a Chain.
type Option func(*Chain)

// WithInterceptor appends an interceptor. Interceptors run in registration order.
func WithInterceptor(i Interceptor) Option {
	return func(c *Chain) {
		c.interceptors = append(c.interceptors, i)
	}
}

// WithRoute sends answers to questionID to v instead of the fallback.
func WithRoute(questionID string, v ports.AnswerValidator) Option {
	return func(c *Chain) {
		c.routes[questionID] = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Chain) {
		c.tracer = t
	}
}

// NewChain builds a chain over the fallback validator.
func NewChain(fallback ports.AnswerValidator, opts ...Option) *Chain {
	c := &Chain{
		routes:   make(map[string]ports.AnswerValidator),
		fallback: fallback,
		logger:   logging.NewNop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ErrNoValidator is returned when no validator can judge a question.
var ErrNoValidator = errors.New("no validator configured for question")

// Validate implements ports.AnswerValidator.
func (c *Chain) Validate(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error) {
	ctx, span := c.tracer.Start(ctx, "intake.validate", trace.WithAttributes(
		attribute.String("intake.question_id", q.ID),
	))
	defer span.End()

	verdict, stage, err := c.run(ctx, input, q, vctx)
	span.SetAttributes(
		attribute.String("intake.stage", stage),
		attribute.Bool("intake.accepted", verdict.Accepted),
		attribute.Bool("intake.interrupt", verdict.Interrupt),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("validation failed", "question", q.ID, "stage", stage, "err", err)
		return domain.Verdict{}, err
	}
	c.logger.Debug("validated", "question", q.ID, "stage", stage, "accepted", verdict.Accepted)
	return verdict, nil
}

func (c *Chain) run(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, string, error) {
	for _, i := range c.interceptors {
		verdict, handled, err := i.Intercept(ctx, input, q)
		if err != nil {
			return domain.Verdict{}, "interceptor", err
		}
		if handled {
			return verdict, "interceptor", nil
		}
	}

	if v, ok := c.routes[q.ID]; ok {
		verdict, err := v.Validate(ctx, input, q, vctx)
		return verdict, "route", err
	}

	if c.fallback == nil {
		return domain.Verdict{}, "fallback", ErrNoValidator
	}
	verdict, err := c.fallback.Validate(ctx, input, q, vctx)
	return verdict, "fallback", err
}
