// Package llm validates free-text answers with a chat model that replies with a
// JSON verdict.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MalformedFeedback is shown when the model reply cannot be decoded.
const MalformedFeedback = "Sorry, I had trouble processing that. Could you try again?"

const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = time.Second
	DefaultModel          = "gpt-4"
)

// ErrAuthentication marks a rejected API key; it is never retried.
var ErrAuthentication = errors.New("chat model authentication failed")

// ChatModel is the part of an eino chat model the validator uses.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Validator is a ports.AnswerValidator backed by a chat model.
type Validator struct {
	model           ChatModel
	timeout         time.Duration
	maxRetries      int
	initialInterval time.Duration
	logger          *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithMaxRetries sets how many calls are made before giving up.
func WithMaxRetries(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxRetries = n
		}
	}
}

// WithInitialBackoff sets the first retry delay; later delays grow exponentially.
func WithInitialBackoff(d time.Duration) Option {
	return func(v *Validator) {
		v.initialInterval = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a validator over any chat model.
func New(m ChatModel, opts ...Option) *Validator {
	v := &Validator{
		model:           m,
		timeout:         DefaultTimeout,
		maxRetries:      DefaultMaxRetries,
		initialInterval: DefaultInitialBackoff,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// RetryBudget is the longest Validate can take: every call timing out, with
// the doubling backoff between calls. A caller deadline shorter than this
// cuts the retries short.
func RetryBudget(timeout time.Duration, maxRetries int, initialBackoff time.Duration) time.Duration {
	var total time.Duration
	wait := initialBackoff
	for i := 0; i < maxRetries; i++ {
		total += timeout
		if i < maxRetries-1 {
			total += wait
			wait *= 2
		}
	}
	return total
}

// Budget is RetryBudget for this validator's settings.
func (v *Validator) Budget() time.Duration {
	return RetryBudget(v.timeout, v.maxRetries, v.initialInterval)
}

// Config selects an OpenAI compatible endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAI creates a validator backed by an OpenAI compatible chat model.
func NewOpenAI(ctx context.Context, cfg Config, opts ...Option) (*Validator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrAuthentication)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return New(cm, opts...), nil
}

// reply is the JSON verdict the model is asked to produce.
type reply struct {
	IsValid         bool   `json:"isValid"`
	ExtractedValue  any    `json:"extractedValue"`
	FeedbackMessage string `json:"feedbackMessage"`
	NextAction      string `json:"nextAction"`
}

// Validate implements ports.AnswerValidator.
// Authentication failures and exhausted retries are returned wrapped in
// domain.ErrTransientValidator; an undecodable reply is a rejection.
func (v *Validator) Validate(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error) {
	messages := []*schema.Message{
		schema.SystemMessage(BuildPrompt(q, vctx)),
		schema.UserMessage(input),
	}

	attempt := 0
	operation := func() (*schema.Message, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, v.timeout)
		defer cancel()

		msg, err := v.model.Generate(callCtx, messages, model.WithTemperature(0.2), model.WithMaxTokens(500))
		if err != nil {
			v.logger.Warn("chat model call failed", "question", q.ID, "attempt", attempt, "err", err)
			if isAuthError(err) {
				return nil, backoff.Permanent(fmt.Errorf("%w: %w", ErrAuthentication, err))
			}
			return nil, err
		}
		return msg, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = v.initialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0

	msg, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(v.maxRetries)),
	)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("%w: %w", domain.ErrTransientValidator, err)
	}

	return v.decode(q, msg.Content), nil
}

func (v *Validator) decode(q domain.QuestionSpec, content string) domain.Verdict {
	var r reply
	if err := sonic.UnmarshalString(stripFences(content), &r); err != nil {
		v.logger.Warn("malformed chat model reply", "question", q.ID, "err", err, "raw", content)
		return domain.Reject(MalformedFeedback)
	}

	if !r.IsValid || r.NextAction != "accept" {
		feedback := r.FeedbackMessage
		if feedback == "" {
			feedback = q.RetryPrompt
		}
		return domain.Reject(feedback)
	}

	verdict := domain.Accept(valueString(r.ExtractedValue))
	verdict.Feedback = r.FeedbackMessage
	return verdict
}

// valueString renders the extracted value; the model sometimes returns numbers or booleans.
func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication") || strings.Contains(msg, "api key") || strings.Contains(msg, "401")
}
