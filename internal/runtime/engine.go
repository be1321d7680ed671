// Package runtime implements the question-flow state machine.
package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// DefaultMaxAttempts is the number of rejected answers after which a question is skipped.
const DefaultMaxAttempts = 3

// Messages holds the fixed texts produced by the engine itself.
type Messages struct {
	Completion string // appended when the last question is answered
	Exhausted  string // returned when no question is left to answer
	Farewell   string // returned when the user confirms they want to stop
	SkipNotice string // prefixed to the next prompt after a forced skip
	TryAgain   string // returned when the validator fails
}

// DefaultMessages returns the built-in engine texts.
func DefaultMessages() Messages {
	return Messages{
		Completion: "Thanks! Survey complete!",
		Exhausted:  "Survey complete!",
		Farewell:   "No problem! Feel free to come back anytime.",
		SkipNotice: "Let's move on.",
		TryAgain:   "I'm having trouble right now. Could you try again?",
	}
}

// DefaultStopWords confirm a stop request after an interrupt.
var DefaultStopWords = []string{"stop", "no", "n", "nope", "nah", "quit", "exit"}

// Engine is the core state machine runner.
// It holds no per-session data and may be shared by any number of sessions.
type Engine struct {
	catalog          *catalog.Catalog
	validator        ports.AnswerValidator
	logger           *slog.Logger
	hooks            domain.LifecycleHooks
	maxAttempts      int
	validatorTimeout time.Duration
	messages         Messages
	stopWords        map[string]struct{}
	now              func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxAttempts sets the rejection ceiling per question instance.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithValidatorTimeout bounds every validator call. Zero disables the bound.
func WithValidatorTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.validatorTimeout = d
	}
}

// WithMessages overrides the engine texts. Empty fields keep their defaults.
func WithMessages(m Messages) Option {
	return func(e *Engine) {
		if m.Completion != "" {
			e.messages.Completion = m.Completion
		}
		if m.Exhausted != "" {
			e.messages.Exhausted = m.Exhausted
		}
		if m.Farewell != "" {
			e.messages.Farewell = m.Farewell
		}
		if m.SkipNotice != "" {
			e.messages.SkipNotice = m.SkipNotice
		}
		if m.TryAgain != "" {
			e.messages.TryAgain = m.TryAgain
		}
	}
}

// WithStopWords replaces the words that confirm a stop request.
func WithStopWords(words ...string) Option {
	return func(e *Engine) {
		e.stopWords = wordSet(words)
	}
}

// WithClock overrides the time source used for state timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine over a catalog and an answer validator.
func NewEngine(cat *catalog.Catalog, validator ports.AnswerValidator, opts ...Option) *Engine {
	e := &Engine{
		catalog:     cat,
		validator:   validator,
		logger:      logging.NewNop(),
		maxAttempts: DefaultMaxAttempts,
		messages:    DefaultMessages(),
		stopWords:   wordSet(DefaultStopWords),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine walks.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// MaxAttempts returns the configured rejection ceiling.
func (e *Engine) MaxAttempts() int {
	return e.maxAttempts
}
