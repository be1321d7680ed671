package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/intake/internal/compiler"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/runtime"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/google/uuid"
)

// ErrNoValidator is returned by New when no answer validator is given.
var ErrNoValidator = errors.New("an answer validator is required")

// Driver is the high-level entry point of the library.
// It owns the flow engine and persists one state per conversation, so a single
// Driver can serve many sessions concurrently.
type Driver struct {
	engine   *runtime.Engine
	sessions *session.Manager
	catalog  *catalog.Catalog
	logger   *slog.Logger
	newID    func() string

	store       ports.StateStore
	locker      ports.DistributedLocker
	hooks       []domain.LifecycleHooks
	runtimeOpts []runtime.Option
}

var _ ports.SessionDriver = (*Driver)(nil)

// Option defines a functional option for configuring the Driver.
type Option func(*Driver)

// WithCatalog replaces the default insurance catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(d *Driver) {
		d.catalog = c
	}
}

// WithStore persists sessions in s instead of memory.
func WithStore(s ports.StateStore) Option {
	return func(d *Driver) {
		d.store = s
	}
}

// WithLocker enables distributed locking of sessions across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(d *Driver) {
		d.locker = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. It may be given several times.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Driver) {
		d.hooks = append(d.hooks, hooks)
	}
}

// WithMaxAttempts sets how many rejected answers force a skip.
func WithMaxAttempts(n int) Option {
	return func(d *Driver) {
		d.runtimeOpts = append(d.runtimeOpts, runtime.WithMaxAttempts(n))
	}
}

// WithValidatorTimeout bounds every validator call.
func WithValidatorTimeout(t time.Duration) Option {
	return func(d *Driver) {
		d.runtimeOpts = append(d.runtimeOpts, runtime.WithValidatorTimeout(t))
	}
}

// WithStopWords replaces the words that confirm a stop after an interrupt.
func WithStopWords(words ...string) Option {
	return func(d *Driver) {
		d.runtimeOpts = append(d.runtimeOpts, runtime.WithStopWords(words...))
	}
}

// WithIDGenerator replaces the UUID session ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(d *Driver) {
		d.newID = fn
	}
}

// New creates a Driver around the given answer validator.
func New(validator ports.AnswerValidator, opts ...Option) (*Driver, error) {
	if validator == nil {
		return nil, ErrNoValidator
	}

	d := &Driver{newID: uuid.NewString}
	for _, opt := range opts {
		opt(d)
	}

	if d.catalog == nil {
		d.catalog = catalog.Default()
	}
	if d.store == nil {
		d.store = memory.NewStore()
	}
	if d.logger == nil {
		d.logger = logging.NewNop()
	}

	var sessionOpts []session.Option
	sessionOpts = append(sessionOpts, session.WithLogger(d.logger))
	if d.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(d.locker))
	}
	d.sessions = session.NewManager(d.store, sessionOpts...)

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(d.logger),
		runtime.WithLifecycleHooks(mergeHooks(d.hooks)),
	}
	runtimeOpts = append(runtimeOpts, d.runtimeOpts...)
	d.engine = runtime.NewEngine(d.catalog, validator, runtimeOpts...)

	return d, nil
}

// Catalog returns the question catalog in use.
func (d *Driver) Catalog() *catalog.Catalog {
	return d.catalog
}

// MaxAttempts returns the configured attempt ceiling.
func (d *Driver) MaxAttempts() int {
	return d.engine.MaxAttempts()
}

// CreateSession starts a conversation under a fresh ID.
func (d *Driver) CreateSession(ctx context.Context) (string, error) {
	id := d.newID()
	if _, err := d.StartSession(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// StartSession starts a conversation under a caller chosen ID and returns its
// first prompt. It fails with session.ErrSessionExists if the ID is taken.
func (d *Driver) StartSession(ctx context.Context, sessionID string) (string, error) {
	var prompt string
	_, err := d.sessions.Create(ctx, sessionID, func() (*domain.State, error) {
		var s *domain.State
		s, prompt = d.engine.Start(ctx, sessionID)
		return s, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	d.logger.Debug("session created", "session_id", sessionID)
	return prompt, nil
}

// CurrentPrompt returns the prompt of the question awaiting an answer.
// It reports false once the session is complete.
func (d *Driver) CurrentPrompt(ctx context.Context, sessionID string) (string, bool, error) {
	s, err := d.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", false, err
	}
	prompt, ok := d.engine.Prompt(s)
	return prompt, ok, nil
}

// CurrentQuestion returns the question awaiting an answer.
// It reports false once the session is complete.
func (d *Driver) CurrentQuestion(ctx context.Context, sessionID string) (domain.QuestionSpec, bool, error) {
	s, err := d.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.QuestionSpec{}, false, err
	}
	q, ok := d.engine.Current(s)
	return q, ok, nil
}

// SubmitAnswer feeds one raw answer to the session.
// Errors only come from persistence; every flow outcome is an Envelope.
func (d *Driver) SubmitAnswer(ctx context.Context, sessionID, input string) (domain.Envelope, error) {
	var env domain.Envelope
	_, err := d.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		var next *domain.State
		next, env = d.engine.ProcessResponse(ctx, s, input)
		return next, nil
	})
	if err != nil {
		return domain.Envelope{}, err
	}
	return env, nil
}

// ExportCompiledData compiles what the session collected so far.
func (d *Driver) ExportCompiledData(ctx context.Context, sessionID string) (domain.Document, error) {
	s, err := d.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.Document{}, err
	}
	return compiler.Compile(s), nil
}

// Status reports where the session stands.
func (d *Driver) Status(ctx context.Context, sessionID string) (domain.Status, error) {
	s, err := d.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.Status, nil
}

// State returns a copy of the raw session state for inspection tools.
func (d *Driver) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return d.sessions.Load(ctx, sessionID)
}

// ListSessions returns the IDs of all stored sessions.
func (d *Driver) ListSessions(ctx context.Context) ([]string, error) {
	return d.sessions.List(ctx)
}

// DeleteSession forgets a session.
func (d *Driver) DeleteSession(ctx context.Context, sessionID string) error {
	return d.sessions.Delete(ctx, sessionID)
}
