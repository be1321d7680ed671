// Package transcript records conversations held through a session driver.
package transcript

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/intake/internal/compiler"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/persistence/middleware"
	"github.com/aretw0/intake/pkg/ports"
)

// ErrCannotStart is returned by StartSession when the decorated driver only
// creates sessions under generated IDs.
var ErrCannotStart = errors.New("driver cannot start a session under a chosen id")

// Recorder is a ports.SessionDriver that writes every turn to a TranscriptSink.
// Sink failures are logged and never fail the conversation.
type Recorder struct {
	ports.SessionDriver
	sink   ports.TranscriptSink
	logger *slog.Logger
	masker *middleware.Masker
}

type questioner interface {
	CurrentQuestion(ctx context.Context, sessionID string) (domain.QuestionSpec, bool, error)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMasker hides personal answers in the transcript. The decorated driver
// and its replies keep the real values.
func WithMasker(m *middleware.Masker) Option {
	return func(r *Recorder) {
		r.masker = m
	}
}

// NewRecorder decorates driver so that its conversations land in sink.
func NewRecorder(driver ports.SessionDriver, sink ports.TranscriptSink, opts ...Option) *Recorder {
	r := &Recorder{
		SessionDriver: driver,
		sink:          sink,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateSession creates the session and records its first prompt.
func (r *Recorder) CreateSession(ctx context.Context) (string, error) {
	id, err := r.SessionDriver.CreateSession(ctx)
	if err != nil {
		return "", err
	}
	r.Begin(ctx, id)
	return id, nil
}

// Begin registers an already created session and records its current prompt.
func (r *Recorder) Begin(ctx context.Context, sessionID string) {
	r.check(sessionID, "create session", r.sink.CreateSession(ctx, sessionID))
	prompt, ok, err := r.SessionDriver.CurrentPrompt(ctx, sessionID)
	if err != nil || !ok {
		return
	}
	r.check(sessionID, "append message", r.sink.AppendMessage(ctx, sessionID, domain.RoleAssistant, prompt))
}

// SubmitAnswer records the answer, the reply and the updated snapshot.
func (r *Recorder) SubmitAnswer(ctx context.Context, sessionID, input string) (domain.Envelope, error) {
	r.check(sessionID, "append message", r.sink.AppendMessage(ctx, sessionID, domain.RoleUser, r.answerText(ctx, sessionID, input)))

	env, err := r.SessionDriver.SubmitAnswer(ctx, sessionID, input)
	if err != nil {
		return env, err
	}

	r.check(sessionID, "append message", r.sink.AppendMessage(ctx, sessionID, domain.RoleAssistant, env.Message))
	if env.Done && env.Data != nil {
		doc := *env.Data
		if r.masker != nil {
			doc, err = r.snapshot(ctx, sessionID)
		}
		if err == nil {
			r.check(sessionID, "complete", r.sink.Complete(ctx, sessionID, doc))
		}
		return env, nil
	}

	if doc, err := r.snapshot(ctx, sessionID); err == nil {
		r.check(sessionID, "update snapshot", r.sink.UpdateSnapshot(ctx, sessionID, doc))
	}
	return env, nil
}

// answerText is input as it should appear in the transcript.
func (r *Recorder) answerText(ctx context.Context, sessionID, input string) string {
	if r.masker == nil {
		return input
	}
	q, ok := r.SessionDriver.(questioner)
	if !ok {
		return input
	}
	current, found, err := q.CurrentQuestion(ctx, sessionID)
	if err == nil && found && r.masker.Matches(current.ID) {
		return middleware.Mask
	}
	return input
}

// snapshot compiles the session, masked when a masker is set.
func (r *Recorder) snapshot(ctx context.Context, sessionID string) (domain.Document, error) {
	if r.masker == nil {
		return r.SessionDriver.ExportCompiledData(ctx, sessionID)
	}
	st, err := r.SessionDriver.State(ctx, sessionID)
	if err != nil {
		return domain.Document{}, err
	}
	return compiler.Compile(r.masker.State(st)), nil
}

func (r *Recorder) check(sessionID, op string, err error) {
	if err != nil {
		r.logger.Warn("transcript sink failed", "session_id", sessionID, "op", op, "err", err)
	}
}

// StartSession starts a session under a chosen ID when the decorated driver
// supports it, and records its first prompt.
func (r *Recorder) StartSession(ctx context.Context, sessionID string) (string, error) {
	starter, ok := r.SessionDriver.(interface {
		StartSession(ctx context.Context, sessionID string) (string, error)
	})
	if !ok {
		return "", ErrCannotStart
	}
	prompt, err := starter.StartSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	r.Begin(ctx, sessionID)
	return prompt, nil
}
