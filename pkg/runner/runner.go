package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// ExitCommands leave the loop without touching the session, which stays resumable.
// Plain "quit" is not among them: it is an answer the flow engine understands.
var ExitCommands = []string{"/exit", "/quit"}

// ErrNoDriver is returned by Run when no session driver is configured.
var ErrNoDriver = errors.New("runner requires a session driver")

// ErrCannotStart is returned when a named session does not exist and the
// driver cannot create sessions under a chosen ID.
var ErrCannotStart = errors.New("driver cannot start a session under a chosen id")

// SessionStarter is implemented by drivers that can start a session under a
// caller chosen ID.
type SessionStarter interface {
	StartSession(ctx context.Context, sessionID string) (string, error)
}

// Runner drives one conversation through an IOHandler until the survey is
// complete, the input ends or the person leaves.
type Runner struct {
	Driver    ports.SessionDriver
	Handler   IOHandler
	Logger    *slog.Logger
	SessionID string
	Headless  bool
	Renderer  ContentRenderer
}

// NewRunner creates a Runner. Without a handler it talks text over Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil, WithTextHandlerRenderer(r.Renderer))
	}
	return r
}

// Run executes the conversation loop. It returns nil when the survey completes,
// the input ends or the person leaves; the session stays persisted in every case.
func (r *Runner) Run(ctx context.Context) error {
	if r.Driver == nil {
		return ErrNoDriver
	}

	sessionID, err := r.resolveSession(ctx)
	if err != nil {
		return err
	}
	r.SessionID = sessionID
	logger := r.Logger.With("session_id", sessionID)

	prompt, ok, err := r.Driver.CurrentPrompt(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}
	if !ok {
		return r.replayDone(ctx, sessionID)
	}
	if err := r.Handler.Prompt(ctx, sessionID, prompt); err != nil {
		return err
	}

	var signals *SignalManager
	if !r.Headless {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
	}

	for {
		inputCtx := ctx
		if signals != nil {
			inputCtx = signals.Context()
		}

		text, err := r.Handler.Input(inputCtx)
		if err != nil {
			if signals != nil {
				signals.CheckRace()
				if signals.Interrupted() {
					logger.Debug("runner interrupted")
					return r.leave(ctx, sessionID)
				}
			}
			if errors.Is(err, io.EOF) {
				logger.Debug("input ended")
				return nil
			}
			if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				if err := r.Handler.SystemOutput(ctx, err.Error()); err != nil {
					return err
				}
				continue
			}
			return err
		}

		if isExit(text) {
			return r.leave(ctx, sessionID)
		}

		env, err := r.Driver.SubmitAnswer(ctx, sessionID, text)
		if err != nil {
			return fmt.Errorf("failed to submit answer: %w", err)
		}
		if err := r.Handler.Reply(ctx, env); err != nil {
			return err
		}
		if env.Done {
			logger.Debug("survey complete")
			return nil
		}
	}
}

func (r *Runner) resolveSession(ctx context.Context) (string, error) {
	if r.SessionID == "" {
		id, err := r.Driver.CreateSession(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
		return id, nil
	}

	_, err := r.Driver.Status(ctx, r.SessionID)
	if err == nil {
		r.Logger.Debug("resuming session", "session_id", r.SessionID)
		return r.SessionID, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return "", err
	}

	starter, ok := r.Driver.(SessionStarter)
	if !ok {
		return "", ErrCannotStart
	}
	if _, err := starter.StartSession(ctx, r.SessionID); err != nil {
		return "", err
	}
	return r.SessionID, nil
}

// replayDone shows the completion envelope of a session that already finished.
func (r *Runner) replayDone(ctx context.Context, sessionID string) error {
	doc, err := r.Driver.ExportCompiledData(ctx, sessionID)
	if err != nil {
		return err
	}
	return r.Handler.Reply(ctx, domain.Envelope{Done: true, Message: "Survey complete!", Data: &doc})
}

func (r *Runner) leave(ctx context.Context, sessionID string) error {
	return r.Handler.SystemOutput(ctx, fmt.Sprintf("Session %s saved. Resume it with --session %s", sessionID, sessionID))
}

func isExit(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, cmd := range ExitCommands {
		if text == cmd {
			return true
		}
	}
	return false
}

// Replay feeds one answer per line of in to a session and writes every prompt
// and envelope to out as JSON lines.
func Replay(ctx context.Context, driver ports.SessionDriver, in io.Reader, out io.Writer, opts ...Option) error {
	opts = append([]Option{
		WithDriver(driver),
		WithInputHandler(NewJSONHandler(in, out)),
		WithHeadless(true),
	}, opts...)
	return NewRunner(opts...).Run(ctx)
}
