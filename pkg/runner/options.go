package runner

import (
	"log/slog"

	"github.com/aretw0/intake/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithDriver configures the session driver the Runner talks to.
func WithDriver(driver ports.SessionDriver) Option {
	return func(r *Runner) {
		r.Driver = driver
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithHeadless disables signal handling, for scripted runs.
func WithHeadless(headless bool) Option {
	return func(r *Runner) {
		r.Headless = headless
	}
}

// WithSessionID resumes the given session, or starts it under that ID when it
// does not exist yet. Without it a fresh session is created.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithRenderer configures the content renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}
