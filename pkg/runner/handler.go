package runner

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// IOHandler defines the strategy for talking to the person taking the survey.
// This allows switching between Text (terminal) and JSON (scripted) modes.
type IOHandler interface {
	// Prompt presents the question that awaits an answer.
	Prompt(ctx context.Context, sessionID, text string) error

	// Reply presents the outcome of one submitted answer.
	Reply(ctx context.Context, env domain.Envelope) error

	// Input reads one answer.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (session saved, resume hints).
	// This is distinct from survey content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms survey text before it is written.
// This allows terminal rendering (markdown to ANSI) without coupling this package to it.
type ContentRenderer func(string) (string, error)

// SummaryRenderer formats the compiled document shown when a survey completes.
type SummaryRenderer func(domain.Document) (string, error)
