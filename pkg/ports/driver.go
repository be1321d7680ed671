package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// SessionDriver is the boundary consumed by chat front-ends, CLIs and test harnesses.
type SessionDriver interface {
	CreateSession(ctx context.Context) (string, error)
	// CurrentPrompt returns the prompt of the current question, or false when none is left.
	CurrentPrompt(ctx context.Context, sessionID string) (string, bool, error)
	SubmitAnswer(ctx context.Context, sessionID, input string) (domain.Envelope, error)
	// ExportCompiledData may be called before completion to get a partial snapshot.
	ExportCompiledData(ctx context.Context, sessionID string) (domain.Document, error)
	Status(ctx context.Context, sessionID string) (domain.Status, error)
	State(ctx context.Context, sessionID string) (*domain.State, error)
	ListSessions(ctx context.Context) ([]string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
