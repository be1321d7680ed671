package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// TranscriptSink is the external persistence for conversations.
// Callers (runner, HTTP, MCP) invoke it once per turn; the flow engine never does.
type TranscriptSink interface {
	CreateSession(ctx context.Context, sessionID string) error
	AppendMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string) error
	// UpdateSnapshot stores the partial document collected so far.
	UpdateSnapshot(ctx context.Context, sessionID string, doc domain.Document) error
	// Complete marks the session finished and stores the final document.
	Complete(ctx context.Context, sessionID string, doc domain.Document) error
}

// TranscriptReader reads back what a TranscriptSink recorded.
type TranscriptReader interface {
	ListSessions(ctx context.Context) ([]domain.SessionRecord, error)
	Transcript(ctx context.Context, sessionID string) ([]domain.Message, error)
	SessionDetails(ctx context.Context, sessionID string) (*domain.SessionDetails, error)
}
