package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/intake/pkg/domain"
)

// LoggingHooks logs every lifecycle event at Info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestionAsked: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.InfoContext(ctx, "question_asked", "session_id", e.SessionID, "question", e.QuestionID, "cursor", e.Cursor)
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			logger.InfoContext(ctx, "verdict", "session_id", e.SessionID, "question", e.QuestionID, "outcome", e.Outcome, "duration", e.Duration)
		},
		OnSkip: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.InfoContext(ctx, "skip", "session_id", e.SessionID, "question", e.QuestionID)
		},
		OnInterrupt: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.InfoContext(ctx, "interrupt", "session_id", e.SessionID, "question", e.QuestionID)
		},
		OnComplete: func(ctx context.Context, e *domain.CompleteEvent) {
			logger.InfoContext(ctx, "complete", "session_id", e.SessionID, "reason", e.Reason)
		},
	}
}
