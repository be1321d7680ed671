package runtime

import (
	"context"
	"time"

	"github.com/aretw0/intake/pkg/domain"
)

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: sessionID}
}

func (e *Engine) emitQuestionAsked(ctx context.Context, s *domain.State, q domain.QuestionSpec) {
	if e.hooks.OnQuestionAsked == nil {
		return
	}
	e.hooks.OnQuestionAsked(ctx, &domain.QuestionEvent{
		EventBase:  e.base(domain.EventQuestionAsked, s.SessionID),
		QuestionID: q.ID,
		Cursor:     s.Cursor,
	})
}

func (e *Engine) emitVerdict(ctx context.Context, sessionID, questionID, outcome string, d time.Duration) {
	if e.hooks.OnVerdict == nil {
		return
	}
	e.hooks.OnVerdict(ctx, &domain.VerdictEvent{
		EventBase:  e.base(domain.EventVerdict, sessionID),
		QuestionID: questionID,
		Outcome:    outcome,
		Duration:   d,
	})
}

func (e *Engine) emitSkip(ctx context.Context, sessionID string, q domain.QuestionSpec, cursor int) {
	if e.hooks.OnSkip == nil {
		return
	}
	e.hooks.OnSkip(ctx, &domain.QuestionEvent{
		EventBase:  e.base(domain.EventSkip, sessionID),
		QuestionID: q.ID,
		Cursor:     cursor,
	})
}

func (e *Engine) emitInterrupt(ctx context.Context, s *domain.State, q domain.QuestionSpec) {
	if e.hooks.OnInterrupt == nil {
		return
	}
	e.hooks.OnInterrupt(ctx, &domain.QuestionEvent{
		EventBase:  e.base(domain.EventInterrupt, s.SessionID),
		QuestionID: q.ID,
		Cursor:     s.Cursor,
	})
}

func (e *Engine) emitComplete(ctx context.Context, s *domain.State) {
	if e.hooks.OnComplete == nil {
		return
	}
	e.hooks.OnComplete(ctx, &domain.CompleteEvent{
		EventBase: e.base(domain.EventComplete, s.SessionID),
		Reason:    s.CompletionReason,
	})
}
