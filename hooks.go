package intake

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// mergeHooks fans every event out to all registered hooks, in order.
func mergeHooks(all []domain.LifecycleHooks) domain.LifecycleHooks {
	if len(all) == 1 {
		return all[0]
	}
	return domain.LifecycleHooks{
		OnQuestionAsked: func(ctx context.Context, e *domain.QuestionEvent) {
			for _, h := range all {
				if h.OnQuestionAsked != nil {
					h.OnQuestionAsked(ctx, e)
				}
			}
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			for _, h := range all {
				if h.OnVerdict != nil {
					h.OnVerdict(ctx, e)
				}
			}
		},
		OnSkip: func(ctx context.Context, e *domain.QuestionEvent) {
			for _, h := range all {
				if h.OnSkip != nil {
					h.OnSkip(ctx, e)
				}
			}
		},
		OnInterrupt: func(ctx context.Context, e *domain.QuestionEvent) {
			for _, h := range all {
				if h.OnInterrupt != nil {
					h.OnInterrupt(ctx, e)
				}
			}
		},
		OnComplete: func(ctx context.Context, e *domain.CompleteEvent) {
			for _, h := range all {
				if h.OnComplete != nil {
					h.OnComplete(ctx, e)
				}
			}
		},
	}
}
