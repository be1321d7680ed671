package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// ContextKeyRecentConversation holds the recent rejected turns in the validator context.
const ContextKeyRecentConversation = "recent_conversation"

// AnswerValidator decides whether a raw answer is acceptable for a question.
//
// vctx carries the answers collected so far (merged with the current vehicle for
// vehicle-scoped questions) and, when present, the recent rejected turns under
// ContextKeyRecentConversation.
//
// A non-nil error is a transient failure: the engine re-asks the same question.
// Implementations should wrap domain.ErrTransientValidator.
type AnswerValidator interface {
	Validate(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error)
}

// ValidatorFunc adapts an ordinary function to AnswerValidator.
type ValidatorFunc func(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error) {
	return f(ctx, input, q, vctx)
}
