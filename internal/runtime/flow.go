package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/intake/internal/compiler"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// NextQuestion returns the first visible question at or after the cursor.
// Invisible questions are stepped over for good: the cursor is advanced past them
// and nothing is recorded for them. It reports false once the catalog is exhausted.
func (e *Engine) NextQuestion(s *domain.State) (domain.QuestionSpec, bool) {
	for s.Cursor < e.catalog.Len() {
		q, _ := e.catalog.At(s.Cursor)
		if catalog.IsVisible(q, s) {
			return q, true
		}
		e.logger.Debug("question not visible", "session_id", s.SessionID, "question", q.ID)
		s.Cursor++
	}
	return domain.QuestionSpec{}, false
}

// Start creates the state of a new session positioned at its first question.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, string) {
	s := domain.NewState(sessionID)
	s.CreatedAt = e.now()
	s.UpdatedAt = s.CreatedAt

	q, ok := e.NextQuestion(s)
	if !ok {
		e.complete(ctx, s, domain.CompletedExhausted)
		return s, e.messages.Exhausted
	}
	e.emitQuestionAsked(ctx, s, q)
	return s, q.PromptText
}

// Prompt returns the prompt of the current question without changing s.
func (e *Engine) Prompt(s *domain.State) (string, bool) {
	q, ok := e.Current(s)
	if !ok {
		return "", false
	}
	return q.PromptText, true
}

// Current returns the question awaiting an answer without moving s.
func (e *Engine) Current(s *domain.State) (domain.QuestionSpec, bool) {
	if s.Done() {
		return domain.QuestionSpec{}, false
	}
	return e.NextQuestion(s.Clone())
}

// ProcessResponse feeds one raw user answer through the state machine.
// It never fails: every outcome, validator failures included, is an Envelope.
// The returned state is a new value; current is left untouched.
func (e *Engine) ProcessResponse(ctx context.Context, current *domain.State, input string) (*domain.State, domain.Envelope) {
	s := current.Clone()
	env := e.process(ctx, s, input)
	s.UpdatedAt = e.now()
	return s, env
}

func (e *Engine) process(ctx context.Context, s *domain.State, input string) domain.Envelope {
	if s.Done() {
		return e.doneEnvelope(s, e.messages.Exhausted, nil)
	}

	// A stop was offered: this answer confirms or declines it.
	if s.PendingStopConfirmation {
		s.PendingStopConfirmation = false
		s.Status = domain.StatusActive
		if e.isStop(input) {
			e.logger.Debug("stop confirmed", "session_id", s.SessionID)
			e.complete(ctx, s, domain.CompletedStopped)
			return e.doneEnvelope(s, e.messages.Farewell, nil)
		}
		e.logger.Debug("stop declined, resuming", "session_id", s.SessionID)
	}

	// Nothing left to ask completes the survey.
	q, ok := e.NextQuestion(s)
	if !ok {
		e.complete(ctx, s, domain.CompletedExhausted)
		return e.doneEnvelope(s, e.messages.Exhausted, nil)
	}

	// Attempts count before validation so validator failures use one up.
	key := domain.AttemptKey(q.ID, s.Cursor)
	s.Attempts[key]++

	// A failing validator leaves the question open for another try.
	verdict, err := e.validate(ctx, s, q, input, e.validatorContext(s, q))
	if err != nil {
		e.logger.Warn("answer validator failed", "session_id", s.SessionID, "question", q.ID, "err", err)
		return domain.Envelope{Message: e.messages.TryAgain}
	}

	// Off-topic requests get the reply and an offer to stop.
	if verdict.Interrupt {
		s.RecentTurns = nil
		s.PendingStopConfirmation = true
		s.Status = domain.StatusAwaitingStopConfirmation
		e.logger.Debug("interrupt detected", "session_id", s.SessionID, "question", q.ID)
		e.emitInterrupt(ctx, s, q)
		return domain.Envelope{Message: verdict.Feedback}
	}

	// Accepted answers are stored and the cursor moves on.
	if verdict.Accepted {
		s.RecentTurns = nil
		e.applyAccepted(s, q, verdict.Value(input))
		return e.advance(ctx, s, verdict.Feedback, nil)
	}

	// Rejected answers are skipped once the attempt ceiling is reached.
	if attempts := s.Attempts[key]; attempts >= e.maxAttempts {
		s.RecentTurns = nil
		skippedAt := s.Cursor
		e.jump(s, JumpAdvance)
		e.logger.Debug("question skipped", "session_id", s.SessionID, "question", q.ID, "attempts", attempts)
		e.emitSkip(ctx, s.SessionID, q, skippedAt)
		skipped := q.ID
		return e.advance(ctx, s, e.messages.SkipNotice, &skipped)
	}

	feedback := verdict.Feedback
	if feedback == "" {
		feedback = q.RetryPrompt
	}
	if feedback == "" {
		feedback = q.PromptText
	}
	s.PushTurn(domain.Turn{
		QuestionID: q.ID,
		Question:   q.PromptText,
		Input:      input,
		Feedback:   feedback,
	})
	return domain.Envelope{Message: feedback}
}

// advance resolves the next question after the cursor moved.
func (e *Engine) advance(ctx context.Context, s *domain.State, lead string, skipped *string) domain.Envelope {
	next, ok := e.NextQuestion(s)
	if !ok {
		e.complete(ctx, s, domain.CompletedExhausted)
		return e.doneEnvelope(s, join(lead, e.messages.Completion), skipped)
	}
	e.emitQuestionAsked(ctx, s, next)
	return domain.Envelope{
		Message: join(lead, next.PromptText),
		Skipped: skipped,
	}
}

func (e *Engine) complete(ctx context.Context, s *domain.State, reason domain.CompletionReason) {
	s.Status = domain.StatusComplete
	s.CompletionReason = reason
	s.PendingStopConfirmation = false
	e.logger.Debug("session complete", "session_id", s.SessionID, "reason", reason)
	e.emitComplete(ctx, s)
}

func (e *Engine) doneEnvelope(s *domain.State, message string, skipped *string) domain.Envelope {
	doc := compiler.Compile(s)
	return domain.Envelope{
		Done:    true,
		Message: message,
		Data:    &doc,
		Skipped: skipped,
	}
}

// validatorContext builds the answers visible to the validator for q.
func (e *Engine) validatorContext(s *domain.State, q domain.QuestionSpec) map[string]any {
	vctx := make(map[string]any, len(s.Answers)+len(s.CurrentVehicle)+1)
	for k, v := range s.Answers {
		vctx[k] = v
	}
	if q.VehicleScoped {
		for k, v := range s.CurrentVehicle {
			vctx[k] = v
		}
	}
	if len(s.RecentTurns) > 0 {
		vctx[ports.ContextKeyRecentConversation] = append([]domain.Turn(nil), s.RecentTurns...)
	}
	return vctx
}

// validate calls the validator under the configured timeout.
// A panicking validator is reported as a transient failure.
func (e *Engine) validate(ctx context.Context, s *domain.State, q domain.QuestionSpec, input string, vctx map[string]any) (verdict domain.Verdict, err error) {
	if e.validatorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.validatorTimeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: validator panic: %v", domain.ErrTransientValidator, r)
		}
		outcome := domain.OutcomeRejected
		switch {
		case err != nil:
			outcome = domain.OutcomeError
		case verdict.Interrupt:
			outcome = domain.OutcomeInterrupt
		case verdict.Accepted:
			outcome = domain.OutcomeAccepted
		}
		e.logger.Debug("verdict", "session_id", s.SessionID, "question", q.ID, "outcome", outcome)
		e.emitVerdict(ctx, s.SessionID, q.ID, outcome, time.Since(start))
	}()

	return e.validator.Validate(ctx, input, q, vctx)
}

func join(lead, text string) string {
	if lead == "" {
		return text
	}
	return lead + "\n\n" + text
}
