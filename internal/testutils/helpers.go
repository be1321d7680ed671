// Package testutils provides deterministic collaborators for tests.
package testutils

import (
	"context"
	"sync"

	"github.com/aretw0/intake/pkg/domain"
)

// Step is one scripted validator outcome.
type Step struct {
	Verdict domain.Verdict
	Err     error
	Panic   any
}

// Accept scripts an accepted verdict. An empty value keeps the raw input.
func Accept(value string) Step {
	v := domain.Accept(value)
	v.Feedback = "Got it!"
	return Step{Verdict: v}
}

// Reject scripts a rejected verdict.
func Reject(feedback string) Step {
	return Step{Verdict: domain.Reject(feedback)}
}

// Interrupt scripts an interrupt verdict.
func Interrupt(feedback string) Step {
	return Step{Verdict: domain.InterruptVerdict(feedback)}
}

// Fail scripts a validator error.
func Fail(err error) Step {
	return Step{Err: err}
}

// Call records one validator invocation.
type Call struct {
	Input      string
	QuestionID string
	Context    map[string]any
}

// ScriptedValidator replays scripted steps in order and accepts the raw input once
// the script runs out.
type ScriptedValidator struct {
	mu    sync.Mutex
	steps []Step
	calls []Call
}

// Script returns a validator that replays steps.
func Script(steps ...Step) *ScriptedValidator {
	return &ScriptedValidator{steps: steps}
}

// Push appends more steps to the script.
func (v *ScriptedValidator) Push(steps ...Step) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.steps = append(v.steps, steps...)
}

// Validate implements ports.AnswerValidator.
func (v *ScriptedValidator) Validate(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error) {
	v.mu.Lock()
	v.calls = append(v.calls, Call{Input: input, QuestionID: q.ID, Context: vctx})
	if len(v.steps) == 0 {
		v.mu.Unlock()
		return domain.Accept(""), nil
	}
	step := v.steps[0]
	v.steps = v.steps[1:]
	v.mu.Unlock()

	if step.Panic != nil {
		panic(step.Panic)
	}
	return step.Verdict, step.Err
}

// Calls returns the recorded invocations.
func (v *ScriptedValidator) Calls() []Call {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Call(nil), v.calls...)
}

// LastCall returns the most recent invocation.
func (v *ScriptedValidator) LastCall() (Call, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.calls) == 0 {
		return Call{}, false
	}
	return v.calls[len(v.calls)-1], true
}
