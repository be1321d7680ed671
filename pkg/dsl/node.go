package dsl

import "github.com/aretw0/intake/pkg/domain"

// QuestionBuilder provides a fluent API for configuring a question.
type QuestionBuilder struct {
	question domain.QuestionSpec
	builder  *Builder
}

// Prompt sets the text shown when the question is asked.
func (q *QuestionBuilder) Prompt(text string) *QuestionBuilder {
	q.question.PromptText = text
	return q
}

// Format describes the expected answer to natural-language validators.
func (q *QuestionBuilder) Format(expected string) *QuestionBuilder {
	q.question.ExpectedFormat = expected
	return q
}

// Rules states the validation rules to natural-language validators.
func (q *QuestionBuilder) Rules(rules string) *QuestionBuilder {
	q.question.ValidationRules = rules
	return q
}

// Retry sets the fallback shown after a rejection without feedback.
func (q *QuestionBuilder) Retry(text string) *QuestionBuilder {
	q.question.RetryPrompt = text
	return q
}

// YesNo fills the hints of a yes/no question.
func (q *QuestionBuilder) YesNo() *QuestionBuilder {
	q.question.ExpectedFormat = "yes or no"
	q.question.ValidationRules = "Must be yes or no"
	q.question.RetryPrompt = "Please answer yes or no."
	return q
}

// Vehicle stores the answer on the vehicle being collected and only asks the
// question while a vehicle is being collected.
func (q *QuestionBuilder) Vehicle() *QuestionBuilder {
	q.question.VehicleScoped = true
	q.question.Visibility = domain.WhenVehicleFlowActive()
	return q
}

// StartsVehicleFlow marks the "add a vehicle?" question.
func (q *QuestionBuilder) StartsVehicleFlow() *QuestionBuilder {
	q.question.Role = domain.RoleVehicleFlowStart
	return q
}

// EndsVehicleFlow marks the "add another vehicle?" question.
func (q *QuestionBuilder) EndsVehicleFlow() *QuestionBuilder {
	q.Vehicle()
	q.question.Role = domain.RoleVehicleFlowEnd
	return q
}

// When asks the question only if field, read from scope, equals one of values.
func (q *QuestionBuilder) When(field string, scope domain.Scope, values ...string) *QuestionBuilder {
	q.question.Visibility = domain.WhenFieldEquals(field, scope, values...)
	return q
}

// Then adds the next question, for chaining a whole survey in one expression.
func (q *QuestionBuilder) Then(id string) *QuestionBuilder {
	return q.builder.Add(id)
}

// Build returns the underlying domain.QuestionSpec.
// This is primarily used by the Builder, but exposed for advanced usage.
func (q *QuestionBuilder) Build() domain.QuestionSpec {
	return q.question
}
