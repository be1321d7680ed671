package domain

// Verdict is a validator's judgment of one raw answer.
type Verdict struct {
	Accepted bool `json:"accepted"`

	// NormalizedValue is the canonical form stored when accepted.
	// Nil means "store the raw input".
	NormalizedValue *string `json:"normalized_value"`

	// Feedback is shown to the user, mostly on rejection.
	Feedback string `json:"feedback"`

	// Interrupt marks an off-topic request that was answered instead of the question.
	// An interrupt verdict must not be accepted.
	Interrupt bool `json:"interrupt"`
}

// Accept builds an accepted verdict. An empty normalized value keeps the raw input.
func Accept(normalized string) Verdict {
	v := Verdict{Accepted: true}
	if normalized != "" {
		v.NormalizedValue = &normalized
	}
	return v
}

// Reject builds a rejected verdict with user-facing feedback.
func Reject(feedback string) Verdict {
	return Verdict{Feedback: feedback}
}

// InterruptVerdict builds an interrupt verdict carrying the out-of-band reply.
func InterruptVerdict(feedback string) Verdict {
	return Verdict{Feedback: feedback, Interrupt: true}
}

// Value returns the value to store for an accepted verdict.
func (v Verdict) Value(raw string) string {
	if v.NormalizedValue != nil {
		return *v.NormalizedValue
	}
	return raw
}
