package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventQuestionAsked EventType = "question_asked"
	EventVerdict       EventType = "verdict"
	EventSkip          EventType = "skip"
	EventInterrupt     EventType = "interrupt"
	EventComplete      EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// QuestionEvent is emitted when a question becomes current or is skipped.
type QuestionEvent struct {
	EventBase
	QuestionID string `json:"question_id"`
	Cursor     int    `json:"cursor"`
}

// VerdictEvent is emitted after the validator judged an answer.
type VerdictEvent struct {
	EventBase
	QuestionID string        `json:"question_id"`
	Outcome    string        `json:"outcome"` // accepted, rejected, interrupt, error
	Duration   time.Duration `json:"duration"`
}

// CompleteEvent is emitted once per session, when it reaches StatusComplete.
type CompleteEvent struct {
	EventBase
	Reason CompletionReason `json:"reason"`
}

// Verdict outcomes reported in VerdictEvent.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeInterrupt = "interrupt"
	OutcomeError     = "error"
)

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnQuestionAsked func(context.Context, *QuestionEvent)
	OnVerdict       func(context.Context, *VerdictEvent)
	OnSkip          func(context.Context, *QuestionEvent)
	OnInterrupt     func(context.Context, *QuestionEvent)
	OnComplete      func(context.Context, *CompleteEvent)
}
