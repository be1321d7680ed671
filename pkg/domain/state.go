package domain

import (
	"fmt"
	"time"
)

// Status defines the current mode of a conversation.
type Status string

const (
	StatusActive                   Status = "active"                     // Normal operation
	StatusAwaitingStopConfirmation Status = "awaiting_stop_confirmation" // Interrupt asked "continue or stop?"
	StatusComplete                 Status = "complete"                   // Sink state reached
)

// CompletionReason explains why a session reached StatusComplete.
type CompletionReason string

const (
	CompletedExhausted CompletionReason = "exhausted" // no visible question left
	CompletedStopped   CompletionReason = "stopped"   // user confirmed stop
)

// MaxRecentTurns bounds the rejected-turn memory forwarded to validators.
const MaxRecentTurns = 3

// Turn is one rejected exchange kept as conversational context.
type Turn struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Input      string `json:"input"`
	Feedback   string `json:"feedback"`
}

// State represents the mutable snapshot of one conversation.
type State struct {
	SessionID string `json:"session_id"`

	// Cursor is the catalog index of the current question. It never moves backwards
	// except for the vehicle sub-flow restart jump.
	Cursor int `json:"cursor"`

	// Answers holds top-level normalized answers keyed by question ID.
	Answers map[string]string `json:"answers"`

	// CurrentVehicle accumulates vehicle-scoped answers for the vehicle being built.
	CurrentVehicle map[string]string `json:"current_vehicle"`

	// CompletedVehicles are finalized vehicles in the order they were collected.
	CompletedVehicles []map[string]string `json:"completed_vehicles"`

	VehicleFlowActive bool `json:"vehicle_flow_active"`

	// Attempts counts rejections per question position, see AttemptKey.
	Attempts map[string]int `json:"attempts"`

	PendingStopConfirmation bool `json:"pending_stop_confirmation"`

	RecentTurns []Turn `json:"recent_turns,omitempty"`

	Status           Status           `json:"status"`
	CompletionReason CompletionReason `json:"completion_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries an opaque payload written by encrypting store decorators.
	// It is empty on states handled by the engine.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates a clean state positioned at the first catalog entry.
func NewState(sessionID string) *State {
	now := time.Now()
	return &State{
		SessionID:         sessionID,
		Answers:           make(map[string]string),
		CurrentVehicle:    make(map[string]string),
		CompletedVehicles: []map[string]string{},
		Attempts:          make(map[string]int),
		Status:            StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// AttemptKey identifies a question at a given cursor position.
func AttemptKey(questionID string, cursor int) string {
	return fmt.Sprintf("%s@%d", questionID, cursor)
}

// Done reports whether the session reached its sink state.
func (s *State) Done() bool {
	return s.Status == StatusComplete
}

// PushTurn records a rejected turn, keeping only the most recent ones.
func (s *State) PushTurn(t Turn) {
	s.RecentTurns = append(s.RecentTurns, t)
	if over := len(s.RecentTurns) - MaxRecentTurns; over > 0 {
		s.RecentTurns = append([]Turn(nil), s.RecentTurns[over:]...)
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Answers = cloneStrings(s.Answers)
	c.CurrentVehicle = cloneStrings(s.CurrentVehicle)
	c.CompletedVehicles = make([]map[string]string, len(s.CompletedVehicles))
	for i, v := range s.CompletedVehicles {
		c.CompletedVehicles[i] = cloneStrings(v)
	}
	c.Attempts = make(map[string]int, len(s.Attempts))
	for k, v := range s.Attempts {
		c.Attempts[k] = v
	}
	if s.RecentTurns != nil {
		c.RecentTurns = append([]Turn(nil), s.RecentTurns...)
	}
	if s.Sealed != nil {
		c.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &c
}

func cloneStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
