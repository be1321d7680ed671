package runtime

import (
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// Jump names the only cursor moves the state machine performs.
type Jump int

const (
	// JumpAdvance moves past the current question.
	JumpAdvance Jump = iota
	// JumpRestartSubflow moves back to the first vehicle question.
	JumpRestartSubflow
	// JumpExitSubflow moves to the first question after the vehicle sub-flow.
	JumpExitSubflow
)

func (j Jump) String() string {
	switch j {
	case JumpAdvance:
		return "advance"
	case JumpRestartSubflow:
		return "restart_subflow"
	case JumpExitSubflow:
		return "exit_subflow"
	default:
		return "unknown"
	}
}

// target resolves a jump from the given cursor to a new cursor.
func (e *Engine) target(j Jump, cursor int) int {
	switch j {
	case JumpRestartSubflow:
		if t := e.catalog.RestartTarget(); t >= 0 {
			return t
		}
	case JumpExitSubflow:
		if t := e.catalog.ExitTarget(); t >= 0 {
			return t
		}
	}
	return cursor + 1
}

// jump moves the cursor and forgets the attempts spent at the position being left,
// so a position reached again through the sub-flow restart starts a fresh budget.
func (e *Engine) jump(s *domain.State, j Jump) {
	from := s.Cursor
	if q, ok := e.catalog.At(from); ok {
		delete(s.Attempts, domain.AttemptKey(q.ID, from))
	}
	s.Cursor = e.target(j, from)
	e.logger.Debug("cursor jump", "session_id", s.SessionID, "jump", j.String(), "from", from, "to", s.Cursor)
}

// applyAccepted stores an accepted value and moves the cursor according to the question role.
func (e *Engine) applyAccepted(s *domain.State, q domain.QuestionSpec, value string) {
	switch {
	case q.Role == domain.RoleVehicleFlowStart:
		if isAffirmative(value) {
			s.VehicleFlowActive = true
			s.CurrentVehicle = make(map[string]string)
			e.jump(s, JumpAdvance)
			return
		}
		e.jump(s, JumpExitSubflow)

	case q.Role == domain.RoleVehicleFlowEnd:
		finished := make(map[string]string, len(s.CurrentVehicle))
		for k, v := range s.CurrentVehicle {
			finished[k] = v
		}
		s.CompletedVehicles = append(s.CompletedVehicles, finished)
		s.CurrentVehicle = make(map[string]string)
		if isAffirmative(value) {
			e.jump(s, JumpRestartSubflow)
			return
		}
		s.VehicleFlowActive = false
		e.jump(s, JumpAdvance)

	case q.VehicleScoped:
		s.CurrentVehicle[q.ID] = value
		e.jump(s, JumpAdvance)

	default:
		s.Answers[q.ID] = value
		e.jump(s, JumpAdvance)
	}
}

func isAffirmative(value string) bool {
	clean := strings.ToLower(strings.TrimSpace(value))
	return clean == "y" || clean == "yes" || clean == "true" || clean == "1"
}

// isStop reports whether input contains one of the stop words.
func (e *Engine) isStop(input string) bool {
	words := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
	for _, w := range words {
		if _, ok := e.stopWords[w]; ok {
			return true
		}
	}
	return false
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
