package domain

// StateDiff represents the changes between two session states.
// It is serialized to JSON for partial updates on streaming clients.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Cursor *int    `json:"cursor,omitempty"`
	Status *Status `json:"status,omitempty"`

	// Answers contains only changed, added or deleted top-level answers.
	// Deleted keys are present with a nil value.
	Answers map[string]*string `json:"answers,omitempty"`

	// CurrentVehicle follows the same rules as Answers for the vehicle being built.
	CurrentVehicle map[string]*string `json:"current_vehicle,omitempty"`

	// VehiclesAppended holds vehicles finalized since the old state.
	VehiclesAppended []map[string]string `json:"vehicles_appended,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.Cursor != newState.Cursor {
		cursor := newState.Cursor
		diff.Cursor = &cursor
	}
	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}

	var oldAnswers, oldVehicle map[string]string
	oldVehicles := 0
	if oldState != nil {
		oldAnswers = oldState.Answers
		oldVehicle = oldState.CurrentVehicle
		oldVehicles = len(oldState.CompletedVehicles)
	}
	diff.Answers = diffStrings(oldAnswers, newState.Answers)
	diff.CurrentVehicle = diffStrings(oldVehicle, newState.CurrentVehicle)

	// Vehicles are append-only.
	if len(newState.CompletedVehicles) > oldVehicles {
		diff.VehiclesAppended = newState.CompletedVehicles[oldVehicles:]
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffStrings(old, new map[string]string) map[string]*string {
	delta := make(map[string]*string)
	for k, v := range new {
		if prev, ok := old[k]; !ok || prev != v {
			val := v
			delta[k] = &val
		}
	}
	for k := range old {
		if _, ok := new[k]; !ok {
			delta[k] = nil
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Cursor == nil &&
		d.Status == nil &&
		len(d.Answers) == 0 &&
		len(d.CurrentVehicle) == 0 &&
		len(d.VehiclesAppended) == 0
}
