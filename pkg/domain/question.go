package domain

// Role marks questions that toggle the vehicle sub-flow.
type Role string

const (
	RoleNormal           Role = "normal"
	RoleVehicleFlowStart Role = "vehicle_flow_start" // e.g. "add a vehicle?"
	RoleVehicleFlowEnd   Role = "vehicle_flow_end"   // e.g. "add another vehicle?"
)

// Scope selects where a visibility rule reads its field from.
type Scope string

const (
	ScopeTopLevel       Scope = "top_level"
	ScopeCurrentVehicle Scope = "current_vehicle"
)

// VisibilityKind enumerates the supported visibility rules.
type VisibilityKind string

const (
	VisibilityAlways            VisibilityKind = "always"
	VisibilityVehicleFlowActive VisibilityKind = "vehicle_flow_active"
	VisibilityFieldEquals       VisibilityKind = "field_equals"
)

// Visibility decides whether a question is asked, based on already collected state only.
type Visibility struct {
	Kind VisibilityKind `json:"kind" yaml:"kind"`

	// Field, Expected and Scope are only meaningful for VisibilityFieldEquals.
	// A single expected value means equality, several values mean set membership.
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Scope    Scope    `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Always returns a rule that is always satisfied.
func Always() Visibility {
	return Visibility{Kind: VisibilityAlways}
}

// WhenVehicleFlowActive returns a rule satisfied while a vehicle is being collected.
func WhenVehicleFlowActive() Visibility {
	return Visibility{Kind: VisibilityVehicleFlowActive}
}

// WhenFieldEquals returns a rule satisfied when field (read from scope) equals one of expected.
func WhenFieldEquals(field string, scope Scope, expected ...string) Visibility {
	return Visibility{
		Kind:     VisibilityFieldEquals,
		Field:    field,
		Expected: expected,
		Scope:    scope,
	}
}

// QuestionSpec is an immutable catalog entry.
type QuestionSpec struct {
	ID         string `json:"id" yaml:"id"`
	PromptText string `json:"prompt" yaml:"prompt"`

	// Hints forwarded to natural-language validators.
	ExpectedFormat  string `json:"expected_format,omitempty" yaml:"expected_format,omitempty"`
	ValidationRules string `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	RetryPrompt     string `json:"retry_prompt,omitempty" yaml:"retry_prompt,omitempty"`

	// VehicleScoped answers are stored on the vehicle being built, not on top-level answers.
	VehicleScoped bool       `json:"vehicle_scoped" yaml:"vehicle_scoped"`
	Role          Role       `json:"role" yaml:"role"`
	Visibility    Visibility `json:"visibility" yaml:"visibility"`
}
