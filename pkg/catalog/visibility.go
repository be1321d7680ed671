package catalog

import (
	"slices"

	"github.com/aretw0/intake/pkg/domain"
)

// IsVisible reports whether q should be asked given the already collected state.
// A field that has not been answered yet is never visible.
func IsVisible(q domain.QuestionSpec, s *domain.State) bool {
	v := q.Visibility
	switch v.Kind {
	case domain.VisibilityAlways, "":
		return true
	case domain.VisibilityVehicleFlowActive:
		return s.VehicleFlowActive
	case domain.VisibilityFieldEquals:
		source := s.Answers
		if v.Scope == domain.ScopeCurrentVehicle {
			source = s.CurrentVehicle
		}
		actual, ok := source[v.Field]
		if !ok {
			return false
		}
		return slices.Contains(v.Expected, actual)
	default:
		return false
	}
}
