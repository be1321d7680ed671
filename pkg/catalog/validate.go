package catalog

import (
	"fmt"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// ValidationError lists every structural problem found in a catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidCatalog
}

func (c *Catalog) validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.questions) == 0 {
		add("catalog is empty")
	}

	start, end := -1, -1
	for i, q := range c.questions {
		if q.ID == "" {
			add("question #%d has no id", i)
			continue
		}
		if _, dup := c.index[q.ID]; dup {
			add("duplicate question id '%s'", q.ID)
			continue
		}
		c.index[q.ID] = i

		if strings.TrimSpace(q.PromptText) == "" {
			add("question '%s' has an empty prompt", q.ID)
		}

		switch q.Role {
		case domain.RoleNormal:
		case domain.RoleVehicleFlowStart:
			if start >= 0 {
				add("question '%s' is a second vehicle_flow_start", q.ID)
			}
			start = i
		case domain.RoleVehicleFlowEnd:
			if end >= 0 {
				add("question '%s' is a second vehicle_flow_end", q.ID)
			}
			end = i
		default:
			add("question '%s' has unknown role '%s'", q.ID, q.Role)
		}

		switch q.Visibility.Kind {
		case domain.VisibilityAlways, domain.VisibilityVehicleFlowActive:
		case domain.VisibilityFieldEquals:
			problems = append(problems, c.checkFieldRule(q)...)
		default:
			add("question '%s' has unknown visibility '%s'", q.ID, q.Visibility.Kind)
		}
	}

	c.restartAt = c.IndexOf(c.restartMarker)
	c.exitAt = c.IndexOf(c.exitMarker)

	// Catalogs without a vehicle sub-flow need no markers.
	if start >= 0 || end >= 0 {
		switch {
		case start < 0:
			add("vehicle_flow_end without vehicle_flow_start")
		case end < 0:
			add("vehicle_flow_start without vehicle_flow_end")
		case end < start:
			add("vehicle_flow_end '%s' precedes vehicle_flow_start", c.questions[end].ID)
		}
		if c.restartAt < 0 {
			add("restart marker '%s' not found", c.restartMarker)
		} else if start >= 0 && end >= 0 && (c.restartAt <= start || c.restartAt > end) {
			add("restart marker '%s' must sit inside the vehicle sub-flow", c.restartMarker)
		}
		if c.exitAt < 0 {
			add("exit marker '%s' not found", c.exitMarker)
		} else if end >= 0 && c.exitAt <= end {
			add("exit marker '%s' must follow the vehicle sub-flow", c.exitMarker)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// checkFieldRule enforces that a field_equals rule only looks backwards.
func (c *Catalog) checkFieldRule(q domain.QuestionSpec) []string {
	v := q.Visibility
	var problems []string
	if v.Field == "" {
		return append(problems, fmt.Sprintf("question '%s' field_equals rule has no field", q.ID))
	}
	if len(v.Expected) == 0 {
		problems = append(problems, fmt.Sprintf("question '%s' field_equals rule has no expected value", q.ID))
	}

	ref, ok := c.index[v.Field]
	if !ok {
		return append(problems, fmt.Sprintf("question '%s' references '%s' which is not asked before it", q.ID, v.Field))
	}
	referenced := c.questions[ref]

	switch v.Scope {
	case domain.ScopeCurrentVehicle:
		if !referenced.VehicleScoped {
			problems = append(problems, fmt.Sprintf("question '%s' reads '%s' from current_vehicle but it is top-level", q.ID, v.Field))
		}
	case domain.ScopeTopLevel:
		if referenced.VehicleScoped {
			problems = append(problems, fmt.Sprintf("question '%s' reads '%s' from top_level but it is vehicle-scoped", q.ID, v.Field))
		}
	default:
		problems = append(problems, fmt.Sprintf("question '%s' has unknown scope '%s'", q.ID, v.Scope))
	}
	return problems
}
