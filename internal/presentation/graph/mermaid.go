package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	AnsweredQuestions []string
	CurrentQuestion   string
}

// OverlayFromState marks the questions answered by s and the one it waits on.
func OverlayFromState(c *catalog.Catalog, s *domain.State) *GraphOverlay {
	o := &GraphOverlay{}
	for _, q := range c.Questions() {
		if _, ok := s.Answers[q.ID]; ok {
			o.AnsweredQuestions = append(o.AnsweredQuestions, q.ID)
			continue
		}
		if _, ok := s.CurrentVehicle[q.ID]; ok {
			o.AnsweredQuestions = append(o.AnsweredQuestions, q.ID)
		}
	}
	if q, ok := c.At(s.Cursor); ok && !s.Done() {
		o.CurrentQuestion = q.ID
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the catalog walk.
// It applies semantic styling:
// - Sub-flow toggles: {Rhombus}
// - Conditional questions: [/Parallelogram/]
// - Default: [Rectangle]
// Vehicle-scoped questions are grouped in a subgraph, and the jumps taken by
// the sub-flow toggles are dotted.
func GenerateMermaid(c *catalog.Catalog, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	questions := c.Questions()
	sb.WriteString("    start((\"start\"))\n")
	sb.WriteString("    done((\"done\"))\n")

	inVehicle := false
	for _, q := range questions {
		if q.VehicleScoped && !inVehicle {
			sb.WriteString("    subgraph vehicle [\"vehicle\"]\n")
			inVehicle = true
		}
		if !q.VehicleScoped && inVehicle {
			sb.WriteString("    end\n")
			inVehicle = false
		}

		opener, closer := "[", "]"
		switch {
		case q.Role != domain.RoleNormal:
			opener, closer = "{", "}"
		case q.Visibility.Kind == domain.VisibilityFieldEquals:
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(q.ID), opener, q.ID, closer))
	}
	if inVehicle {
		sb.WriteString("    end\n")
	}

	if len(questions) == 0 {
		sb.WriteString("    start --> done\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("    start --> %s\n", sanitizeMermaidID(questions[0].ID)))
	restart, exit := nodeAt(c, c.RestartTarget()), nodeAt(c, c.ExitTarget())

	for i, q := range questions {
		from := sanitizeMermaidID(q.ID)
		next := "done"
		if i+1 < len(questions) {
			next = sanitizeMermaidID(questions[i+1].ID)
		}
		label := ""
		if i+1 < len(questions) {
			label = condition(questions[i+1].Visibility)
		}

		switch q.Role {
		case domain.RoleVehicleFlowStart:
			sb.WriteString(fmt.Sprintf("    %s -- \"yes\" --> %s\n", from, next))
			sb.WriteString(fmt.Sprintf("    %s -. \"no\" .-> %s\n", from, exit))
		case domain.RoleVehicleFlowEnd:
			sb.WriteString(fmt.Sprintf("    %s -. \"yes\" .-> %s\n", from, restart))
			sb.WriteString(fmt.Sprintf("    %s -- \"no\" --> %s\n", from, exit))
		default:
			if label != "" {
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", from, label, next))
			} else {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, next))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.AnsweredQuestions {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentQuestion != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentQuestion)))
		}
	}

	return sb.String()
}

func nodeAt(c *catalog.Catalog, i int) string {
	if q, ok := c.At(i); ok {
		return sanitizeMermaidID(q.ID)
	}
	return "done"
}

// condition labels the edge into a conditional question.
func condition(v domain.Visibility) string {
	if v.Kind != domain.VisibilityFieldEquals {
		return ""
	}
	label := fmt.Sprintf("%s = %s", v.Field, strings.Join(v.Expected, " | "))
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	// "end" is reserved by Mermaid.
	if s == "end" {
		s = "end_"
	}
	return s
}
