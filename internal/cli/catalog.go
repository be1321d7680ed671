package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/intake/internal/presentation/graph"
	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadCatalog reads path, or returns the default catalog when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	return loadCatalog(path)
}

// ValidateCatalog loads path and reports how many questions it holds.
func ValidateCatalog(w io.Writer, path string) error {
	c, err := LoadCatalog(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Catalog is valid: %d questions.\n", c.Len())
	return err
}

// ShowCatalog prints the catalog as YAML, or as a table when asTable is set.
func ShowCatalog(w io.Writer, c *catalog.Catalog, asTable bool) error {
	if asTable {
		rows := make([][]string, 0, c.Len())
		for i, q := range c.Questions() {
			rows = append(rows, []string{fmt.Sprint(i), q.ID, string(q.Role), visibility(q.Visibility), fmt.Sprint(q.VehicleScoped)})
		}
		_, err := fmt.Fprint(w, tui.Table([]string{"#", "Question", "Role", "Visible", "Vehicle"}, rows))
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}

// GraphCatalog prints the flow as a Mermaid diagram. With a sessionID the
// diagram highlights what that session answered and where it stands.
func GraphCatalog(ctx context.Context, w io.Writer, c *catalog.Catalog, app *App, sessionID string) error {
	var overlay *graph.GraphOverlay
	if sessionID != "" {
		state, err := app.Driver.State(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
		overlay = graph.OverlayFromState(c, state)
	}
	_, err := fmt.Fprint(w, graph.GenerateMermaid(c, overlay))
	return err
}

func visibility(v domain.Visibility) string {
	switch v.Kind {
	case domain.VisibilityFieldEquals:
		return v.Field + " = " + strings.Join(v.Expected, ", ")
	case domain.VisibilityVehicleFlowActive:
		return "vehicle flow"
	default:
		return "always"
	}
}
