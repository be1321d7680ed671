package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

const missing = "-"

// Table renders rows as a markdown table.
func Table(header []string, rows [][]string) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header(toAny(header)...)
	for _, row := range rows {
		_ = table.Append(toAny(row)...)
	}
	_ = table.Render()
	return buf.String()
}

// SummaryTable renders a compiled document as markdown sections, one table each.
func SummaryTable(doc domain.Document) (string, error) {
	sections := []string{
		"## Personal information\n" + Table([]string{"Field", "Value"}, [][]string{
			{"Zip code", deref(doc.PersonalInfo.ZipCode)},
			{"Full name", deref(doc.PersonalInfo.FullName)},
			{"Email", deref(doc.PersonalInfo.Email)},
		}),
	}

	if len(doc.Vehicles) > 0 {
		var rows [][]string
		for i, v := range doc.Vehicles {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				rows = append(rows, []string{fmt.Sprint(i + 1), k, v[k]})
			}
		}
		sections = append(sections, "## Vehicles\n"+Table([]string{"#", "Field", "Value"}, rows))
	}

	sections = append(sections, "## License\n"+Table([]string{"Field", "Value"}, [][]string{
		{"Type", deref(doc.License.Type)},
		{"Status", deref(doc.License.Status)},
	}))
	return strings.Join(sections, "\n"), nil
}

// SessionsTable renders recorded conversations, newest first as given.
func SessionsTable(records []domain.SessionRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		completed := missing
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			r.SessionID,
			r.Status,
			r.StartedAt.Format(time.RFC3339),
			completed,
			deref(r.FullName),
		})
	}
	return Table([]string{"Session", "Status", "Started", "Completed", "Name"}, rows)
}

func deref(p *string) string {
	if p == nil || *p == "" {
		return missing
	}
	return *p
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
