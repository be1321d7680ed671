package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestTable(t *testing.T) {
	out := Table([]string{"Field", "Value"}, [][]string{{"zip", "10001"}, {"name", "Jane Doe"}})

	assert.Contains(t, out, "|")
	assert.Contains(t, out, "10001")
	assert.Contains(t, out, "Jane Doe")
	assert.Less(t, strings.Index(out, "10001"), strings.Index(out, "Jane Doe"))
}

func TestSummaryTable(t *testing.T) {
	t.Run("Full document", func(t *testing.T) {
		doc := domain.Document{
			PersonalInfo: domain.PersonalInfo{ZipCode: ptr("10001"), FullName: ptr("Jane Doe"), Email: ptr("jane@example.com")},
			Vehicles: []domain.Vehicle{
				{"vehicle_identifier": "1HGCM82633A004352", "vehicle_use": "commuting"},
				{"vehicle_identifier": "2020 Toyota Camry", "vehicle_use": "pleasure"},
			},
			License: domain.License{Type: ptr("personal"), Status: ptr("valid")},
		}

		out, err := SummaryTable(doc)
		require.NoError(t, err)
		assert.Contains(t, out, "## Personal information")
		assert.Contains(t, out, "## Vehicles")
		assert.Contains(t, out, "## License")
		for _, want := range []string{"jane@example.com", "1HGCM82633A004352", "2020 Toyota Camry", "pleasure", "valid"} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("Missing values and no vehicles", func(t *testing.T) {
		out, err := SummaryTable(domain.Document{})
		require.NoError(t, err)
		assert.NotContains(t, out, "## Vehicles")
		assert.Contains(t, out, missing)
	})
}

func TestSessionsTable(t *testing.T) {
	done := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := SessionsTable([]domain.SessionRecord{
		{SessionID: "s-1", Status: "completed", StartedAt: done.Add(-time.Hour), CompletedAt: &done, FullName: ptr("Jane Doe")},
		{SessionID: "s-2", Status: "active", StartedAt: done},
	})

	assert.Contains(t, out, "s-1")
	assert.Contains(t, out, "s-2")
	assert.Contains(t, out, done.Format(time.RFC3339))
	assert.Contains(t, out, "Jane Doe")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "insurance survey 1.2.3")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("**Thanks!** Survey complete!")
	require.NoError(t, err)
	assert.Contains(t, out, "Survey complete!")
}
