package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Prompt(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	require.NoError(t, handler.Prompt(context.Background(), "s1", "What is your zip code?"))
	assert.Contains(t, out.String(), "Rendered: What is your zip code?")
}

func TestTextHandler_ReplySummary(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerSummary(func(doc domain.Document) (string, error) {
		return fmt.Sprintf("summary with %d vehicles\n", len(doc.Vehicles)), nil
	}))

	require.NoError(t, handler.Reply(context.Background(), domain.Envelope{Message: "Got it!"}))
	assert.NotContains(t, out.String(), "summary")

	doc := domain.Document{}
	require.NoError(t, handler.Reply(context.Background(), domain.Envelope{Done: true, Message: "Thanks!", Data: &doc}))
	assert.Contains(t, out.String(), "summary with 0 vehicles")
}

func TestTextHandler_Input(t *testing.T) {
	t.Run("Trims and sanitizes", func(t *testing.T) {
		out := &bytes.Buffer{}
		handler := NewTextHandler(strings.NewReader("  941\x0705  \n"), out)

		got, err := handler.Input(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "94105", got)
		assert.Contains(t, out.String(), "> ")
	})

	t.Run("Rejects oversized line and reads the next", func(t *testing.T) {
		out := &bytes.Buffer{}
		handler := NewTextHandler(strings.NewReader("0123456789\nok\n"), out, WithTextHandlerMaxInput(5))

		got, err := handler.Input(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Contains(t, out.String(), "Please try again")
	})

	t.Run("EOF", func(t *testing.T) {
		handler := NewTextHandler(strings.NewReader(""), &bytes.Buffer{})
		_, err := handler.Input(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("Cancellation", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		handler := NewTextHandler(pr, &bytes.Buffer{})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := handler.Input(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestTextHandler_SystemOutput(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	require.NoError(t, handler.SystemOutput(context.Background(), "saved"))
	assert.Equal(t, "\n[System] saved\n", out.String())
}
