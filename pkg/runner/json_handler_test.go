package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Reply(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)

	skipped := "email"
	require.NoError(t, handler.Reply(context.Background(), domain.Envelope{Message: "Let's move on.", Skipped: &skipped}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, false, decoded["done"])
	assert.Equal(t, "Let's move on.", decoded["message"])
	assert.Nil(t, decoded["data"])
	assert.Equal(t, "email", decoded["skipped"])
}

func TestJSONHandler_Prompt(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader(""), buf)

	require.NoError(t, handler.Prompt(context.Background(), "s1", "What is your zip code?"))

	var line PromptLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, PromptLine{SessionID: "s1", Prompt: "What is your zip code?"}, line)
}

func TestJSONHandler_Input(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader("\"Ada \\\"Ace\\\" Lovelace\"\nraw text\nlast"), io.Discard)
	ctx := context.Background()

	got, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, `Ada "Ace" Lovelace`, got)

	got, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "raw text", got)

	got, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "last", got, "a final line without newline is still read")

	_, err = handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_InputTooLarge(t *testing.T) {
	handler := NewJSONHandler(strings.NewReader("0123456789\n"), io.Discard)
	handler.MaxInput = 4
	_, err := handler.Input(context.Background())
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
