package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/bytedance/sonic"
)

// PromptLine is the JSON line emitted whenever a question awaits an answer.
type PromptLine struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

// SystemLine is the JSON line emitted for meta-messages.
type SystemLine struct {
	System string `json:"system"`
}

// JSONHandler implements IOHandler for JSON-Lines communication.
// Each answer is read from one line, either as a JSON string or as raw text,
// and every reply is written as the envelope object.
type JSONHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Encoder  sonic.Encoder
	MaxInput int
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: sonic.ConfigStd.NewEncoder(w),
	}
}

func (h *JSONHandler) Prompt(ctx context.Context, sessionID, text string) error {
	return h.Encoder.Encode(PromptLine{SessionID: sessionID, Prompt: text})
}

func (h *JSONHandler) Reply(ctx context.Context, env domain.Envelope) error {
	return h.Encoder.Encode(env)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(SystemLine{System: msg})
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	// Quoted lines carry answers with characters a raw line cannot hold.
	var val string
	if strings.HasPrefix(text, `"`) && sonic.UnmarshalString(text, &val) == nil {
		text = val
	}
	return SanitizeAnswer(text, h.MaxInput)
}
