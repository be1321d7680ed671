package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/intake/internal/compiler"
	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/bytedance/sonic"
)

// ErrNoTranscripts is returned by transcript commands when no SQLite path is configured.
var ErrNoTranscripts = errors.New("transcripts are disabled: set transcript.sqlite_path")

// ListSessions prints stored session IDs with their status.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	ids, err := app.Driver.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		status, err := app.Driver.Status(ctx, id)
		if err != nil {
			app.Logger.Warn("skipping unreadable session", "session_id", id, "err", err)
			continue
		}
		rows = append(rows, []string{id, string(status)})
	}
	_, err = fmt.Fprint(w, tui.Table([]string{"Session", "Status"}, rows))
	return err
}

// InspectSession prints the raw state and the compiled document of a session as
// JSON, with personal answers masked.
func InspectSession(ctx context.Context, app *App, w io.Writer, sessionID string) error {
	state, err := app.Driver.State(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	state = app.Masker.State(state)
	return writeJSON(w, map[string]any{"state": state, "data": compiler.Compile(state)})
}

// RemoveSessions deletes every given session, reporting each one.
func RemoveSessions(ctx context.Context, app *App, w io.Writer, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := app.Driver.DeleteSession(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("remove %q: %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}

// ShowTranscript prints the recorded conversation of a session, or the list of
// recorded sessions when sessionID is empty.
func ShowTranscript(ctx context.Context, app *App, w io.Writer, sessionID string) error {
	if app.Transcripts == nil {
		return ErrNoTranscripts
	}
	if sessionID == "" {
		records, err := app.Transcripts.ListSessions(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, tui.SessionsTable(records))
		return err
	}

	details, err := app.Transcripts.SessionDetails(ctx, sessionID)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, m := range details.Messages {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.Role, m.Content)
	}
	if details.FinalData != nil {
		summary, err := tui.SummaryTable(*details.FinalData)
		if err != nil {
			return err
		}
		b.WriteString("\n" + summary)
	}
	_, err = io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
