package cli

import (
	"context"
	"io"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/runner"
)

// ChatOptions configure one interactive conversation.
type ChatOptions struct {
	SessionID string
	// JSON switches to one JSON object per line on both streams.
	JSON bool
	In   io.Reader
	Out  io.Writer
}

// RunChat holds one conversation over the given streams.
func RunChat(ctx context.Context, app *App, opts ChatOptions) error {
	if opts.JSON {
		return runner.Replay(ctx, app.Driver, opts.In, opts.Out,
			runner.WithSessionID(opts.SessionID),
			runner.WithLogger(app.Logger),
		)
	}

	tui.PrintBanner(opts.Out, intake.Version)
	render := tui.NewRenderer()
	handler := runner.NewTextHandler(opts.In, opts.Out,
		runner.WithTextHandlerRenderer(render),
		runner.WithTextHandlerSummary(renderedSummary(render)),
		runner.WithTextHandlerMaxInput(app.Config.Server.MaxInputSize),
	)

	r := runner.NewRunner(
		runner.WithDriver(app.Driver),
		runner.WithInputHandler(handler),
		runner.WithLogger(app.Logger),
		runner.WithSessionID(opts.SessionID),
	)
	return r.Run(ctx)
}

// renderedSummary lays the compiled document out as tables, then styles them.
func renderedSummary(render runner.ContentRenderer) runner.SummaryRenderer {
	return func(doc domain.Document) (string, error) {
		md, err := tui.SummaryTable(doc)
		if err != nil {
			return "", err
		}
		out, err := render(md)
		if err != nil {
			return md, nil
		}
		return out, nil
	}
}
