/*
Package runner implements the conversation loop and I/O orchestration for intake.

It is the bridge between a session driver and a person at a terminal or a
script feeding answers. The runner creates or resumes a session, shows the
current prompt, then reads answers and shows every envelope until the survey
completes.

# Key Components

  - Runner: the loop over a ports.SessionDriver.
  - IOHandler: decouples how answers are read and replies are shown.
  - TextHandler: interactive terminal usage, with sanitized input.
  - JSONHandler: JSON-Lines usage for scripts and batch replays.

# Usage

	r := runner.NewRunner(
		runner.WithDriver(driver),
		runner.WithSessionID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
