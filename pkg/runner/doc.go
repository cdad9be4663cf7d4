/*
Package runner implements the local execution loop of tapevm.

It bridges the Engine and a user: program output is streamed to an IOHandler as it
grows, every suspension reads one value from the handler, and the token of the
latest invocation can be kept in a wallet so a later process resumes the session.

# Key Components

  - Runner: the loop (execute, print, read, resume).
  - IOHandler: decouples how values are read and output written.
  - TextHandler: interactive terminal usage.
  - JSONHandler: JSON-Lines for scripted hosts.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(tapevm.New()),
		runner.WithWallet(file.New("")),
		runner.WithSessionID("demo"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if _, err := r.Run(ctx, program); err != nil {
		log.Fatal(err)
	}
*/
package runner
