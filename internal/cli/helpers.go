package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/tapevm/internal/config"
	"github.com/aretw0/tapevm/internal/logging"
)

// NewLogger builds the application logger from cfg.Log.
// The returned closer releases the log file, if one was opened.
func NewLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	opts := logging.Options{Writer: stderr}
	closer := func() error { return nil }
	if cfg.File != "" {
		f, err := logging.OpenFile(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		opts.File = f
		closer = f.Close
	}

	return logging.New(level, opts), closer, nil
}

// ReadProgram returns the program text from the inline source, a file path,
// or stdin when path is "-". Exactly one of inline and path must be set.
func ReadProgram(inline, path string, stdin io.Reader) (string, error) {
	switch {
	case inline != "" && path != "":
		return "", errors.New("give either a program file or --eval, not both")
	case inline != "":
		return inline, nil
	case path == "":
		return "", errors.New("no program: pass a file, - for stdin, or --eval")
	case path == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read program from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read program: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
