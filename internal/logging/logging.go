// Package logging constructs the process-wide structured logger. There
// is no package-level default beyond what slog itself provides;
// constructors take a *slog.Logger explicitly and pass it down, the
// same discipline the teacher's Lambda handlers use.
package logging

import (
	"log/slog"
	"os"
)

// New builds a JSON slog.Logger writing to stdout. debug lowers the
// level to Debug; otherwise Info.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
