package telemetry

import (
	"fmt"
	"log/slog"
	"os"
)

// SlogAPI writes reports through the default slog logger.
type SlogAPI struct{}

// attrs turns positional params into slog key value pairs, an error param is
// keyed as "err" so it stands out in the output.
func attrs(head []any, params []any) []any {
	out := head
	for i, p := range params {
		key := fmt.Sprintf("p%d", i)
		if _, ok := p.(error); ok {
			key = "err"
		}
		out = append(out, key, p)
	}
	return out
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("broken", attrs([]any{"id", id}, params)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("warning", attrs([]any{"id", id}, params)...)
}

func (SlogAPI) ReportDebug(msg string, params ...any) {
	slog.Debug(msg, attrs(nil, params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Info("count", "id", id, "n", count)
}

// InitSlog installs a text handler on stderr as the default logger, stdout is
// left to command output.
func InitSlog(debug bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}
