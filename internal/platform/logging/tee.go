package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler writes each record to the console handler and to the rolling
// log file. A failing file write never costs the console line.
type teeHandler struct {
	console slog.Handler
	file    slog.Handler
}

func newTeeHandler(console, file slog.Handler) *teeHandler {
	return &teeHandler{console: console, file: file}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	var consoleErr, fileErr error

	if h.console.Enabled(ctx, r.Level) {
		consoleErr = h.console.Handle(ctx, r.Clone())
	}

	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r); err != nil {
			fileErr = &SinkError{Err: err}
		}
	}

	return errors.Join(consoleErr, fileErr)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newTeeHandler(h.console.WithAttrs(attrs), h.file.WithAttrs(attrs))
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return newTeeHandler(h.console.WithGroup(name), h.file.WithGroup(name))
}

// SinkError reports a record that reached the console but not the log file.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return "log file: " + e.Err.Error()
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
