// internal/logging/level_filter.go
package logging

import (
	"context"
	"log/slog"
)

// LevelFilter drops records below a minimum level before they reach the
// wrapped handler. The minimum is a slog.Leveler so a *slog.LevelVar can
// change it at runtime.
type LevelFilter struct {
	handler slog.Handler
	min     slog.Leveler
}

// NewLevelFilter wraps handler with a minimum level.
func NewLevelFilter(handler slog.Handler, min slog.Leveler) *LevelFilter {
	return &LevelFilter{handler: handler, min: min}
}

// Enabled requires level to reach the minimum and the wrapped handler to
// accept it.
func (h *LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min.Level() && h.handler.Enabled(ctx, level)
}

// Handle forwards r when its level reaches the minimum.
func (h *LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.min.Level() {
		return nil
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs wraps the inner handler's WithAttrs, keeping the minimum.
func (h *LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelFilter{handler: h.handler.WithAttrs(attrs), min: h.min}
}

// WithGroup wraps the inner handler's WithGroup, keeping the minimum.
func (h *LevelFilter) WithGroup(name string) slog.Handler {
	return &LevelFilter{handler: h.handler.WithGroup(name), min: h.min}
}
