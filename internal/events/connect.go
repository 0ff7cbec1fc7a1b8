package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/config"
)

// natsConnectFunc allows test injection
var natsConnectFunc = nats.Connect

// Connect dials the configured NATS server and returns a publisher with a
// close function. A disabled configuration returns a nil publisher and a
// no-op close.
func Connect(ctx context.Context, cfg config.EventsConfig, logger *slog.Logger) (*Publisher, func(), error) {
	noop := func() {}
	if !cfg.Enabled {
		return nil, noop, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := natsConnectFunc(cfg.NatsURL, nats.Name("fsys"))
	if err != nil {
		return nil, noop, fmt.Errorf("connecting to %s: %w", cfg.NatsURL, err)
	}
	js, err := JetStreamNew(nc)
	if err != nil {
		nc.Close()
		return nil, noop, fmt.Errorf("creating jetstream context: %w", err)
	}
	pub, err := NewPublisher(ctx, js, cfg.Stream, cfg.SubjectPrefix)
	if err != nil {
		nc.Close()
		return nil, noop, err
	}

	logger.Info("Publishing theorems", "url", cfg.NatsURL, "stream", cfg.Stream, "prefix", cfg.SubjectPrefix)
	return pub, func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("NATS drain failed", "error", err)
		}
	}, nil
}
