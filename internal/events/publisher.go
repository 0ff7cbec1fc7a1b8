// Package events publishes derived theorems to NATS JetStream so other
// processes can follow a search as it runs.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
)

// JetStream is the subset of jetstream.JetStream the publisher uses.
type JetStream interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamNew is a variable to allow mocking in tests.
var JetStreamNew = func(nc *nats.Conn) (JetStream, error) {
	return jetstream.New(nc)
}

// Message is the payload of one published batch.
type Message struct {
	RunID     string    `json:"run_id"`
	Depth     int       `json:"depth"`
	Theorems  []string  `json:"theorems"`
	Published time.Time `json:"published"`
}

// Publisher is a search.Sink that publishes each admitted batch to
// <prefix>.<run id>.<depth>.
type Publisher struct {
	js     JetStream
	prefix string
	now    func() time.Time
}

var _ search.Sink = (*Publisher)(nil)

// NewPublisher ensures the stream exists and returns a publisher on it.
// An empty stream name skips stream creation.
func NewPublisher(ctx context.Context, js JetStream, stream, prefix string) (*Publisher, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream cannot be nil")
	}
	if prefix == "" {
		return nil, fmt.Errorf("subject prefix cannot be empty")
	}
	if stream != "" {
		_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     stream,
			Subjects: []string{prefix + ".>"},
			Storage:  jetstream.MemoryStorage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to ensure stream: %w", err)
		}
	}
	return &Publisher{js: js, prefix: prefix, now: time.Now}, nil
}

// Subject returns the subject a batch is published on.
func (p *Publisher) Subject(runID string, depth int) string {
	return fmt.Sprintf("%s.%s.%d", p.prefix, runID, depth)
}

// Admitted publishes batch as one JSON message.
func (p *Publisher) Admitted(ctx context.Context, batch search.Batch) error {
	msg := Message{
		RunID:     batch.RunID,
		Depth:     batch.Depth,
		Theorems:  make([]string, len(batch.Theorems)),
		Published: p.now().UTC(),
	}
	for i, t := range batch.Theorems {
		msg.Theorems[i] = t.Value
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	subject := p.Subject(batch.RunID, batch.Depth)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}
