package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/config"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/search"
	"github.com/Ben-Foxman/Formal-Sys-Explorer/internal/theorem"
)

// MockJetStream is a mock implementation of the JetStream interface for testing.
type MockJetStream struct {
	mock.Mock
}

func (m *MockJetStream) CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jetstream.Stream), args.Error(1)
}

func (m *MockJetStream) Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, subject, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jetstream.PubAck), args.Error(1)
}

func TestNewPublisher_EnsuresStream(t *testing.T) {
	mockJS := new(MockJetStream)
	mockJS.On("CreateOrUpdateStream", mock.Anything, mock.MatchedBy(func(cfg jetstream.StreamConfig) bool {
		return cfg.Name == "THEOREMS" && len(cfg.Subjects) == 1 && cfg.Subjects[0] == "theorems.>"
	})).Return(nil, nil)

	pub, err := NewPublisher(context.Background(), mockJS, "THEOREMS", "theorems")
	require.NoError(t, err)
	assert.Equal(t, "theorems.r1.3", pub.Subject("r1", 3))
	mockJS.AssertExpectations(t)
}

func TestNewPublisher_Errors(t *testing.T) {
	_, err := NewPublisher(context.Background(), nil, "S", "p")
	assert.Error(t, err)

	_, err = NewPublisher(context.Background(), new(MockJetStream), "S", "")
	assert.Error(t, err)

	mockJS := new(MockJetStream)
	mockJS.On("CreateOrUpdateStream", mock.Anything, mock.Anything).Return(nil, errors.New("stream error"))
	_, err = NewPublisher(context.Background(), mockJS, "S", "p")
	assert.ErrorContains(t, err, "stream error")
}

func TestPublisher_Admitted(t *testing.T) {
	mockJS := new(MockJetStream)
	pub, err := NewPublisher(context.Background(), mockJS, "", "theorems")
	require.NoError(t, err)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	batch := search.Batch{
		RunID: "run-1",
		Depth: 2,
		Theorems: []theorem.Theorem{
			{Value: "aaaa", Depth: 2},
			{Value: "aab", Depth: 2},
		},
	}
	expected, _ := json.Marshal(Message{
		RunID:     "run-1",
		Depth:     2,
		Theorems:  []string{"aaaa", "aab"},
		Published: fixed,
	})
	mockJS.On("Publish", mock.Anything, "theorems.run-1.2", expected).Return(&jetstream.PubAck{}, nil)

	require.NoError(t, pub.Admitted(context.Background(), batch))
	mockJS.AssertExpectations(t)
}

func TestPublisher_Admitted_Error(t *testing.T) {
	mockJS := new(MockJetStream)
	pub, err := NewPublisher(context.Background(), mockJS, "", "theorems")
	require.NoError(t, err)

	mockJS.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("publish failed"))

	err = pub.Admitted(context.Background(), search.Batch{RunID: "r", Depth: 1})
	assert.ErrorContains(t, err, "publish failed")
	assert.ErrorContains(t, err, "theorems.r.1")
}

func TestConnect_Disabled(t *testing.T) {
	pub, closeFn, err := Connect(context.Background(), config.EventsConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, pub)
	closeFn()
}

func TestConnect_DialError(t *testing.T) {
	orig := natsConnectFunc
	defer func() { natsConnectFunc = orig }()
	natsConnectFunc = func(url string, _ ...nats.Option) (*nats.Conn, error) {
		assert.Equal(t, "nats://example:4222", url)
		return nil, errors.New("connection refused")
	}

	cfg := config.DefaultEventsConfig()
	cfg.Enabled = true
	cfg.NatsURL = "nats://example:4222"

	pub, closeFn, err := Connect(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "connection refused")
	assert.Nil(t, pub)
	assert.NotNil(t, closeFn)
}
