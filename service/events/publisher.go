package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher defines the interface for publishing ledger events to NATS.
// Publishing is strictly fire-and-forget from the caller's perspective:
// failures are reported, but callers log and continue.
type Publisher interface {
	// PublishSettlement publishes a settlement event to JetStream on the
	// subject "dexsim.settled.{kind}".
	PublishSettlement(ctx context.Context, event *SettlementEvent) error

	// PublishReorder publishes a completed-reorder event to JetStream on
	// the subject "dexsim.reorder.{strategy}".
	PublishReorder(ctx context.Context, event *ReorderEvent) error

	// Close closes the connection to NATS.
	Close() error
}

const (
	// StreamName is the name of the JetStream stream for ledger events.
	StreamName = "DEXSIM"

	// StreamSubjects is the subject pattern for the stream.
	StreamSubjects = "dexsim.>"

	// StreamRetention is how long messages are retained.
	StreamRetention = 24 * time.Hour
)

// JetStreamPublisher publishes ledger events to NATS JetStream.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// NewPublisher connects to NATS and ensures the stream exists.
func NewPublisher(natsURL string, logger *slog.Logger) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("dexsim-publisher"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(1*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	publisher := &JetStreamPublisher{
		nc:     nc,
		js:     js,
		logger: logger,
	}

	if err := publisher.ensureStream(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream exists: %w", err)
	}

	logger.Info("NATS publisher initialized", "url", natsURL, "stream", StreamName)
	return publisher, nil
}

// ensureStream creates the JetStream stream if it doesn't exist.
func (p *JetStreamPublisher) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		p.logger.Debug("JetStream stream already exists", "stream", StreamName)
		return nil
	}

	p.logger.Info("creating JetStream stream", "stream", StreamName)

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Settlement and reorder events from the dexsim ledger",
		Subjects:    []string{StreamSubjects},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      StreamRetention,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// PublishSettlement publishes a settlement event.
func (p *JetStreamPublisher) PublishSettlement(ctx context.Context, event *SettlementEvent) error {
	event.PublishedAt = time.Now()
	subject := fmt.Sprintf("dexsim.settled.%s", event.Kind)
	if err := p.publish(ctx, subject, event); err != nil {
		return err
	}
	p.logger.Debug("published settlement event", "subject", subject, "tx_id", event.TxID)
	return nil
}

// PublishReorder publishes a completed-reorder event.
func (p *JetStreamPublisher) PublishReorder(ctx context.Context, event *ReorderEvent) error {
	event.PublishedAt = time.Now()
	subject := fmt.Sprintf("dexsim.reorder.%s", event.Strategy)
	if err := p.publish(ctx, subject, event); err != nil {
		return err
	}
	p.logger.Debug("published reorder event", "subject", subject, "victim_tx_id", event.VictimTxID)
	return nil
}

func (p *JetStreamPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
		p.logger.Info("NATS publisher closed")
	}
	return nil
}
