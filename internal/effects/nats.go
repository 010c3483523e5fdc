package effects

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// CodeSubject is the NATS subject verification codes are published on.
const CodeSubject = "assist.verification.code"

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSDeliverer publishes codes for the messaging gateway to send.
type NATSDeliverer struct {
	conn    natsPublisher
	closer  func()
	subject string
	logger  *slog.Logger
}

// NewNATSDeliverer connects to url.
func NewNATSDeliverer(url string, logger *slog.Logger) (*NATSDeliverer, error) {
	conn, err := nats.Connect(url, nats.Name("assistflow"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("connected to NATS", "url", url)
	d := newNATSDeliverer(conn, logger)
	d.closer = conn.Close
	return d, nil
}

func newNATSDeliverer(conn natsPublisher, logger *slog.Logger) *NATSDeliverer {
	return &NATSDeliverer{conn: conn, subject: CodeSubject, logger: logger}
}

func (n *NATSDeliverer) DeliverCode(ctx context.Context, d CodeDelivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal code delivery: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		n.logger.ErrorContext(ctx, "failed to publish verification code", "error", err, "email", d.Email)
		return fmt.Errorf("failed to publish verification code: %w", err)
	}
	n.logger.DebugContext(ctx, "verification code published", "email", d.Email)
	return nil
}

func (n *NATSDeliverer) Close() {
	if n.closer != nil {
		n.closer()
	}
}
