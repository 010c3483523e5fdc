package effects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// DisbursementExchange is the topic exchange disbursements are sent to.
	DisbursementExchange = "assist.disbursement"
	disbursementKey      = "disbursement.requested"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPTrigger publishes disbursements to RabbitMQ.
type AMQPTrigger struct {
	channel amqpChannel
	closers []func() error
	logger  *slog.Logger
}

// NewAMQPTrigger dials url and declares the disbursement exchange.
func NewAMQPTrigger(url string, logger *slog.Logger) (*AMQPTrigger, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(DisbursementExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	t := newAMQPTrigger(ch, logger)
	t.closers = []func() error{ch.Close, conn.Close}
	return t, nil
}

func newAMQPTrigger(ch amqpChannel, logger *slog.Logger) *AMQPTrigger {
	return &AMQPTrigger{channel: ch, logger: logger}
}

func (t *AMQPTrigger) TriggerDisbursement(ctx context.Context, d Disbursement) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal disbursement: %w", err)
	}
	err = t.channel.PublishWithContext(ctx, DisbursementExchange, disbursementKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    d.Email,
		Timestamp:    d.ApprovedAt,
		Body:         body,
	})
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to publish disbursement", "error", err, "email", d.Email)
		return fmt.Errorf("failed to publish disbursement: %w", err)
	}
	return nil
}

func (t *AMQPTrigger) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
