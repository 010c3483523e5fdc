package effects

//go:generate mockgen -source=effects.go -destination=mocks/mocks.go -package=mocks CodeDeliverer,DisbursementTrigger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeNATS struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeNATS) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestNATSDeliverer(t *testing.T) {
	t.Run("publishes the delivery as json", func(t *testing.T) {
		conn := &fakeNATS{}
		d := newNATSDeliverer(conn, discard)

		err := d.DeliverCode(context.Background(), CodeDelivery{Email: "a@x.com", Code: "123456"})
		require.NoError(t, err)
		assert.Equal(t, CodeSubject, conn.subject)

		var got CodeDelivery
		require.NoError(t, json.Unmarshal(conn.data, &got))
		assert.Equal(t, "123456", got.Code)
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		d := newNATSDeliverer(&fakeNATS{err: errors.New("no responders")}, discard)
		assert.Error(t, d.DeliverCode(context.Background(), CodeDelivery{Email: "a@x.com"}))
	})
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func TestAMQPTrigger(t *testing.T) {
	ch := &fakeChannel{}
	trigger := newAMQPTrigger(ch, discard)
	approvedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := trigger.TriggerDisbursement(context.Background(), Disbursement{
		Email:      "a@x.com",
		Amount:     decimal.NewFromInt(1000),
		ApprovedAt: approvedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, DisbursementExchange, ch.exchange)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "a@x.com", ch.msg.MessageId)

	var got Disbursement
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.True(t, decimal.NewFromInt(1000).Equal(got.Amount))
}

func TestLogAdapters(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewLogDeliverer(discard).DeliverCode(ctx, CodeDelivery{Email: "a@x.com"}))
	assert.NoError(t, NewLogTrigger(discard).TriggerDisbursement(ctx, Disbursement{Email: "a@x.com"}))
}
