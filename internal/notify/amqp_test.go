package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchangeKind string
	boundKey     string
	published    []amqp.Publishing
	publishKeys  []string
	publishErr   error
	declareErr   error
	closed       bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.exchangeKind = kind
	return c.declareErr
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	c.boundKey = key
	return nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	c.publishKeys = append(c.publishKeys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func testAlert() *domain.Alert {
	return &domain.Alert{
		ID:             7,
		UserID:         uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Title:          "Budget exceeded",
		Message:        "Groceries is over its limit",
		AlertType:      domain.AlertTypeDanger,
		RelatedSubject: "budget:3",
		CreatedOn:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewAMQPPublisher_DeclaresTopology(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newAMQPPublisherWithChannel(ch, "sentinel.alerts", "alert-notifications", zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "direct", ch.exchangeKind)
	assert.Equal(t, "alert-notifications", ch.boundKey)
}

func TestNewAMQPPublisher_SetupError(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newAMQPPublisherWithChannel(ch, "sentinel.alerts", "q", zerolog.Nop())
	assert.ErrorContains(t, err, "declare exchange")
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisherWithChannel(ch, "sentinel.alerts", "alert-notifications", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), testAlert()))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "alert-notifications", ch.publishKeys[0])

	var body AlertMessage
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, int32(7), body.AlertID)
	assert.Equal(t, "danger", body.AlertType)
	assert.Equal(t, "budget:3", body.RelatedSubject)
	assert.Equal(t, "2024-03-15", body.CreatedOn)
}

func TestAMQPPublisher_PublishAlertSwallowsErrors(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisherWithChannel(ch, "x", "q", zerolog.Nop())
	require.NoError(t, err)
	ch.publishErr = amqp.ErrClosed

	assert.NotPanics(t, func() { p.PublishAlert(context.Background(), testAlert()) })
	assert.ErrorIs(t, p.Publish(context.Background(), testAlert()), amqp.ErrClosed)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisherWithChannel(ch, "x", "q", zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
