package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the subset of *amqp.Channel used for publishing
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AlertMessage is the JSON body published for every new alert.
// Downstream consumers use it for e-mail delivery.
type AlertMessage struct {
	AlertID        int32  `json:"alertId"`
	UserID         string `json:"userId"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	AlertType      string `json:"alertType"`
	RelatedSubject string `json:"relatedSubject"`
	CreatedOn      string `json:"createdOn"`
}

// NewAlertMessage builds the wire message for an alert
func NewAlertMessage(alert *domain.Alert) AlertMessage {
	return AlertMessage{
		AlertID:        alert.ID,
		UserID:         alert.UserID.String(),
		Title:          alert.Title,
		Message:        alert.Message,
		AlertType:      string(alert.AlertType),
		RelatedSubject: alert.RelatedSubject,
		CreatedOn:      util.FormatDate(alert.CreatedOn),
	}
}

// AMQPPublisher publishes alerts to a durable direct exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	queue    string
	logger   zerolog.Logger
	mu       sync.Mutex
}

// NewAMQPPublisher dials the broker and declares the exchange, queue and binding
func NewAMQPPublisher(url, exchange, queue string, logger zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newAMQPPublisherWithChannel(channel, exchange, queue, logger)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisherWithChannel(channel amqpChannel, exchange, queue string, logger zerolog.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		logger:   logger.With().Str("component", "amqp_publisher").Logger(),
	}
	if err := p.setup(); err != nil {
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return p, nil
}

func (p *AMQPPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key equals the queue name on the direct exchange
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends one persistent alert message
func (p *AMQPPublisher) Publish(ctx context.Context, alert *domain.Alert) error {
	body, err := json.Marshal(NewAlertMessage(alert))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishAlert publishes and logs failures; a broker outage never fails the alert run
func (p *AMQPPublisher) PublishAlert(ctx context.Context, alert *domain.Alert) {
	if err := p.Publish(ctx, alert); err != nil {
		p.logger.Error().
			Err(err).
			Int32("alert_id", alert.ID).
			Str("user_id", alert.UserID.String()).
			Msg("Failed to publish alert notification")
		return
	}
	p.logger.Debug().
		Int32("alert_id", alert.ID).
		Str("exchange", p.exchange).
		Str("queue", p.queue).
		Msg("Published alert notification")
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
