// SPDX-License-Identifier: GPL-3.0-only

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"saraha-server/commons"
	"saraha-server/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the durable topic exchange new-message events are
// published to. Consumers bind with messages.<receiverID> to follow a
// single inbox, or messages.# for everything.
const ExchangeName = "messages"

// Default is the process-wide publisher, set up once by Init. It stays
// nil when AMQP_URL is unconfigured; all methods are nil-safe no-ops in
// that case.
var Default *Publisher

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

type MessageCreatedEvent struct {
	MID       string    `json:"mid"`
	Sender    uint      `json:"sender"`
	Receiver  uint      `json:"receiver"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func Init() {
	publisher, err := NewPublisher()
	if err != nil {
		commons.Logger.Warnf("Message event fan-out disabled, broker unavailable: %v", err)
		return
	}
	Default = publisher
}

func NewPublisher() (*Publisher, error) {
	amqpURL := commons.GetEnv("AMQP_URL")
	if amqpURL == "" {
		commons.Logger.Debug("AMQP_URL not set, message event fan-out disabled")
		return nil, nil
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("exchange declare: %w", err)
	}

	commons.Logger.Infof("Message event publisher connected, exchange: %s", ExchangeName)
	return &Publisher{conn: conn, channel: ch}, nil
}

// PublishMessageCreated fans out a created message to the broker. Safe
// to call on a nil publisher.
func (p *Publisher) PublishMessageCreated(ctx context.Context, message *models.Message) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(MessageCreatedEvent{
		MID:       message.MID.String(),
		Sender:    message.SenderID,
		Receiver:  message.ReceiverID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	routingKey := fmt.Sprintf("messages.%d", message.ReceiverID)
	return p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
