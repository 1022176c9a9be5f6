package rmqconsumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"palmr-api/config"
)

// can scale depends on a parallel worker count
const preFetchCount = 1

// BindingKeys covers every event the API publishes.
var BindingKeys = []string{"file.*", "user.*"}

type Consumer struct {
	cfg        config.MQ
	log        *zap.Logger
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	chDelivery <-chan amqp091.Delivery
}

// AuditRecord is the decoded form of a published event.
type AuditRecord struct {
	EventID string          `json:"event_id"`
	TS      time.Time       `json:"time_stamp"`
	Action  string          `json:"event_action"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// New reuses conn when it is not nil; otherwise Connect dials.
func New(cfg config.MQ, logger *zap.Logger, conn *amqp091.Connection) *Consumer {
	return &Consumer{
		cfg:  cfg,
		log:  logger,
		conn: conn,
	}
}

func (c *Consumer) Connect(dsn string) error {
	var err error
	if c.conn == nil || c.conn.IsClosed() {
		c.conn, err = amqp091.Dial(dsn)
		if err != nil {
			return fmt.Errorf("amqp dial: %w", err)
		}
	}
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	if err := c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, rk := range BindingKeys {
		if err := c.chConsume.QueueBind(
			c.cfg.QueueName,
			rk,
			c.cfg.Exchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err := c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var err error
	c.chDelivery, err = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting delivery worker")

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				return
			}
			if _, err := c.delivery(msg); err != nil {
				c.log.Error("mq read message error", zap.Error(err))
			}
		case <-ctx.Done():
			_ = c.chConsume.Close()
			return
		}
	}
}

// delivery writes one audit line per event. Deliveries are auto-acked.
func (c *Consumer) delivery(msg amqp091.Delivery) (*AuditRecord, error) {
	rec := new(AuditRecord)
	if err := json.Unmarshal(msg.Body, rec); err != nil {
		return nil, fmt.Errorf("decode event %q: %w", msg.MessageId, err)
	}
	if rec.Action == "" {
		rec.Action = msg.RoutingKey
	}

	c.log.Info("audit",
		zap.String("action", rec.Action),
		zap.String("event_id", rec.EventID),
		zap.String("user_id", rec.UserID),
		zap.Time("ts", rec.TS),
		zap.ByteString("payload", rec.Payload),
	)

	return rec, nil
}
