package notify

import (
	"context"
	"encoding/json"

	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMqNotifier публикует итоги циклов перезаписи во внешний exchange
type RabbitMqNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   out.LoggerPort
}

func NewRabbitMqNotifier(cfg *config.Config, logger out.LoggerPort) (*RabbitMqNotifier, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, notifier will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	err = channel.ExchangeDeclare(
		cfg.RabbitMQ.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		logger.Error("rabbitmq.exchange.failed", out.LogFields{
			"error":    err.Error(),
			"exchange": cfg.RabbitMQ.Exchange,
		})
		return nil, err
	}

	return &RabbitMqNotifier{
		conn:     conn,
		channel:  channel,
		exchange: cfg.RabbitMQ.Exchange,
		logger:   logger,
	}, nil
}

func (n *RabbitMqNotifier) PublishOutcome(ctx context.Context, event out.OutcomeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	routingKey := "visa.reschedule." + string(event.Status)

	err = n.channel.PublishWithContext(ctx,
		n.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Error("rabbitmq.publish.failed", out.LogFields{
			"error":      err.Error(),
			"routingKey": routingKey,
		})
		return err
	}

	n.logger.Debug("rabbitmq.publish.success", out.LogFields{
		"routingKey": routingKey,
		"eventId":    event.EventID,
	})

	return nil
}

func (n *RabbitMqNotifier) Close() error {
	if n == nil || n.channel == nil {
		return nil
	}

	if err := n.channel.Close(); err != nil {
		return err
	}
	return n.conn.Close()
}
