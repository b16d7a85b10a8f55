package docstore

import (
	"context"
	"encoding/json"

	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Subscribe подключает ленту изменений документного стора: каждая
// запись другого редактора приходит отдельным ChangeEvent и уходит
// в процедуру слияния сервиса
func (a *DocStoreAdapter) Subscribe(ctx context.Context, onChange func(out.ChangeEvent)) error {
	if a.channel == nil {
		a.logger.Info("docstore.subscribe.disabled", out.LogFields{})
		return nil
	}

	queue, err := a.channel.QueueDeclare(
		a.cfg.RabbitMQ.Queue,
		true,  // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = a.channel.QueueBind(
		queue.Name,
		a.cfg.RabbitMQ.BindingKey,
		a.cfg.RabbitMQ.Exchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := a.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := a.processChangeMessage(msg, onChange); err != nil {
					msg.Nack(false, true) // requeue message
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	a.logger.Info("docstore.subscribe.started", out.LogFields{
		"queue": queue.Name,
	})

	return nil
}

func (a *DocStoreAdapter) processChangeMessage(msg amqp.Delivery, onChange func(out.ChangeEvent)) error {
	var event out.ChangeEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		a.logger.Error("docstore.change.decode_failed", out.LogFields{
			"error":     err.Error(),
			"msgString": string(msg.Body),
		})
		return err
	}

	a.logger.Debug("docstore.change.received", out.LogFields{
		"eventId": event.ID,
		"kind":    event.Kind,
	})

	onChange(event)
	return nil
}

// Close останавливает потребление ленты изменений
func (a *DocStoreAdapter) Close() error {
	if a == nil || a.channel == nil {
		return nil
	}

	if err := a.channel.Close(); err != nil {
		return err
	}
	return a.conn.Close()
}
