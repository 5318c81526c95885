package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Mailer sends a confirmation mail for one event.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, ev OrderConfirmed) error
}

// StartOrderConfirmedConsumer drains the confirmation queue and hands each
// event to the mailer. Bad payloads are dropped, send failures are requeued
// once by the broker.
func StartOrderConfirmedConsumer(ctx context.Context, conn *amqp.Connection, mailer Mailer, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(OrderConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(
		OrderConfirmedQueue,
		"storefront-mailer", // consumer tag
		false,               // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping order.confirmed consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("messages channel closed")
					return
				}

				if err := handleOrderConfirmed(ctx, mailer, msg.Body, logger); err != nil {
					logger.Printf("handle message error: %v", err)
					_ = msg.Nack(false, !msg.Redelivered)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleOrderConfirmed(ctx context.Context, mailer Mailer, body []byte, logger *log.Logger) error {
	var ev OrderConfirmed
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if err := mailer.SendOrderConfirmation(ctx, ev); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", ev.OrderNumber, err)
	}

	logger.Printf("confirmation sent for order %s to %s", ev.OrderNumber, ev.CustomerEmail)
	return nil
}
