// Package queue_publisher publishes domain events to RabbitMQ. Errors
// are logged and returned so callers can ignore a broker outage without
// failing the request that produced the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/mihaja/univ-housing/internal/queue"
)

// PublishReservationPaid publishes a ReservationPaidEvent to the
// durable "reservation.paid" queue on the default exchange. Messages
// are marked persistent so they survive broker restarts.
func PublishReservationPaid(ctx context.Context, event q.ReservationPaidEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; must stay in sync with the consumer side.
	if _, err := ch.QueueDeclare("reservation.paid", true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", "reservation.paid", false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
