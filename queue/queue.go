package queue

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/bunnyq"
	"github.com/streadway/amqp"
	"github.com/summitair/inventory-service/core/catalog"
	"github.com/summitair/inventory-service/core/stock"
)

type stockQueue struct {
	queue               *bunnyq.BunnyQ
	movementExchange    string
	reservationExchange string
}

func New(bq *bunnyq.BunnyQ, movementExchange, reservationExchange string) stock.Queue {
	return &stockQueue{queue: bq, movementExchange: movementExchange, reservationExchange: reservationExchange}
}

func (q *stockQueue) PublishMovement(ctx context.Context, movement stock.Movement) error {
	body, err := json.Marshal(movement)
	if err != nil {
		return errors.WithMessage(err, "failed to serialize movement for queue")
	}
	if err = q.queue.Publish(ctx, q.movementExchange, body); err != nil {
		return errors.WithMessage(err, "failed to send movement to queue")
	}
	return nil
}

func (q *stockQueue) PublishReservation(ctx context.Context, reservation stock.Reservation) error {
	body, err := json.Marshal(reservation)
	if err != nil {
		return errors.WithMessage(err, "error marshalling reservation to send to queue")
	}
	err = q.queue.Publish(ctx, q.reservationExchange, body)
	if err != nil {
		return errors.WithMessage(err, "error publishing reservation")
	}
	return nil
}

// ItemQueue consumes catalog items pushed by an upstream product system.
type ItemQueue struct {
	queue           *bunnyq.BunnyQ
	itemQueue       string
	itemDltExchange string
}

func NewItemQueue(bq *bunnyq.BunnyQ, itemQueue, itemDltExchange string) *ItemQueue {
	return &ItemQueue{queue: bq, itemQueue: itemQueue, itemDltExchange: itemDltExchange}
}

type ItemHandler interface {
	Create(ctx context.Context, req catalog.CreateItemRequest) (catalog.Item, error)
}

func (q *ItemQueue) ConsumeItems(ctx context.Context, handler ItemHandler) {
	q.queue.Stream(ctx, q.itemQueue, func(delivery amqp.Delivery) {
		req := catalog.CreateItemRequest{}
		err := json.Unmarshal(delivery.Body, &req)
		if err != nil {
			log.Error().Err(err).Msg("error unmarshalling item, writing to dlt")
			q.sendToDlt(ctx, delivery.Body)
			return
		}

		if _, err = handler.Create(ctx, req); err != nil {
			log.Error().Err(err).Msg("error handling item, writing to dlt")
			q.sendToDlt(ctx, delivery.Body)
		}
	}, bunnyq.StreamOpAutoAck)
}

func (q *ItemQueue) sendToDlt(ctx context.Context, data []byte) {
	err := q.queue.Publish(ctx, q.itemDltExchange, data)
	if err != nil {
		log.Error().Err(err).Msg("error writing to dlt")
	}
}
