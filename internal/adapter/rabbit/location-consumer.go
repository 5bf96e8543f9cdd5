package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/metrics"
	"github.com/transitlk/bus-tracker/pkg/rabbit"
)

// Sink receives location updates relayed from other broadcast nodes.
type Sink interface {
	Broadcast(ctx context.Context, update models.BusLocationUpdate)
}

// LocationConsumer feeds reports accepted on other nodes into the local
// subscriber set.
type LocationConsumer struct {
	client *rabbit.RabbitMQ
	nodeID string
	l      logger.Logger
}

func NewLocationConsumer(client *rabbit.RabbitMQ, nodeID string, l logger.Logger) *LocationConsumer {
	return &LocationConsumer{
		client: client,
		nodeID: nodeID,
		l:      l,
	}
}

// ConsumeLocationUpdates — слушает fanout exchange и передаёт обновления в
// sink. Сообщения, опубликованные этим же узлом, пропускаются: локальные
// подписчики уже получили их напрямую.
func (r *LocationConsumer) ConsumeLocationUpdates(ctx context.Context, sink Sink) error {
	const op = "LocationConsumer.ConsumeLocationUpdates"

	// Эксклюзивная безымянная очередь: своя на каждый узел, умирает вместе
	// с соединением
	q, err := r.client.Channel.QueueDeclare(
		"",
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, "declare_queue")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to declare queue: %w", op, err))
	}

	if err := r.client.Channel.QueueBind(
		q.Name,
		"", // fanout ignores the binding key
		LocationFanoutExchange,
		false,
		nil,
	); err != nil {
		ctx = wrap.WithAction(ctx, "bind_queue")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to bind queue: %w", op, err))
	}

	msgs, err := r.client.Channel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false,
		false,
		nil,
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, "consume data")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to register consumer: %w", op, err))
	}

	go func() {
		for d := range msgs {
			if d.AppId == r.nodeID {
				continue
			}

			var update models.BusLocationUpdate
			if err := json.Unmarshal(d.Body, &update); err != nil {
				metrics.RecordRabbitMQConsume(types.ServiceName, LocationFanoutExchange, err)
				r.l.Warn(wrap.WithAction(ctx, types.ActionRabbitConsumeFailed),
					"failed to unmarshal relayed location update",
					"err", err.Error(),
				)
				continue
			}

			metrics.RecordRabbitMQConsume(types.ServiceName, LocationFanoutExchange, nil)
			sink.Broadcast(ctx, update)
		}
	}()

	return nil
}
