package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/metrics"
	"github.com/transitlk/bus-tracker/pkg/rabbit"
)

// LocationFanoutExchange carries every accepted reading to all broadcast
// nodes of a clustered deployment.
const LocationFanoutExchange = "bus_location_fanout"

// LocationProducer relays accepted location reports to the fanout exchange.
// It implements the service's Broadcaster contract: delivery is best-effort
// and a publish failure is never surfaced to ingestion.
type LocationProducer struct {
	client *rabbit.RabbitMQ
	nodeID string
	l      logger.Logger
}

func NewLocationProducer(client *rabbit.RabbitMQ, nodeID string, l logger.Logger) (*LocationProducer, error) {
	if err := client.Channel.ExchangeDeclare(
		LocationFanoutExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, err
	}

	return &LocationProducer{
		client: client,
		nodeID: nodeID,
		l:      l,
	}, nil
}

// Broadcast публикует сообщение в fanout exchange. AppId помечает узел
// отправителя, чтобы consumer этого же узла не доставлял сообщение повторно.
func (r *LocationProducer) Broadcast(ctx context.Context, update models.BusLocationUpdate) {
	body, err := json.Marshal(update)
	if err != nil {
		r.l.Error(wrap.WithAction(ctx, types.ActionRabbitPublishFailed),
			"failed to marshal location update", err)
		return
	}

	err = r.client.Channel.PublishWithContext(
		ctx,
		LocationFanoutExchange,
		"",    // routing key is ignored by fanout
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
			AppId:       r.nodeID,
		},
	)

	metrics.RecordRabbitMQPublish(types.ServiceName, LocationFanoutExchange, err)

	if err != nil {
		r.l.Error(wrap.WithAction(ctx, types.ActionRabbitPublishFailed),
			"failed to publish location update", err,
			"bus_number", update.BusNumber,
		)
	}
}
