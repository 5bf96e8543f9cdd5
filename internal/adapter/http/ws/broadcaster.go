package ws

import (
	"context"

	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/metrics"
	"github.com/transitlk/bus-tracker/pkg/wshub"
)

// HubBroadcaster fans an accepted reading out to every websocket subscriber
// of this node.
type HubBroadcaster struct {
	hub *wshub.Hub
	l   logger.Logger
}

func NewHubBroadcaster(hub *wshub.Hub, l logger.Logger) *HubBroadcaster {
	return &HubBroadcaster{
		hub: hub,
		l:   l,
	}
}

func (b *HubBroadcaster) Broadcast(ctx context.Context, update models.BusLocationUpdate) {
	delivered, dropped := b.hub.Broadcast(ctx, update)

	metrics.LocationBroadcastsTotal.WithLabelValues(types.ServiceName).Inc()
	if dropped > 0 {
		metrics.SubscribersDroppedTotal.WithLabelValues(types.ServiceName).Add(float64(dropped))
		metrics.WebSocketConnectionsGauge.WithLabelValues(types.ServiceName).Set(float64(b.hub.Len()))
	}

	b.l.Debug(wrap.WithAction(ctx, types.ActionBroadcastAttempted),
		"location broadcast attempted",
		"bus_number", update.BusNumber,
		"delivered", delivered,
		"dropped", dropped,
	)
}
