package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/metrics"
	"github.com/transitlk/bus-tracker/pkg/wshub"
)

type LocationWS struct {
	hub      *wshub.Hub
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewLocationWS(hub *wshub.Hub, checkOrigin func(r *http.Request) bool, l logger.Logger) *LocationWS {
	return &LocationWS{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
		l: l,
	}
}

// Subscribe upgrades the connection and registers it as a subscriber. No
// handshake payload: connecting is subscribing. The read pump only detects
// disconnect; inbound frames carry no meaning on this endpoint.
func (h *LocationWS) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionWSConnect)

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже написал ответ клиенту
		h.l.Warn(ctx, "websocket upgrade failed", "err", err.Error())
		return
	}

	conn := wshub.NewConn(c)
	id, err := h.hub.Add(conn)
	if err != nil {
		h.l.Error(ctx, "failed to register subscriber", err)
		conn.Close()
		return
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(types.ServiceName).Set(float64(h.hub.Len()))
	h.l.Info(ctx, "subscriber connected", "conn_id", id, "remote_addr", r.RemoteAddr)

	go func() {
		defer func() {
			h.hub.Remove(id)
			metrics.WebSocketConnectionsGauge.WithLabelValues(types.ServiceName).Set(float64(h.hub.Len()))
			h.l.Info(wrap.WithAction(r.Context(), types.ActionWSDisconnect),
				"subscriber disconnected", "conn_id", id)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
