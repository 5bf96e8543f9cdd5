package wshub

import (
	"context"
	"errors"
	"sync"

	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/uuid"
)

var ErrEmptyConn = errors.New("connection is empty")

// Hub хранит и управляет всеми активными WebSocket соединениями.
// Подписчики анонимны: хаб сам выдаёт идентификатор при регистрации.
type Hub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
}

func New(l logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add регистрирует новое соединение и возвращает его идентификатор.
// Подписчик получает только те сообщения, которые были отправлены
// после регистрации.
func (h *Hub) Add(conn *Conn) (uuid.UUID, error) {
	if conn == nil {
		return uuid.UUID{}, ErrEmptyConn
	}

	h.mu.Lock()
	h.clients[conn.ID()] = conn
	h.mu.Unlock()

	return conn.ID(), nil
}

// Remove удаляет и закрывает соединение по ID. Идемпотентна: удаление
// неизвестного или уже удалённого идентификатора — no-op.
func (h *Hub) Remove(id uuid.UUID) {
	h.mu.Lock()
	conn, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	if err := conn.Close(); err != nil {
		ctx := wrap.WithAction(context.Background(), "ws_connection_remove")
		h.l.Warn(ctx, "failed to close conn", "conn_id", id, "err", err.Error())
	}
}

// Broadcast отправляет msg каждому зарегистрированному подписчику.
// Итерация идёт по снимку, взятому под локом в момент старта, поэтому
// конкурентные Add/Remove безопасны. Доставка best-effort и независима
// для каждого подписчика: неудачная отправка закрывает и удаляет только
// этого подписчика. Возвращает число доставленных и удалённых.
func (h *Hub) Broadcast(ctx context.Context, msg any) (delivered, dropped int) {
	h.mu.Lock()
	snapshot := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		snapshot = append(snapshot, conn)
	}
	h.mu.Unlock()

	for _, conn := range snapshot {
		// Подписчик мог отключиться после снятия снимка
		h.mu.Lock()
		_, registered := h.clients[conn.ID()]
		h.mu.Unlock()
		if !registered {
			continue
		}

		if err := conn.Send(msg); err != nil {
			h.l.Warn(wrap.WithAction(ctx, "subscriber_dropped"),
				"failed to send to subscriber, dropping",
				"conn_id", conn.ID(),
				"err", err.Error(),
			)
			h.Remove(conn.ID())
			dropped++
			continue
		}
		delivered++
	}

	return delivered, dropped
}

// Len возвращает число активных подписчиков.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close закрывает каждое websocket соединение.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	h.clients = make(map[uuid.UUID]*Conn)
	h.mu.Unlock()

	for _, conn := range clients {
		_ = conn.Close()
	}

	h.l.Info(wrap.WithAction(context.Background(), "hub_close"),
		"all websocket connections closed")
}
