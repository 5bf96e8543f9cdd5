package rabbit

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
)

type RabbitMQ struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	closeChan chan *amqp.Error
	isClosed  bool
	mu        sync.Mutex
	dsn       string

	log logger.Logger
}

// New creates rabbitMQ client
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	closeChan := make(chan *amqp.Error, 1)
	conn.NotifyClose(closeChan)

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")

	r := &RabbitMQ{
		Conn:      conn,
		Channel:   channel,
		closeChan: closeChan,
		isClosed:  false,
		dsn:       dsn,
		log:       log,
	}

	// Start monitoring connection in background
	go r.monitorConnection()

	return r, nil
}

// monitorConnection monitors the connection status
func (r *RabbitMQ) monitorConnection() {
	closeErr := <-r.closeChan

	r.mu.Lock()
	r.isClosed = true
	r.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)

	if closeErr != nil {
		r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
	} else {
		r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
	}
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Conn == nil {
		return true
	}
	return r.isClosed || r.Conn.IsClosed() || r.Channel.IsClosed()
}

// Close closes rabbit channel and connection
func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)
	r.log.Debug(ctx, "closing RabbitMQ connection")

	r.mu.Lock()
	if r.isClosed {
		r.mu.Unlock()
		return nil
	}
	// mark closed early to avoid races with concurrent Close calls
	r.isClosed = true
	ch := r.Channel
	conn := r.Conn
	r.Channel = nil
	r.Conn = nil
	r.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			r.log.Error(ctx, "error closing channel", err)
		}
	}

	if conn != nil {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.log.Debug(wrap.WithAction(ctx, types.ActionRabbitConnectionClosed), "RabbitMQ connection closed")

	return nil
}
