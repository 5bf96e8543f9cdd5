package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/transitlk/bus-tracker/config"
	"github.com/transitlk/bus-tracker/internal/adapter/http/server"
	"github.com/transitlk/bus-tracker/internal/adapter/http/ws"
	repo "github.com/transitlk/bus-tracker/internal/adapter/postgres"
	rabbitadapter "github.com/transitlk/bus-tracker/internal/adapter/rabbit"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/internal/service/location"
	"github.com/transitlk/bus-tracker/pkg/logger"
	"github.com/transitlk/bus-tracker/pkg/postgres"
	"github.com/transitlk/bus-tracker/pkg/rabbit"
	"github.com/transitlk/bus-tracker/pkg/uuid"
	"github.com/transitlk/bus-tracker/pkg/wshub"
)

// App owns the whole ingestion pipeline: postgres, the subscriber hub,
// the optional RabbitMQ relay and the HTTP server on top of them.
type App struct {
	postgresDB  *postgres.PostgreDB
	rabbitMQ    *rabbit.RabbitMQ
	consumer    *rabbitadapter.LocationConsumer
	hub         *wshub.Hub
	broadcaster *ws.HubBroadcaster
	httpServer  *server.API

	cfg config.Config
	log logger.Logger
}

func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	hub := wshub.New(log)
	hubBroadcaster := ws.NewHubBroadcaster(hub, log)
	locationRepo := repo.NewLocationRepo(postgresDB.Pool)

	broadcasters := []location.Broadcaster{hubBroadcaster}

	var (
		rabbitClient *rabbit.RabbitMQ
		consumer     *rabbitadapter.LocationConsumer
	)
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			log.Error(ctx, "Failed to setup rabbitmq", err)
			return nil, err
		}

		// nodeID отличает собственные сообщения узла от чужих в fanout.
		nodeID := uuid.MustNew().String()

		producer, err := rabbitadapter.NewLocationProducer(rabbitClient, nodeID, log)
		if err != nil {
			log.Error(ctx, "Failed to setup location producer", err)
			return nil, err
		}
		broadcasters = append(broadcasters, producer)

		consumer = rabbitadapter.NewLocationConsumer(rabbitClient, nodeID, log)
	}

	locationService := location.New(types.ServiceName, locationRepo, log, broadcasters...)

	httpServer, err := server.New(cfg, locationService, hub, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &App{
		postgresDB:  postgresDB,
		rabbitMQ:    rabbitClient,
		consumer:    consumer,
		hub:         hub,
		broadcaster: hubBroadcaster,
		httpServer:  httpServer,
		cfg:         cfg,
		log:         log,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	a.httpServer.Run(ctx, errCh)
	if a.consumer != nil {
		go func() {
			if err := a.consumer.ConsumeLocationUpdates(ctx, a.broadcaster); err != nil {
				errCh <- err
			}
		}()
	}

	defer func() {
		a.close(ctx)
		a.log.Info(ctx, "bus tracker closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "Bus tracker service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close rabbitmq connection", "error", err.Error())
		}
	}

	if a.postgresDB != nil && a.postgresDB.Pool != nil {
		a.postgresDB.Pool.Close()
	}
}
