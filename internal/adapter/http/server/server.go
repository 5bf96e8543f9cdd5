package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/transitlk/bus-tracker/config"
	"github.com/transitlk/bus-tracker/internal/adapter/http/handler"
	"github.com/transitlk/bus-tracker/internal/adapter/http/middleware"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/wshub"
)

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	location   *handler.Location
	locationWS *handler.LocationWS
	health     *handler.Health
}

func New(
	cfg config.Config,
	locationService handler.LocationService,
	hub *wshub.Hub,
	logger logger.Logger,
) (*API, error) {
	if locationService == nil {
		return nil, errors.New("location service is required")
	}
	if hub == nil {
		return nil, errors.New("subscriber hub is required")
	}

	routes := &handlers{
		location:   handler.NewLocation(locationService, logger),
		locationWS: handler.NewLocationWS(hub, checkOrigin(cfg.WebSocket), logger),
		health:     handler.NewHealth(types.ServiceName, logger),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(logger),
		addr:   fmt.Sprintf(serverIPAddress, cfg.Server.Host, cfg.Server.Port),
		cfg:    cfg,
		log:    logger,
	}

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	setupRoutes(api.mux, api.routes)

	return api, nil
}

// checkOrigin builds the websocket origin policy from config.
func checkOrigin(cfg config.WebSocketConfig) func(r *http.Request) bool {
	if cfg.AllowedOrigin == "*" {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == cfg.AllowedOrigin
	}
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(types.ServiceName)(a.m.Logging(a.mux))))
}
