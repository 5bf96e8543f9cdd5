package main

import (
	"context"
	"flag"
	"os"

	"github.com/transitlk/bus-tracker/config"
	"github.com/transitlk/bus-tracker/internal/app"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger(types.ServiceName, logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		return
	}

	// Printing configuration
	config.PrintConfig(cfg)

	if cfg.Log.Level != "" {
		log = logger.InitLogger(types.ServiceName, cfg.Log.Level)
	}

	// Creating application
	application, err := app.New(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the apllication
	if err = application.Start(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
