package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
  bus-tracker - bus location ingestion and broadcast service

  Usage:
    tracker [flags]

  Flags:
    -config-path   path to the config yaml file (default "config.yaml")
    -help          show this message

  Every config value can also be set through environment variables,
  e.g. SERVER_PORT, DATABASE_HOST, RABBITMQ_ENABLED.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the effective configuration. Secrets stay out.
func PrintConfig(cfg *Config) {
	fmt.Printf("  server:    %s:%s\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  database:  %s:%s/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("  rabbitmq:  enabled=%t %s:%s\n", cfg.RabbitMQ.Enabled, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Printf("  log level: %s\n", cfg.Log.Level)
}
