package main

import (
	"checkout/api/internal/app"
	"checkout/api/internal/config"
	"checkout/api/internal/infra/nats"
	"checkout/api/internal/infra/postgres"
	"checkout/api/internal/infra/redis"
	"checkout/api/internal/logger"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// loads .env (if ENVPATH is set), the toml config and connects to postgres.
// nats and redis are connected only when asked for and configured
func initApp(withNats bool) (*app.App, error) {
	if path := os.Getenv("ENVPATH"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("can't load .env file: %w", err)
		}
	}

	config := config.ReadConfig()
	config.DB = postgres.Init(config)

	unixLogger := logger.Init(config)

	a := &app.App{
		Config: config,
		Db:     config.DB,
		Log:    unixLogger,
	}

	if withNats && config.Nats.Enabled {
		a.NatsInfra = nats.Init(config, unixLogger)
	}
	if config.Redis.Addr != "" {
		a.Redis = redis.Init(config)
	}

	return a, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the http api with the expiry and outbox workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(true)
			if err != nil {
				return err
			}

			return a.Start()
		},
	}
}
