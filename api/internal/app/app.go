package app

import (
	"checkout/api/internal/config"
	"checkout/api/internal/delivery"
	"checkout/api/internal/infra/nats"
	"checkout/api/internal/logger"
	"checkout/api/internal/service"
	"checkout/pkg/nats/natsdomain"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	Db        *gorm.DB
	NatsInfra *nats.NatsInfra // nil when nats is disabled
	Redis     *redis.Client   // nil when redis is not configured
	Log       logger.Logger
}

func (app *App) Services() (*service.Services, error) {
	var ns *natsdomain.Ns
	if app.NatsInfra != nil {
		ns = app.NatsInfra.Ns
	}

	return service.HewServices(app.Db, ns, app.Redis, app.Log, app.Config)
}

func (app *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		app.NatsInfra.Close()
	}()

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Access"},
		MaxAge:          12 * time.Hour,
	}))

	services, err := app.Services()
	if err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	app.Autostart(ctx, services)

	{
		h := delivery.InitHandler(services, app.Db, app.Config, app.Log)

		h.InitAPI(r)
	}

	eChan := make(chan error)
	interrupt := make(chan os.Signal, 1)

	fmt.Println("checkout api is starting on", app.Config.Api.Ipv4)

	go func() {
		err := r.Run(app.Config.Api.Ipv4)
		if err != nil {
			eChan <- fmt.Errorf("listen and serve: %w", err)
		}
	}()

	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-eChan:
		app.Log.TemplHTTPError("app fatal error", app.Config.Api.Ipv4, err)
		return err
	case <-interrupt:
		return nil
	}
}

// start autostart services
func (app *App) Autostart(ctx context.Context, services *service.Services) {
	fmt.Println("Autostart: run expire stale sessions")
	go app.runExpire(ctx, services.Sessions, app.Config.Payments.ExpireEvery.Duration)

	fmt.Println("Autostart: start process events")
	services.OutboxEvents.StartProcessEvents(ctx)
}

// lazy expiry already covers reads, this keeps the table honest for
// anything that queries it directly
func (app *App) runExpire(ctx context.Context, sessions service.Sessions, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.ExpireStale(ctx)
			if err != nil {
				app.Log.Error("expire stale sessions error: "+err.Error(), logger.LS_SESSIONS, false)
				continue
			}
			if n > 0 {
				app.Log.Info("stale sessions expired", logger.LS_SESSIONS, false, "count", n)
			}
		}
	}
}
