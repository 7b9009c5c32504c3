package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/ludoteca-console/internal/backend"
	"github.com/iliyamo/ludoteca-console/internal/config"
	"github.com/iliyamo/ludoteca-console/internal/handler"
	"github.com/iliyamo/ludoteca-console/internal/metrics"
	"github.com/iliyamo/ludoteca-console/internal/middleware"
	"github.com/iliyamo/ludoteca-console/internal/notify"
	"github.com/iliyamo/ludoteca-console/internal/queue"
	"github.com/iliyamo/ludoteca-console/internal/router"
	"github.com/iliyamo/ludoteca-console/internal/service"
	"github.com/iliyamo/ludoteca-console/internal/tracker"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	api, err := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	if err != nil {
		log.Error("invalid backend url", "err", err)
		os.Exit(1)
	}

	reg := metrics.New()
	board := tracker.NewBoard()
	service.WatchPages(board)
	stopGauges := reg.TrackBoard(board)
	defer stopGauges()
	notes := notify.New()

	opts := service.Options{
		Backend:        api,
		Logger:         log,
		Metrics:        reg,
		Observer:       board,
		Notifier:       notes,
		RefreshTimeout: cfg.Cache.RefreshTimeout,
	}
	if cfg.LoanEventsEnabled {
		pub := queue.NewPublisher(cfg.RabbitURL, log)
		defer pub.Close()
		opts.Events = pub
	}
	svc := service.New(opts)
	defer svc.Close()

	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
			defer rdb.Close()
			limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit)
		} else {
			log.Warn("redis unavailable, rate limiting disabled", "addr", cfg.Redis.Addr)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log))
	router.RegisterRoutes(e, reg.Handler())
	router.RegisterConsole(e,
		handler.NewConsoleHandler(svc),
		handler.NewStatusHandler(board, notes),
		middleware.RateLimit(cfg.RateLimit, limiter),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.Warm(ctx, cfg.Cache.Warm...)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "backend", cfg.BackendURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
