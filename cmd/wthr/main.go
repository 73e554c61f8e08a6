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

	"github.com/swelljoe/wthr-screen/internal/config"
	"github.com/swelljoe/wthr-screen/internal/db"
	"github.com/swelljoe/wthr-screen/internal/handlers"
	"github.com/swelljoe/wthr-screen/internal/metrics"
	"github.com/swelljoe/wthr-screen/internal/screen"
	"github.com/swelljoe/wthr-screen/internal/weather"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.WeatherAPIKey == "" {
		logger.Warn("WEATHER_API_KEY is not set, provider requests will be rejected")
	}

	// Initialize database connection
	var store screen.CityStore
	var database handlers.Database
	conn, err := db.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Warn("database unavailable, last city will not be remembered", "path", cfg.DatabasePath, "error", err)
	} else {
		defer conn.Close()
		store, database = conn, conn
		logger.Info("database connected", "path", cfg.DatabasePath)
	}

	m := metrics.New()
	client := weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.UserAgent, cfg.HTTPTimeout)

	scr := screen.New(client, client, store, m, logger, screen.Options{
		DefaultCity:     cfg.DefaultCity,
		ForecastDays:    cfg.ForecastDays,
		SearchDebounce:  cfg.SearchDebounce,
		MinSearchLength: cfg.MinSearchLength,
	})
	defer scr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mount in the background so the server can show the spinner meanwhile.
	go func() {
		if err := scr.Mount(ctx); err != nil {
			logger.Error("initial forecast failed", "error", err)
		}
	}()

	h := handlers.New(database, scr, m.Handler(), logger)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Router(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
