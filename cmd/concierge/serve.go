package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/ai"
	"github.com/poiesic/concierge/events"
	"github.com/poiesic/concierge/relaxation"
	"github.com/poiesic/concierge/server"
	"github.com/poiesic/concierge/storage"
	"github.com/poiesic/concierge/storage/redis"
	"github.com/poiesic/concierge/storage/sqlite"
)

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	bus := events.NewBus(events.WithLogger(logger))
	defer bus.Close()
	if err := events.LogEvents(ctx, bus, logger); err != nil {
		return err
	}

	opts := []concierge.Option{
		concierge.WithLogger(logger),
		concierge.WithPublisher(bus),
		concierge.WithIdleTimeout(c.Duration("idle-timeout")),
		concierge.WithQueryTimeout(c.Duration("query-timeout")),
	}

	aiConfig, err := aiConfigFrom(c)
	if err != nil {
		return err
	}
	if aiConfig != nil {
		opts = append(opts, concierge.WithAIConfig(aiConfig))
	}

	if addr := c.String("redis-addr"); addr != "" {
		sessions, err := redis.Open(ctx, addr, c.String("redis-password"), c.Int("redis-db"), redis.WithLogger(logger))
		if err != nil {
			return err
		}
		defer sessions.Close()
		opts = append(opts, concierge.WithSessionRepository(sessions))
	}

	var catalog storage.CatalogRepository
	switch {
	case c.String("upstream-url") != "":
		client, err := newUpstreamClient(c)
		if err != nil {
			return err
		}
		opts = append(opts, concierge.WithQuerier(client), concierge.WithVocabularySource(client))
	case c.String("sqlite") != "":
		sq, err := sqlite.OpenCatalog(c.String("sqlite"), sqlite.WithLogger(logger))
		if err != nil {
			return err
		}
		defer sq.Close()
		catalog = sq
		opts = append(opts, concierge.WithQuerier(relaxation.QuerierFunc(sq.QueryResidences)))
	}

	app, err := concierge.New(ctx, c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer app.Close()
	if catalog == nil {
		catalog = app.Catalog()
	}

	manager := app.Sessions()
	go manager.RunJanitor(ctx, c.Duration("janitor-interval"))

	srv := server.New(manager,
		server.WithCatalog(catalog),
		server.WithRetry(c.Int("query-retries"), 250*time.Millisecond),
		server.WithLogger(logger),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	if err := srv.Listen(c.String("addr")); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// aiConfigFrom returns the model configuration, or nil when --ai is off.
func aiConfigFrom(c *cli.Context) (*ai.Config, error) {
	if !c.Bool("ai") {
		return nil, nil
	}
	cfg := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithModel(c.String("ai-model")),
		ai.WithToken(c.String("ai-token")),
		ai.WithTimeout(c.Duration("ai-timeout")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}
