package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/ingestion"
	"github.com/poiesic/concierge/refresh"
	"github.com/poiesic/concierge/upstream"
)

func syncCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	config := &refresh.Config{
		PageSize:       c.Int("page-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Resume:         !c.Bool("restart"),
	}
	if config.PageSize <= 0 {
		return fmt.Errorf("page-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	client, err := newUpstreamClient(c)
	if err != nil {
		return err
	}

	app, err := concierge.New(ctx, c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer app.Close()

	var opts []ingestion.Option
	if c.Bool("rankings") {
		opts = append(opts, ingestion.WithRankingSource(client))
	}
	refresher, release, err := app.NewRefresher(client, config, os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Upstream: %s\n", c.String("upstream-url"))
	fmt.Fprintln(os.Stderr)

	stats, err := refresher.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	slog.Info("sync complete",
		"pages", stats.Pages,
		"residences", stats.Residences,
		"resumed", stats.Resumed,
		"elapsed", stats.Elapsed)
	return nil
}

func newUpstreamClient(c *cli.Context) (*upstream.Client, error) {
	opts := []upstream.Option{upstream.WithLogger(slog.Default())}
	if token := c.String("upstream-token"); token != "" {
		opts = append(opts, upstream.WithToken(token))
	}
	if rps := c.Float64("rate-limit"); rps > 0 {
		opts = append(opts, upstream.WithRateLimit(rps, max(int(rps), 1)))
	}
	client, err := upstream.NewClient(c.String("upstream-url"), opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream configuration: %w", err)
	}
	return client, nil
}
