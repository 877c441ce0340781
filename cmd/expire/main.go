package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardquote/internal/app"
	"guardquote/internal/config"
	"guardquote/internal/pkg/logger"
	"guardquote/internal/repository"
	ucquote "guardquote/internal/usecase/quote"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const lockKey = "quotes:expire:lock"

// expire moves open quotes that have not been touched for a while to expired.
// It runs once and exits; scheduling is left to cron or a CronJob.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "expire: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		olderThan time.Duration
		limit     int
		dryRun    bool
		timeout   time.Duration
	)

	flagSet := pflag.NewFlagSet("expire", pflag.ContinueOnError)
	flagSet.DurationVar(&olderThan, "older-than", 30*24*time.Hour, "expire open quotes not updated within this window")
	flagSet.IntVar(&limit, "limit", 100, "maximum number of quotes to expire in one run (max 1000)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "only report how many quotes would be expired")
	flagSet.DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the run")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	c, err := app.NewContainer(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cutoff := time.Now().Add(-olderThan)
	quotes := repository.NewPostgresQuoteRepository(c.DB)

	if dryRun {
		ids, err := quotes.ListExpirable(ctx, cutoff, limit)
		if err != nil {
			return fmt.Errorf("list expirable quotes: %w", err)
		}
		log.Info("dry run", zap.Time("cutoff", cutoff), zap.Int("would_expire", len(ids)))
		return nil
	}

	host, _ := os.Hostname()
	release, ok := acquireRunLock(ctx, c.Cache, lockKey, host+"/"+uuid.NewString(), timeout, log)
	if !ok {
		log.Info("another expire run holds the lock, skipping")
		return nil
	}
	defer release()

	svc := ucquote.NewService(quotes, repository.NewPostgresUserRepository(c.DB), c.Cache, log.Named("quotes"), ucquote.Options{
		Policy:       cfg.Quotes.AccessPolicy,
		ListCacheTTL: cfg.Quotes.ListCacheTTL,
	})

	res, err := svc.ExpireStale(ctx, cutoff, limit)
	if err != nil {
		return fmt.Errorf("expire stale quotes (expired %d of %d): %w", res.Expired, res.Scanned, err)
	}
	fmt.Printf("scanned=%d expired=%d skipped=%d\n", res.Scanned, res.Expired, res.Skipped)
	return nil
}
