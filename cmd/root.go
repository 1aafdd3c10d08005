package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-facts/internal/cache"
	"github.com/sells-group/edgar-facts/internal/config"
	"github.com/sells-group/edgar-facts/internal/edgar"
	"github.com/sells-group/edgar-facts/internal/facts"
	"github.com/sells-group/edgar-facts/internal/fetcher"
	"github.com/sells-group/edgar-facts/internal/service"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "edgar-facts",
	Short: "Company financial facts API over SEC EDGAR",
	Long:  "Fetches XBRL company facts from SEC EDGAR, normalizes them into concept/period/fact tables, and serves them over HTTP with freshness-aware caching.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initService builds the provider, cache store, and facts service from
// configuration. The returned closer releases the cache backend.
func initService(ctx context.Context) (*service.Service, func(), error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Edgar.UserAgent,
		Timeout:    time.Duration(cfg.Edgar.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Edgar.MaxRetries,
	})
	client := edgar.NewClient(f, edgar.WithBaseURLs(cfg.Edgar.DataBaseURL, cfg.Edgar.WWWBaseURL))
	provider := edgar.NewProvider(client)

	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Cache.Backend == "" {
		zap.L().Info("no cache backend configured, caching disabled")
	}

	opts := service.Options{
		AlwaysRecompute: cfg.Cache.AlwaysRecompute,
	}
	if cfg.Normalize.TaxonomyPath != "" {
		tax, err := facts.LoadTaxonomy(cfg.Normalize.TaxonomyPath)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		opts.AllowList = tax.Tags
		opts.SampleTags = tax.SampleTags
		zap.L().Info("loaded tag taxonomy",
			zap.String("path", cfg.Normalize.TaxonomyPath),
			zap.Int("tags", len(tax.Tags)))
	}

	svc := service.New(provider, store, opts)
	return svc, func() { _ = store.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
