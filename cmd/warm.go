package main

import (
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/edgar-facts/internal/service"
)

var warmConcurrency int

var warmCmd = &cobra.Command{
	Use:   "warm <ticker> [ticker...]",
	Short: "Pre-warm the facts cache for a list of tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, closeStore, err := initService(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(warmConcurrency)

		var succeeded, failed atomic.Int64

		for _, ticker := range args {
			g.Go(func() error {
				log := zap.L().With(zap.String("ticker", ticker))
				if _, err := svc.GetCompanyFacts(gctx, ticker, service.Query{
					Granularity: cfg.Normalize.Period,
					Limit:       cfg.Normalize.Limit,
				}); err != nil {
					failed.Add(1)
					log.Warn("warm failed", zap.Error(err))
					return nil // keep warming the rest
				}
				succeeded.Add(1)
				log.Info("warmed")
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("warm complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func init() {
	warmCmd.Flags().IntVar(&warmConcurrency, "concurrency", 3, "max concurrent companies")
	rootCmd.AddCommand(warmCmd)
}
