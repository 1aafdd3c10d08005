package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/edgar-facts/internal/service"
)

var (
	fetchPeriod string
	fetchLimit  int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <ticker|cik>",
	Short: "Fetch and normalize facts for a single company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, closeStore, err := initService(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		resp, err := svc.GetCompanyFacts(ctx, args[0], service.Query{
			Granularity: fetchPeriod,
			Limit:       fetchLimit,
		})
		if err != nil {
			return eris.Wrapf(err, "fetch %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPeriod, "period", "quarterly", "period filter: annual or quarterly")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 4, "max periods per concept (0 = no cap)")
	rootCmd.AddCommand(fetchCmd)
}
