package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hpfinder-cli/internal/model"
	"github.com/sells-group/hpfinder-cli/internal/pipeline"
)

var (
	batchCSV   string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve homepages for all companies in a CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		companies, err := pipeline.ParseCompanyCSV(batchCSV)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(companies) > batchLimit {
			companies = companies[:batchLimit]
		}

		env, err := initPipeline(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("batch: starting", zap.Int("companies", len(companies)))
		decisions, err := env.Coordinator.Run(ctx, companies)
		if err != nil {
			return err
		}

		counts := map[model.Disposition]int{}
		failed := 0
		for _, d := range decisions {
			counts[d.Disposition]++
			if d.State == model.StateFailed {
				failed++
			}
		}

		fmt.Printf("processed %d companies\n", len(decisions))
		fmt.Printf("  auto_adopt:    %d\n", counts[model.DispositionAutoAdopt])
		fmt.Printf("  needs_review:  %d\n", counts[model.DispositionNeedsReview])
		fmt.Printf("  manual_review: %d\n", counts[model.DispositionManualReview])
		fmt.Printf("  no_result:     %d\n", counts[model.DispositionNoResult])
		fmt.Printf("  failed:        %d\n", failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "path to company CSV")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max companies to process (0 = all)")
	batchCmd.MarkFlagRequired("csv") //nolint:errcheck
	rootCmd.AddCommand(batchCmd)
}
