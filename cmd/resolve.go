package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

var (
	resolveID       string
	resolveName     string
	resolveIndustry string
	resolveRegion   string
	resolveDryRun   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the official homepage for a single company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, !resolveDryRun)
		if err != nil {
			return err
		}
		defer env.Close()

		id := resolveID
		if id == "" {
			id = uuid.New().String()
		}

		d := env.Coordinator.Resolve(ctx, model.Company{
			ID:       id,
			Name:     resolveName,
			Industry: resolveIndustry,
			Region:   resolveRegion,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveID, "id", "", "company id (generated if empty)")
	resolveCmd.Flags().StringVar(&resolveName, "name", "", "company display name")
	resolveCmd.Flags().StringVar(&resolveIndustry, "industry", "", "industry label")
	resolveCmd.Flags().StringVar(&resolveRegion, "region", "", "region or prefecture")
	resolveCmd.MarkFlagRequired("name") //nolint:errcheck
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "skip writing the decision to the store")
	rootCmd.AddCommand(resolveCmd)
}
