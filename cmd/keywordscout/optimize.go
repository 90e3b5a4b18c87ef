package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	kwconfig "github.com/keywordscout/keywordscout/internal/config"
	"github.com/keywordscout/keywordscout/internal/domain"
	"github.com/keywordscout/keywordscout/internal/logstore"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/tune"
)

func newOptimizeCmd() *cobra.Command {
	var nicheName string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run one ParameterOptimizer cycle for a niche",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, nicheName)
		},
	}
	cmd.Flags().StringVar(&nicheName, "niche", "", "niche to optimize (required)")
	_ = cmd.MarkFlagRequired("niche")

	return cmd
}

func runOptimize(cmd *cobra.Command, nicheName string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	nichesPath, _ := cmd.Flags().GetString("niches")

	cfg, err := kwconfig.Load(cfgPath)
	if err != nil {
		return configErr(err)
	}
	table, err := niche.LoadTable(nichesPath)
	if err != nil {
		return configErr(err)
	}

	logger := logstore.NewLogger(cfg.ToLoggerConfig())
	resolver := niche.NewResolver(table, nil)
	tuneCfg := tune.DefaultConfig()
	tuneCfg.WindowDays = cfg.Optimizer.WindowDays
	tuneCfg.ModelDir = cfg.Optimizer.ModelDir

	optimizer := tune.NewOptimizer(tuneCfg, logger, logger, resolver)

	result, err := optimizer.Run(context.Background(), domain.Niche(nicheName))
	if err != nil {
		return internalErr(fmt.Errorf("optimizer cycle failed: %w", err))
	}

	log.Info().
		Str("niche", nicheName).
		Str("status", string(result.Status)).
		Float64("r_squared", result.RSquared).
		Float64("mse", result.MSE).
		Float64("confidence", result.Record.Confidence).
		Str("tracing_id", result.Record.TracingID).
		Msg("optimizer cycle complete")

	if result.Status == domain.AdjustmentInsufficientData {
		return insufficientErr(fmt.Errorf("insufficient training data for niche %q", nicheName))
	}
	return nil
}
