package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	kwconfig "github.com/keywordscout/keywordscout/internal/config"
	"github.com/keywordscout/keywordscout/internal/logstore"
)

// newLogsCmd wraps StructuredLogger's QualityReport for operators who
// need it without the HTTP boundary running (SPEC_FULL.md §6's
// supplemented "logs report" CLI surface over spec.md's HTTP-only
// /audit/report).
func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the structured validation/adjustment log",
	}
	cmd.AddCommand(newLogsReportCmd())
	return cmd
}

func newLogsReportCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a QualityReport over a time window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogsReport(cmd, from, to)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "RFC3339 start of window (defaults to unbounded)")
	cmd.Flags().StringVar(&to, "to", "", "RFC3339 end of window (defaults to now)")

	return cmd
}

func runLogsReport(cmd *cobra.Command, from, to string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := kwconfig.Load(cfgPath)
	if err != nil {
		return configErr(err)
	}

	filter := logstore.QueryFilter{}
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return configErr(fmt.Errorf("parsing --from: %w", err))
		}
		filter.From = t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return configErr(fmt.Errorf("parsing --to: %w", err))
		}
		filter.To = t
	}

	logger := logstore.NewLogger(cfg.ToLoggerConfig())
	report, err := logger.QualityReport(context.Background(), filter)
	if err != nil {
		return internalErr(fmt.Errorf("building quality report: %w", err))
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return internalErr(fmt.Errorf("encoding report: %w", err))
	}
	fmt.Fprintln(os.Stdout, string(encoded))
	return nil
}
