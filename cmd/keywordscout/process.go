package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	kwconfig "github.com/keywordscout/keywordscout/internal/config"
	"github.com/keywordscout/keywordscout/internal/domain"
	kwlog "github.com/keywordscout/keywordscout/internal/log"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/pipeline"
)

// candidateInput is the on-disk shape `process` reads: a JSON array of
// raw keyword candidates, matching spec.md §6's in-process batch API
// request shape carried over the filesystem for scripted/CI use.
type candidateInput struct {
	Term        string `json:"term"`
	Volume      int    `json:"volume"`
	CPC         float64 `json:"cpc"`
	Competition float64 `json:"competition"`
	Intent      string  `json:"intent"`
	NicheHint   string  `json:"niche_hint"`
}

type keywordResult struct {
	Term                string  `json:"term"`
	Significance        float64 `json:"significance"`
	Complexity          float64 `json:"complexity"`
	ComplexityBand      string  `json:"complexity_band"`
	Competitive         float64 `json:"competitive"`
	CompetitivenessBand string  `json:"competitiveness_band"`
	Trend               float64 `json:"trend"`
	TrendDirection      string  `json:"trend_direction"`
	Composite           float64 `json:"composite"`
	CompositeBand       string  `json:"composite_band"`
	Confidence          float64 `json:"confidence"`
	ValidationStatus    string  `json:"validation_status"`
	Err                 string  `json:"err,omitempty"`
}

type processReport struct {
	Strategy      string          `json:"strategy"`
	Accepted      []keywordResult `json:"accepted"`
	Rejected      []keywordResult `json:"rejected"`
	Errors        int             `json:"errors"`
	TotalDuration string          `json:"total_duration"`
}

func newProcessCmd() *cobra.Command {
	var inputPath, outputPath, strategy, nicheHint string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run a batch of keyword candidates through the scoring pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, inputPath, outputPath, strategy, nicheHint)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON array of candidate keywords (required)")
	cmd.Flags().StringVar(&outputPath, "output", "", "path to write the report JSON (defaults to stdout)")
	cmd.Flags().StringVar(&strategy, "strategy", "adaptive", "cascade|parallel|adaptive")
	cmd.Flags().StringVar(&nicheHint, "niche", "", "niche hint applied to every candidate lacking its own niche_hint")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runProcess(cmd *cobra.Command, inputPath, outputPath, strategy, nicheHint string) error {
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

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return configErr(fmt.Errorf("reading input file: %w", err))
	}
	var candidates []candidateInput
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return configErr(fmt.Errorf("parsing input file: %w", err))
	}
	if len(candidates) == 0 {
		return insufficientErr(fmt.Errorf("input file contains no candidates"))
	}

	inputs := make([]pipeline.Input, 0, len(candidates))
	for _, c := range candidates {
		hint := domain.Niche(c.NicheHint)
		if hint == "" {
			hint = domain.Niche(nicheHint)
		}
		inputs = append(inputs, pipeline.Input{
			Term:        c.Term,
			Volume:      c.Volume,
			CPC:         c.CPC,
			Competition: c.Competition,
			Intent:      domain.Intent(c.Intent),
			NicheHint:   hint,
		})
	}

	deps := buildDependencies(cfg, table)
	orchestrator := pipeline.NewOrchestrator(deps, cfg.ToPipelineConfig())

	quiet := outputPath != "" || !ttyStderr()
	bar := kwlog.NewBatchProgress(kwlog.ColorableStderr(), "processing", len(inputs), quiet)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ToPipelineConfig().BatchTimeout)
	defer cancel()

	report := orchestrator.Run(ctx, inputs, pipeline.Strategy(strategy), nil, func(completed, total int, outcome pipeline.Outcome) {
		bar.Update(completed, total)
	})
	bar.Finish()

	out := processReport{Strategy: string(report.Strategy), Errors: report.Errors, TotalDuration: report.TotalDuration.String()}
	for _, o := range report.Outcomes {
		r := toKeywordResult(o)
		if o.Err == nil && o.Validation.Status == domain.StatusApproved {
			out.Accepted = append(out.Accepted, r)
		} else {
			out.Rejected = append(out.Rejected, r)
		}
	}

	return writeReport(out, outputPath)
}

func toKeywordResult(o pipeline.Outcome) keywordResult {
	r := keywordResult{Term: o.Input.Term}
	if o.Err != nil {
		r.Err = o.Err.Error()
		return r
	}
	e := o.Enriched
	r.Significance = e.Significance
	r.Complexity = e.Complexity
	r.ComplexityBand = string(e.ComplexityBand)
	r.Competitive = e.Competitive
	r.CompetitivenessBand = string(e.CompetitivenessBand)
	r.Trend = e.Trend
	r.TrendDirection = string(e.TrendDirection)
	r.Composite = e.Composite
	r.CompositeBand = string(e.CompositeBand)
	r.Confidence = e.Confidence
	r.ValidationStatus = string(o.Validation.Status)
	return r
}

func writeReport(report processReport, outputPath string) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return internalErr(fmt.Errorf("encoding report: %w", err))
	}

	if outputPath == "" {
		fmt.Println(string(encoded))
		return nil
	}

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return internalErr(fmt.Errorf("writing report: %w", err))
	}
	log.Info().Str("path", outputPath).Int("accepted", len(report.Accepted)).Int("rejected", len(report.Rejected)).Msg("report written")
	return nil
}
