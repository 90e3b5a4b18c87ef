// Command keywordscout is the CLI entrypoint: `process` runs a batch
// through the pipeline, `optimize` triggers a ParameterOptimizer cycle,
// `serve` starts the HTTP boundary, `logs report` wraps StructuredLogger's
// reports for operators without the HTTP shell running. Grounded on
// cryptorun/cmd/cryptorun/main.go's root-command/TTY-detection structure,
// generalized from cryptorun's menu-first UX to KeywordScout's
// scripted-first one (no interactive menu is specified by spec.md §6).
package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	kwlog "github.com/keywordscout/keywordscout/internal/log"
)

const (
	appName = "keywordscout"
	version = "v1.0.0"

	exitSuccess       = 0
	exitConfigError   = 1
	exitInsufficient  = 2
	exitInternalError = 3
)

func main() {
	configureLogger()

	root := &cobra.Command{
		Use:     appName,
		Short:   "Scores and filters long-tail SEO keyword candidates",
		Version: version,
	}

	root.PersistentFlags().String("config", "", "path to the JSON config file (spec.md §6)")
	root.PersistentFlags().String("niches", "", "path to a yaml niche-bundle overlay (empty uses the built-in niche defaults)")

	root.AddCommand(newProcessCmd())
	root.AddCommand(newOptimizeCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newLogsCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(exitCodeFor(err))
	}
}

// configureLogger splits console/JSON output by TTY the way cryptorun's
// main.go does, substituting mattn/go-isatty + go-colorable for the
// teacher's golang.org/x/term (SPEC_FULL.md §2's documented substitution).
func configureLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: kwlog.ColorableStderr(), TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// exitCodeFor maps a returned error to spec.md §6's exit codes. Commands
// that want a specific non-default code return an error carrying that
// code (see exit.go); any other error that bubbles up through cobra maps
// to the internal-error code.
func exitCodeFor(err error) int {
	if ce, ok := asExitCoder(err); ok {
		return ce.ExitCode()
	}
	return exitInternalError
}

// exitCoder lets a subcommand's returned error request a specific exit
// code (config vs. insufficient-data vs. internal) without main needing
// to know every error type.
type exitCoder interface {
	ExitCode() int
}

func asExitCoder(err error) (exitCoder, bool) {
	ec, ok := err.(exitCoder)
	return ec, ok
}

// ttyStderr reports whether stderr is a terminal, gating the default
// interactive progress bar vs. scripted/CI output.
func ttyStderr() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
