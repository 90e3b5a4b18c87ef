// Package config loads KeywordScout's top-level JSON configuration file
// (spec.md §6: pipeline/niches/logger/optimizer/validator keys), falling
// back to documented defaults for missing keys and logging — never
// failing — on unrecognized ones. Grounded on
// cryptorun/internal/artifacts/manifest/io.go's load pattern and
// cryptorun/internal/config/providers.go's missing-key-falls-back-to-default
// posture.
package config

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
	"github.com/keywordscout/keywordscout/internal/logstore"
	"github.com/keywordscout/keywordscout/internal/pipeline"
	"github.com/keywordscout/keywordscout/internal/tune"
)

// PipelineConfig mirrors internal/pipeline.Config with JSON tags.
type PipelineConfig struct {
	Workers       int     `json:"workers"`
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	BatchTimeoutMS int    `json:"batch_timeout_ms"`
}

// LoggerConfig mirrors internal/logstore.Config with JSON tags.
type LoggerConfig struct {
	Dir           string `json:"dir"`
	RetentionDays int    `json:"retention_days"`
}

// OptimizerConfig mirrors internal/tune.Config's top-level knobs.
type OptimizerConfig struct {
	WindowDays int    `json:"window_days"`
	ModelDir   string `json:"model_dir"`
}

// ValidatorConfig holds the validator's tunable constants.
type ValidatorConfig struct {
	ApprovalFloor float64 `json:"approval_floor"`
	PendingFloor  float64 `json:"pending_floor"`
}

// Config is the top-level shape of the JSON config file (spec.md §6).
// NichesPath points at the yaml bundle overlay (SPEC_FULL.md §2); Niches
// itself is not represented here since niche.LoadTable reads its own file.
type Config struct {
	Pipeline   PipelineConfig  `json:"pipeline"`
	NichesPath string          `json:"niches_path"`
	Logger     LoggerConfig    `json:"logger"`
	Optimizer  OptimizerConfig `json:"optimizer"`
	Validator  ValidatorConfig `json:"validator"`
}

// knownTopLevelKeys is the set Load warns about deviations from (spec.md
// §6: "Unknown keys are warnings").
var knownTopLevelKeys = map[string]bool{
	"pipeline": true, "niches_path": true, "logger": true, "optimizer": true, "validator": true,
}

// Default returns Config populated entirely from each owning package's
// documented defaults.
func Default() Config {
	pc := pipeline.DefaultConfig()
	lc := logstore.DefaultConfig()
	oc := tune.DefaultConfig()
	return Config{
		Pipeline:   PipelineConfig{Workers: pc.Workers, RatePerSecond: pc.RatePerSecond, Burst: pc.Burst, BatchTimeoutMS: int(pc.BatchTimeout / time.Millisecond)},
		NichesPath: "",
		Logger:     LoggerConfig{Dir: lc.Dir, RetentionDays: lc.RetentionDays},
		Optimizer:  OptimizerConfig{WindowDays: oc.WindowDays, ModelDir: oc.ModelDir},
		Validator:  ValidatorConfig{ApprovalFloor: 0.7, PendingFloor: 0.5},
	}
}

// Load reads path, overlaying Default() with whatever keys are present.
// A missing file is not an error (spec.md §7's ConfigError is reserved for
// malformed content, not absence): Load returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, kwerrors.Config("config_read_failed", err.Error())
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Config{}, kwerrors.Wrap(kwerrors.KindConfig, "config_parse_failed", "invalid top-level config json", err)
	}
	for key := range generic {
		if !knownTopLevelKeys[key] {
			log.Warn().Str("key", key).Msg("unrecognized top-level config key, ignoring")
		}
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, kwerrors.Wrap(kwerrors.KindConfig, "config_decode_failed", "decoding config onto defaults", err)
	}

	return cfg, nil
}

// ToPipelineConfig converts the JSON shape to pipeline.Config.
func (c Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Workers:       c.Pipeline.Workers,
		RatePerSecond: c.Pipeline.RatePerSecond,
		Burst:         c.Pipeline.Burst,
		BatchTimeout:  time.Duration(c.Pipeline.BatchTimeoutMS) * time.Millisecond,
	}
}

// ToLoggerConfig converts the JSON shape to logstore.Config.
func (c Config) ToLoggerConfig() logstore.Config {
	return logstore.Config{Dir: c.Logger.Dir, RetentionDays: c.Logger.RetentionDays}
}

// Watcher polls a config file's mtime and reloads on change; after Poll
// reports a reload, the caller reads the new Config through Current —
// this is SPEC_FULL.md §6's supplemented "config hot-reload" feature;
// polled rather than fsnotify-driven because no pack repo wires fsnotify
// for a concern this small.
type Watcher struct {
	mu       sync.Mutex
	path     string
	lastMod  time.Time
	current  Config
	interval time.Duration
}

// NewWatcher constructs a Watcher already holding the initially loaded cfg.
func NewWatcher(path string, initial Config, interval time.Duration) *Watcher {
	w := &Watcher{path: path, current: initial, interval: interval}
	if path != "" {
		if info, err := os.Stat(path); err == nil {
			w.lastMod = info.ModTime()
		}
	}
	return w
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Poll checks the file's mtime and reloads if it advanced, returning
// whether a reload happened. Safe to call at every batch boundary.
func (w *Watcher) Poll() (bool, error) {
	if w.path == "" {
		return false, nil
	}
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, kwerrors.Config("config_stat_failed", err.Error())
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMod)
	w.mu.Unlock()
	if !changed {
		return false, nil
	}

	reloaded, err := Load(w.path)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	w.current = reloaded
	w.lastMod = info.ModTime()
	w.mu.Unlock()

	log.Info().Str("path", w.path).Msg("config file reloaded")
	return true, nil
}
