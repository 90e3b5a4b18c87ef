// Package logstore implements StructuredLogger (spec.md §4.11): an
// append-only, day-rotated JSONL event log with a query API, quality/trend
// reports, and a retention sweep.
package logstore

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/keywordscout/keywordscout/internal/domain"
	kwerrors "github.com/keywordscout/keywordscout/internal/errors"
)

const dayLayout = "2006-01-02"

// Config tunes file layout and retention.
type Config struct {
	Dir            string
	RetentionDays  int
}

// DefaultConfig matches spec.md §9's resolved 30-day retention default.
func DefaultConfig() Config {
	return Config{Dir: "data/logs", RetentionDays: 30}
}

// Logger appends LogEntry records to day-rotated JSONL files and answers
// queries/reports over them. Writes are append-only: a Logger never
// rewrites or reorders a prior day's file, only the retention sweep
// removes whole files past the window.
type Logger struct {
	cfg Config
	mu  sync.Mutex
}

func NewLogger(cfg Config) *Logger {
	return &Logger{cfg: cfg}
}

// NewTracingID generates a tracing id of the form
// <prefix>_<yyyyMMddHHmmssSSS>_<4-digit hash>, unique enough per event to
// correlate a keyword's path across pipeline stages without a central
// sequence counter.
func NewTracingID(prefix string, at time.Time) string {
	stamp := at.Format("20060102150405") + fmt.Sprintf("%03d", at.Nanosecond()/1e6)
	hash := sha1.Sum([]byte(prefix + stamp + fmt.Sprint(at.UnixNano())))
	return fmt.Sprintf("%s_%s_%s", prefix, stamp, hex.EncodeToString(hash[:])[:4])
}

func (l *Logger) pathFor(day time.Time) string {
	return filepath.Join(l.cfg.Dir, day.Format(dayLayout)+".jsonl")
}

// Append writes entry to the current day's file, creating the directory
// and file as needed. Append is safe for concurrent callers.
func (l *Logger) Append(entry domain.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	if err := os.MkdirAll(l.cfg.Dir, 0o755); err != nil {
		return kwerrors.Persistence("log_dir_create_failed", "creating log directory", err)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return kwerrors.Persistence("log_entry_marshal_failed", "marshaling log entry", err)
	}

	f, err := os.OpenFile(l.pathFor(entry.At), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return kwerrors.Persistence("log_file_open_failed", "opening day log file", err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return kwerrors.Persistence("log_file_write_failed", "appending log entry", err)
	}
	return nil
}

// QueryFilter narrows Query results.
type QueryFilter struct {
	From    time.Time
	To      time.Time
	Kind    domain.LogKind
	Level   domain.LogLevel
	Keyword string
}

// QueryResult carries matched entries plus a count of lines skipped for
// being unparseable JSON — spec.md §4.11 requires surfacing this rather
// than silently dropping corrupt lines.
type QueryResult struct {
	Entries      []domain.LogEntry
	InvalidLines int
}

// Query scans every day file in [From,To] (inclusive, both optional) and
// returns entries matching the filter's non-zero fields.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) (QueryResult, error) {
	days, err := l.daysInRange(filter.From, filter.To)
	if err != nil {
		return QueryResult{}, err
	}

	var result QueryResult
	for _, day := range days {
		if ctx.Err() != nil {
			return result, kwerrors.Timeout("query_canceled", ctx.Err().Error())
		}
		entries, invalid, err := l.readDay(day)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return result, err
		}
		result.InvalidLines += invalid
		for _, e := range entries {
			if matches(e, filter) {
				result.Entries = append(result.Entries, e)
			}
		}
	}

	sort.Slice(result.Entries, func(i, j int) bool { return result.Entries[i].At.Before(result.Entries[j].At) })
	return result, nil
}

func matches(e domain.LogEntry, f QueryFilter) bool {
	if !f.From.IsZero() && e.At.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.At.After(f.To) {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.Keyword != "" && !strings.EqualFold(e.Keyword, f.Keyword) {
		return false
	}
	return true
}

func (l *Logger) readDay(day time.Time) ([]domain.LogEntry, int, error) {
	f, err := os.Open(l.pathFor(day))
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var entries []domain.LogEntry
	var invalid int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			invalid++
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, invalid, kwerrors.Persistence("log_file_read_failed", "scanning day log file", err)
	}
	return entries, invalid, nil
}

func (l *Logger) daysInRange(from, to time.Time) ([]time.Time, error) {
	if from.IsZero() && to.IsZero() {
		entries, err := os.ReadDir(l.cfg.Dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, kwerrors.Persistence("log_dir_read_failed", "listing log directory", err)
		}
		var days []time.Time
		for _, e := range entries {
			name := strings.TrimSuffix(e.Name(), ".jsonl")
			if day, err := time.Parse(dayLayout, name); err == nil {
				days = append(days, day)
			}
		}
		return days, nil
	}

	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		all, err := l.daysInRange(time.Time{}, time.Time{})
		if err != nil {
			return nil, err
		}
		var days []time.Time
		for _, d := range all {
			if d.Format(dayLayout) <= to.Format(dayLayout) {
				days = append(days, d)
			}
		}
		return days, nil
	}

	var days []time.Time
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for d := start; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// Sweep removes day files older than cutoff, returning the number of
// files removed.
func (l *Logger) Sweep(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(l.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, kwerrors.Persistence("log_dir_read_failed", "listing log directory for sweep", err)
	}

	removed := 0
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".jsonl")
		day, err := time.Parse(dayLayout, name)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := os.Remove(filepath.Join(l.cfg.Dir, e.Name())); err != nil {
				return removed, kwerrors.Persistence("log_file_remove_failed", "removing expired log file", err)
			}
			removed++
		}
	}
	return removed, nil
}

// SweepNow applies Sweep using the logger's configured retention window
// relative to now.
func (l *Logger) SweepNow() (int, error) {
	cutoff := time.Now().AddDate(0, 0, -l.cfg.RetentionDays)
	return l.Sweep(cutoff)
}
