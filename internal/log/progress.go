// Package log provides TTY-aware progress reporting for long-running
// batches, layered over the Orchestrator's ProgressFunc callback (spec.md
// §4.9). Grounded on cryptorun/internal/log/progress.go's
// ProgressIndicator/Spinner pair, trimmed to the one spinner style and
// plain bar KeywordScout's CLI needs.
package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether fd is a terminal go-colorable should wrap
// for ANSI output — the same detection cmd/keywordscout uses to choose
// between console and JSON log output.
func IsInteractive(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorableStderr wraps os.Stderr so ANSI escapes render correctly on
// every platform cryptorun ships to, including legacy Windows consoles.
func ColorableStderr() io.Writer {
	return colorable.NewColorableStderr()
}

// BatchProgress renders a single-line, in-place progress bar as an
// Orchestrator batch advances, driven by the pipeline's per-keyword
// ProgressFunc callback rather than cryptorun's per-stage StepLogger
// (KeywordScout's unit of progress is the keyword, not the pipeline step).
type BatchProgress struct {
	mu        sync.Mutex
	out       io.Writer
	label     string
	total     int
	startedAt time.Time
	quiet     bool
}

// NewBatchProgress constructs a reporter writing to out. quiet disables
// rendering entirely (used for non-TTY / JSON output modes) while still
// accepting Update calls so callers don't need to branch.
func NewBatchProgress(out io.Writer, label string, total int, quiet bool) *BatchProgress {
	return &BatchProgress{out: out, label: label, total: total, startedAt: time.Now(), quiet: quiet}
}

// Update renders current/total as a bar; safe for concurrent callers,
// matching the Orchestrator's parallel-strategy progress callback
// contract (spec.md §4.9: "must be non-blocking from the pipeline's
// perspective").
func (p *BatchProgress) Update(current, total int) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	const width = 24
	filled := 0
	if total > 0 {
		filled = width * current / total
	}

	var b strings.Builder
	b.WriteString("\r\033[K")
	b.WriteString(p.label)
	b.WriteString(" [")
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("#")
		} else {
			b.WriteString("-")
		}
	}
	fmt.Fprintf(&b, "] %d/%d", current, total)
	fmt.Fprint(p.out, b.String())
}

// Finish prints a trailing newline and the batch's total elapsed time.
func (p *BatchProgress) Finish() {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r\033[K%s done (%v)\n", p.label, time.Since(p.startedAt).Round(time.Millisecond))
}
