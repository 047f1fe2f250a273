// Package report folds walk records into a run summary and renders the
// per-file audit log.
package report

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"

	"github.com/alex-boop-chasey/vite-docs/pkg/ascii"
	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/walker"
)

//go:embed templates/run-log.hbs
var logTemplate string

// Glyphs prefixing each log line
const (
	GlyphProcessed  = "✅"
	GlyphSkipped    = "⏭️"
	GlyphEmpty      = "⚪"
	GlyphUnreadable = "❌"
)

// Summary describes one run. It is built once and read-only afterwards.
type Summary struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	FilesProcessed  int
	FilesSkipped    int
	DurationSeconds float64
	LogLines        []string
	SkipReasons     map[classify.Status]int
}

// Summarize folds records in traversal order. Directory records count as
// skips only; they were pruned, not processed.
func Summarize(records []walker.Record, start, end time.Time) Summary {
	s := Summary{
		RunID:           uuid.NewString(),
		StartedAt:       start,
		FinishedAt:      end,
		DurationSeconds: end.Sub(start).Seconds(),
		LogLines:        make([]string, 0, len(records)),
		SkipReasons:     map[classify.Status]int{},
	}
	if s.DurationSeconds < 0 {
		s.DurationSeconds = 0
	}
	for _, r := range records {
		if r.Status == classify.StatusProcessed {
			s.FilesProcessed++
		} else {
			s.FilesSkipped++
			s.SkipReasons[r.Status]++
		}
		s.LogLines = append(s.LogLines, LogLine(r))
	}
	return s
}

// Glyph maps a status to its log glyph
func Glyph(status classify.Status) string {
	switch status {
	case classify.StatusProcessed:
		return GlyphProcessed
	case classify.StatusEmpty:
		return GlyphEmpty
	case classify.StatusUnreadable:
		return GlyphUnreadable
	default:
		return GlyphSkipped
	}
}

// LogLine formats one record: "<glyph> <relPath>" with " (<reason>)" on skips.
// Directories carry a trailing slash.
func LogLine(r walker.Record) string {
	p := r.RelPath
	if r.IsDir {
		p += "/"
	}
	line := Glyph(r.Status) + " " + p
	if r.Status != classify.StatusProcessed {
		reason := r.Reason
		if reason == "" {
			reason = string(r.Status)
		}
		line += " (" + reason + ")"
	}
	return line
}

type reasonCount struct {
	status classify.Status
	count  int
}

// sortedReasons lists skip counts ordered by status name
func (s Summary) sortedReasons() []reasonCount {
	out := make([]reasonCount, 0, len(s.SkipReasons))
	for st, n := range s.SkipReasons {
		out = append(out, reasonCount{status: st, count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].status < out[j].status })
	return out
}

// RenderLog renders the run log file
func (s Summary) RenderLog() (string, error) {
	reasons := make([]map[string]interface{}, 0, len(s.SkipReasons))
	for _, rc := range s.sortedReasons() {
		reasons = append(reasons, map[string]interface{}{"status": string(rc.status), "count": rc.count})
	}
	data := map[string]interface{}{
		"runId":      s.RunID,
		"startedAt":  s.StartedAt.UTC().Format(time.RFC3339),
		"finishedAt": s.FinishedAt.UTC().Format(time.RFC3339),
		"duration":   fmt.Sprintf("%.3f", s.DurationSeconds),
		"processed":  s.FilesProcessed,
		"skipped":    s.FilesSkipped,
		"reasons":    reasons,
		"lines":      s.LogLines,
	}
	out, err := raymond.Render(logTemplate, data)
	if err != nil {
		return "", fmt.Errorf("render run log: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

// Box renders the console summary
func (s Summary) Box() string {
	pairs := [][2]string{
		{"Processed", fmt.Sprintf("%d", s.FilesProcessed)},
		{"Skipped", fmt.Sprintf("%d", s.FilesSkipped)},
		{"Duration", fmt.Sprintf("%.2fs", s.DurationSeconds)},
		{"Run", ascii.TruncateForBox(s.RunID, 11)},
	}
	for _, rc := range s.sortedReasons() {
		pairs = append(pairs, [2]string{"  " + string(rc.status), fmt.Sprintf("%d", rc.count)})
	}
	lines := append([]string{"vitedocs " + GlyphProcessed + " compile finished", ""}, ascii.KeyValueLines(pairs)...)
	return ascii.Box(lines)
}
