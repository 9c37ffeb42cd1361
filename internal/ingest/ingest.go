// Package ingest parses simulation debug logs into economic events.
//
// The parsing boundary is fixed: each event line carries an iteration prefix
// followed by a kind token, agent id, signed decimal amount, and an optional
// transaction id:
//
//	[Iter  444 Day18H12] rent agent=house_012 amount=-350.00 tx=8812
//
// The Day/Hour fields are redundant with the iteration number and ignored.
// Lines that do not match, or that match with a non-numeric amount or unknown
// kind, are skipped and counted as parse warnings. Ingestion never fails on
// malformed data.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaudit-dev/simaudit/internal/model"
)

var (
	prefixRe = regexp.MustCompile(`^\[Iter\s*(\d+)\s+Day\d+H\d+\]\s*(.*)$`)
	eventRe  = regexp.MustCompile(`^([A-Za-z_]+)\s+agent=(\S+)\s+amount=(-?[0-9.]+)(?:\s+tx=(\S+))?\s*$`)
)

// kindCategories maps raw log kind tokens to event categories.
var kindCategories = map[string]model.Category{
	"income":     model.CategoryIncome,
	"wage":       model.CategoryIncome,
	"salary":     model.CategoryIncome,
	"expense":    model.CategoryExpense,
	"rent":       model.CategoryExpense,
	"purchase":   model.CategoryExpense,
	"transfer":   model.CategoryTransfer,
	"tax":        model.CategoryTax,
	"subsidy":    model.CategorySubsidy,
	"relief":     model.CategorySubsidy,
	"benefit":    model.CategorySubsidy,
	"adjustment": model.CategoryAdjustment,
	"mint":       model.CategoryAdjustment,
	"burn":       model.CategoryAdjustment,
}

// maxWarnSamples caps how many offending lines are kept verbatim in Stats.
const maxWarnSamples = 10

// Stats summarizes one ingestion pass over a stream.
type Stats struct {
	Stream      string   `yaml:"stream"`
	Lines       int      `yaml:"lines"`
	Events      int      `yaml:"events"`
	Warnings    int      `yaml:"warnings"`
	WarnSamples []string `yaml:"warn_samples,omitempty"`
}

func (s *Stats) warn(lineNo int, line string) {
	s.Warnings++
	if len(s.WarnSamples) < maxWarnSamples {
		s.WarnSamples = append(s.WarnSamples, fmt.Sprintf("line %d: %s", lineNo, line))
	}
}

// ReadEvents parses all event lines from r in one pass. Every non-empty line
// that fails the structured pattern, whether it lacks the iteration prefix
// entirely or carries one with a malformed body, is counted as a parse
// warning. Blank lines are skipped silently.
func ReadEvents(r io.Reader, stream string) ([]model.Event, Stats) {
	stats := Stats{Stream: stream}
	var events []model.Event

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		stats.Lines++
		line := sc.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		m := prefixRe.FindStringSubmatch(line)
		if m == nil {
			stats.warn(lineNo, line)
			continue
		}

		iteration := mustAtoi(m[1])
		body := eventRe.FindStringSubmatch(m[2])
		if body == nil {
			stats.warn(lineNo, line)
			continue
		}

		category, ok := kindCategories[body[1]]
		if !ok {
			stats.warn(lineNo, line)
			continue
		}

		amount, err := decimal.NewFromString(body[3])
		if err != nil {
			stats.warn(lineNo, line)
			continue
		}

		events = append(events, model.Event{
			Iteration:  iteration,
			Agent:      body[2],
			Category:   category,
			Kind:       body[1],
			Amount:     amount,
			TxID:       body[4],
			SourceLine: lineNo,
			Stream:     stream,
		})
		stats.Events++
	}
	// Scanner errors (oversized line) are treated like any other malformed input.
	if err := sc.Err(); err != nil {
		stats.warn(lineNo+1, err.Error())
	}

	return events, stats
}

// ReadFile parses one log file. An unreadable path is the only fatal
// ingestion error.
func ReadFile(path, stream string) ([]model.Event, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()

	events, stats := ReadEvents(f, stream)
	return events, stats, nil
}

// Merge combines events from multiple streams into a single sequence ordered
// by (iteration, source line), iteration taking priority.
func Merge(batches ...[]model.Event) []model.Event {
	var merged []model.Event
	for _, b := range batches {
		merged = append(merged, b...)
	}
	model.SortEvents(merged)
	return merged
}

func mustAtoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
