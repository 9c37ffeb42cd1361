// Package crashdiag correlates a terminal crash marker with the economic
// state immediately preceding it. Purely a read-only correlation over
// already-reconstructed artifacts.
package crashdiag

import (
	"github.com/simaudit-dev/simaudit/internal/ingest"
	"github.com/simaudit-dev/simaudit/internal/model"
)

// DefaultLastEvents is how many trailing events a correlation keeps.
const DefaultLastEvents = 20

// Correlation is the root-cause summary for one crash.
type Correlation struct {
	Marker      ingest.CrashMarker `yaml:"marker"`
	Snapshot    *model.Snapshot    `yaml:"snapshot,omitempty"`
	LastEvents  []model.Event      `yaml:"last_events,omitempty"`
	Violation   *model.Violation   `yaml:"violation,omitempty"`
	NoViolation bool               `yaml:"no_correlated_violation"`
}

// Correlate pairs the crash marker with the snapshot at or immediately
// before it, the last N events leading up to it, and the nearest preceding
// conservation violation. NoViolation is set when the crash has no preceding
// anomaly, pointing diagnosis away from the economic layer.
func Correlate(marker ingest.CrashMarker, events []model.Event, snapshots []model.Snapshot, violations []model.Violation, lastN int) Correlation {
	if lastN <= 0 {
		lastN = DefaultLastEvents
	}

	c := Correlation{Marker: marker, NoViolation: true}

	for i := range snapshots {
		if snapshots[i].Iteration > marker.Iteration {
			break
		}
		snap := snapshots[i]
		c.Snapshot = &snap
	}

	ordered := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Iteration <= marker.Iteration {
			ordered = append(ordered, ev)
		}
	}
	model.SortEvents(ordered)
	if len(ordered) > lastN {
		ordered = ordered[len(ordered)-lastN:]
	}
	c.LastEvents = ordered

	for i := range violations {
		if violations[i].Iteration > marker.Iteration {
			break
		}
		v := violations[i]
		c.Violation = &v
		c.NoViolation = false
	}

	return c
}
