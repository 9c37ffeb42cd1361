package crashdiag

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaudit-dev/simaudit/internal/ingest"
	"github.com/simaudit-dev/simaudit/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func ev(iteration, line int, agent string, amount string) model.Event {
	return model.Event{
		Iteration:  iteration,
		Agent:      agent,
		Category:   model.CategoryExpense,
		Kind:       "expense",
		Amount:     dec(amount),
		SourceLine: line,
	}
}

func snap(iteration int, total string) model.Snapshot {
	return model.Snapshot{Iteration: iteration, TotalWealth: dec(total)}
}

func TestCorrelate_PicksPrecedingState(t *testing.T) {
	events := []model.Event{
		ev(718, 1, "alice", "-10.00"),
		ev(719, 2, "bob", "-20.00"),
		ev(721, 3, "carol", "-30.00"), // after the crash, must be excluded
	}
	snapshots := []model.Snapshot{snap(718, "100.00"), snap(719, "80.00"), snap(721, "50.00")}
	violations := []model.Violation{
		{Iteration: 600, Delta: dec("5.00")},
		{Iteration: 719, Delta: dec("20.00")},
	}
	marker := ingest.CrashMarker{Iteration: 720, Text: "panic: settlement", SourceLine: 9}

	c := Correlate(marker, events, snapshots, violations, 10)

	require.NotNil(t, c.Snapshot)
	assert.Equal(t, 719, c.Snapshot.Iteration)
	require.Len(t, c.LastEvents, 2)
	assert.Equal(t, "bob", c.LastEvents[1].Agent)
	require.NotNil(t, c.Violation)
	assert.Equal(t, 719, c.Violation.Iteration)
	assert.False(t, c.NoViolation)
}

func TestCorrelate_TruncatesToLastN(t *testing.T) {
	var events []model.Event
	for i := 1; i <= 30; i++ {
		events = append(events, ev(i, i, "alice", "-1.00"))
	}
	marker := ingest.CrashMarker{Iteration: 30}

	c := Correlate(marker, events, nil, nil, 5)

	require.Len(t, c.LastEvents, 5)
	assert.Equal(t, 26, c.LastEvents[0].Iteration)
	assert.Equal(t, 30, c.LastEvents[4].Iteration)
}

func TestCorrelate_NoPrecedingViolation(t *testing.T) {
	events := []model.Event{ev(10, 1, "alice", "-1.00")}
	violations := []model.Violation{{Iteration: 50, Delta: dec("1.00")}}
	marker := ingest.CrashMarker{Iteration: 20, Text: "FATAL out of memory"}

	c := Correlate(marker, events, nil, violations, 0)

	assert.Nil(t, c.Violation)
	assert.True(t, c.NoViolation)
	assert.Len(t, c.LastEvents, 1)
}
