package audit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaudit-dev/simaudit/internal/ledger"
	"github.com/simaudit-dev/simaudit/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func ev(iteration, line int, agent string, category model.Category, amount string) model.Event {
	return model.Event{
		Iteration:  iteration,
		Agent:      agent,
		Category:   category,
		Kind:       string(category),
		Amount:     dec(amount),
		SourceLine: line,
	}
}

// cleanStream builds a conserving run: wages in, a paired transfer, and a
// subsidy matched by an explicit injection.
func cleanStream() []model.Event {
	return []model.Event{
		ev(1, 1, "alice", model.CategoryIncome, "100.00"),
		ev(1, 2, "bob", model.CategoryIncome, "80.00"),
		ev(2, 3, "alice", model.CategoryTransfer, "-25.00"),
		ev(2, 4, "bob", model.CategoryTransfer, "25.00"),
		ev(3, 5, "government", model.CategoryAdjustment, "40.00"),
		ev(3, 6, "bob", model.CategorySubsidy, "40.00"),
		ev(4, 7, "alice", model.CategoryExpense, "-10.00"),
		ev(4, 8, "bob", model.CategoryIncome, "10.00"),
	}
}

func TestAudit_ConservationRoundTrip(t *testing.T) {
	events := cleanStream()
	res := ledger.Replay(events)

	violations := New(decimal.Zero).Audit(events, res.Snapshots)

	assert.Empty(t, violations)

	// With no adjustment events, the final total equals the initial total
	// plus the sum of all event amounts.
	noAdj := events[:4]
	res = ledger.Replay(noAdj)
	sum := decimal.Zero
	for _, e := range noAdj {
		sum = sum.Add(e.Amount)
	}
	final := res.Snapshots[len(res.Snapshots)-1].TotalWealth
	assert.True(t, final.Equal(sum))
	assert.Empty(t, New(decimal.Zero).Audit(noAdj, res.Snapshots))
}

func TestAudit_InjectedLeakDetected(t *testing.T) {
	events := cleanStream()
	// One extra unpaired expense at iteration 3: d = 15.00 goes missing.
	leak := ev(3, 99, "alice", model.CategoryExpense, "-15.00")
	events = append(events, leak)

	res := ledger.Replay(events)
	violations := New(dec("0.01")).Audit(events, res.Snapshots)

	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, 3, v.Iteration)
	assert.True(t, v.Delta.Equal(dec("15.00")), "delta = %s", v.Delta)
}

func TestAudit_WealthFromNowhereHasNegativeDelta(t *testing.T) {
	events := cleanStream()
	events = append(events, ev(2, 99, "bob", model.CategoryIncome, "7.00"))

	res := ledger.Replay(events)
	violations := New(dec("0.01")).Audit(events, res.Snapshots)

	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Iteration)
	assert.True(t, violations[0].Delta.Equal(dec("-7.00")))
}

func TestAudit_ViolationsNonFatalToScan(t *testing.T) {
	events := cleanStream()
	events = append(events,
		ev(2, 90, "alice", model.CategoryExpense, "-5.00"),
		ev(4, 91, "bob", model.CategoryExpense, "-3.00"),
	)

	res := ledger.Replay(events)
	violations := New(dec("0.01")).Audit(events, res.Snapshots)

	require.Len(t, violations, 2)
	assert.Equal(t, 2, violations[0].Iteration)
	assert.Equal(t, 4, violations[1].Iteration)
	assert.True(t, violations[1].Delta.Equal(dec("3.00")))
}

func TestAudit_CorruptedTrackerTotalDetected(t *testing.T) {
	events := cleanStream()
	res := ledger.Replay(events)

	// The events conserve, so only a divergence between the incremental
	// tracker and the independent resum can trip the audit.
	res.Snapshots[1].TotalWealth = res.Snapshots[1].TotalWealth.Add(dec("999.00"))

	violations := New(dec("0.01")).Audit(events, res.Snapshots)

	require.Len(t, violations, 1)
	assert.Equal(t, 3, violations[0].Iteration)
	assert.True(t, violations[0].Delta.Equal(dec("999.00")), "delta = %s", violations[0].Delta)
}

func TestAudit_ToleranceBoundaryIsStrict(t *testing.T) {
	base := []model.Event{
		ev(1, 1, "alice", model.CategoryIncome, "100.00"),
	}

	atTolerance := append(base, ev(2, 2, "alice", model.CategoryExpense, "-0.01"))
	res := ledger.Replay(atTolerance)
	assert.Empty(t, New(dec("0.01")).Audit(atTolerance, res.Snapshots),
		"delta of exactly the tolerance must pass")

	justOver := append(base[:1:1], ev(2, 2, "alice", model.CategoryExpense, "-0.011"))
	res = ledger.Replay(justOver)
	assert.Len(t, New(dec("0.01")).Audit(justOver, res.Snapshots), 1,
		"delta one increment past the tolerance must be flagged")
}

func TestAudit_ZeroToleranceDefaults(t *testing.T) {
	a := New(decimal.Zero)
	assert.True(t, a.Tolerance.Equal(DefaultTolerance))
}
