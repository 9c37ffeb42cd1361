package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaudit-dev/simaudit/internal/model"
)

const sampleLog = `Starting scenario A baseline run
[Iter    1 Day0H1] wage agent=person_001 amount=25.00 tx=1
[Iter    1 Day0H1] expense agent=person_001 amount=-10.00
[Iter    2 Day0H2] transfer agent=person_001 amount=-5.00 tx=7
[Iter    2 Day0H2] transfer agent=person_002 amount=5.00 tx=7
some progress output without a prefix
[Iter    3 Day0H3] mint agent=government amount=100.00
`

func TestReadEvents(t *testing.T) {
	events, stats := ReadEvents(strings.NewReader(sampleLog), "console")

	require.Len(t, events, 5)
	assert.Equal(t, 7, stats.Lines)
	assert.Equal(t, 5, stats.Events)
	// The two prose lines carry no iteration prefix and count as warnings.
	assert.Equal(t, 2, stats.Warnings)

	first := events[0]
	assert.Equal(t, 1, first.Iteration)
	assert.Equal(t, "person_001", first.Agent)
	assert.Equal(t, model.CategoryIncome, first.Category)
	assert.Equal(t, "wage", first.Kind)
	assert.Equal(t, "25", first.Amount.String())
	assert.Equal(t, "1", first.TxID)
	assert.Equal(t, 2, first.SourceLine)
	assert.Equal(t, "console", first.Stream)

	assert.Equal(t, model.CategoryAdjustment, events[4].Category)
	assert.Equal(t, "mint", events[4].Kind)
}

func TestReadEvents_TransferPairSharesTx(t *testing.T) {
	events, _ := ReadEvents(strings.NewReader(sampleLog), "console")
	assert.Equal(t, events[2].TxID, events[3].TxID)
	assert.True(t, events[2].Amount.Add(events[3].Amount).IsZero())
}

func TestReadEvents_MalformedLinesWarnNotFail(t *testing.T) {
	log := `[Iter    1 Day0H1] wage agent=person_001 amount=25.00
[Iter    2 Day0H2] wage agent=person_001 amount=abc
[Iter    3 Day0H3] teleport agent=person_001 amount=5.00
[Iter    4 Day0H4] wage person_001 25.00
[Iter    5 Day0H5] wage agent=person_001 amount=5.00
`
	events, stats := ReadEvents(strings.NewReader(log), "console")

	require.Len(t, events, 2)
	assert.Equal(t, 3, stats.Warnings)
	assert.Len(t, stats.WarnSamples, 3)
	assert.Contains(t, stats.WarnSamples[0], "line 2")
}

func TestReadEvents_UnprefixedLinesWarn(t *testing.T) {
	log := `Starting scenario A baseline run
progress 45% complete

[Iter    1 Day0H1] wage agent=person_001 amount=25.00
`
	events, stats := ReadEvents(strings.NewReader(log), "console")

	require.Len(t, events, 1)
	assert.Equal(t, 2, stats.Warnings, "prose lines warn, blank lines do not")
	require.Len(t, stats.WarnSamples, 2)
	assert.Contains(t, stats.WarnSamples[0], "line 1")
	assert.Contains(t, stats.WarnSamples[1], "line 2")
}

func TestReadEvents_NonNumericAmountSkipped(t *testing.T) {
	log := "[Iter 1 Day0H1] tax agent=a amount=12.3.4\n"
	events, stats := ReadEvents(strings.NewReader(log), "console")
	assert.Empty(t, events)
	assert.Equal(t, 1, stats.Warnings)
}

func TestReadFile_MissingPathFatal(t *testing.T) {
	_, _, err := ReadFile("/does/not/exist.log", "console")
	require.Error(t, err)
}

func TestMerge_OrdersByIterationThenLine(t *testing.T) {
	console := []model.Event{
		{Iteration: 2, SourceLine: 10, Agent: "a"},
		{Iteration: 5, SourceLine: 11, Agent: "a"},
	}
	errors := []model.Event{
		{Iteration: 1, SourceLine: 3, Agent: "b"},
		{Iteration: 2, SourceLine: 4, Agent: "b"},
	}

	merged := Merge(console, errors)

	require.Len(t, merged, 4)
	assert.Equal(t, 1, merged[0].Iteration)
	assert.Equal(t, 2, merged[1].Iteration)
	assert.Equal(t, 4, merged[1].SourceLine)
	assert.Equal(t, 10, merged[2].SourceLine)
	assert.Equal(t, 5, merged[3].Iteration)
}
