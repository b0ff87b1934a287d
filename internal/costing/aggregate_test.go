package costing

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func raw(id string, day int, ref string, rawCost, pack, labor, waste string) DailyCostMetric {
	m := DailyCostMetric{
		ID:              id,
		Date:            time.Date(2025, 3, day, 8, 30, 0, 0, time.UTC),
		ReferenceID:     ref,
		WeightProcessed: d("10"),
		ProcessingHours: d("2"),
		RawMaterialCost: d(rawCost),
		PackagingCost:   d(pack),
		LaborCost:       d(labor),
		WastageCost:     d(waste),
	}
	m.TotalCost = m.BucketSum()
	return m
}

func fixtures() []DailyCostMetric {
	return []DailyCostMetric{
		raw("c-3", 2, "BATCH-7", "80", "5", "25", "3"),
		raw("c-1", 2, "BATCH-7", "40", "0", "12.5", "1.5"),
		raw("c-2", 2, "", "10", "0", "0", "0"),
		raw("c-4", 2, "", "20", "0", "0", "0"),
		raw("c-5", 3, "BATCH-8", "16", "2", "12.5", "0"),
		raw("c-6", 2, " BATCH-7 ", "1", "0", "0", "0"),
	}
}

func TestAggregateMergesByDateAndReference(t *testing.T) {
	out := Aggregate(fixtures())
	require.Len(t, out, 4)

	assert.Equal(t, "BATCH-8", out[0].ReferenceID)
	assert.Equal(t, 3, out[0].Date.Day())

	assert.Equal(t, "", out[1].ReferenceID)
	assert.Equal(t, "c-2", out[1].ID)
	assert.Equal(t, "c-4", out[2].ID)

	batch := out[3]
	assert.Equal(t, "BATCH-7", batch.ReferenceID)
	assert.Equal(t, "c-1", batch.ID)
	assert.Equal(t, 3, batch.RecordCount)
	assert.Equal(t, []string{"c-1", "c-3", "c-6"}, batch.SourceIDs)
	assert.Equal(t, "121", batch.RawMaterialCost.String())
	assert.Equal(t, "30", batch.WeightProcessed.String())
	assert.Equal(t, "168", batch.TotalCost().String())
	assert.False(t, batch.Mismatch())
}

func summarize(out []AggregatedCostMetric) []string {
	lines := make([]string, 0, len(out))
	for _, m := range out {
		lines = append(lines, fmt.Sprintf("%s|%s|%s|%d|%v|%s|%s|%s|%s|%s|%s|%s",
			m.ID, m.Date.Format(time.DateOnly), m.ReferenceID, m.RecordCount, m.SourceIDs,
			m.WeightProcessed, m.ProcessingHours, m.RawMaterialCost, m.PackagingCost,
			m.LaborCost, m.WastageCost, m.ReportedTotal))
	}
	return lines
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	want := summarize(Aggregate(fixtures()))
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		in := fixtures()
		rng.Shuffle(len(in), func(a, b int) { in[a], in[b] = in[b], in[a] })
		assert.Equal(t, want, summarize(Aggregate(in)))
	}
}

func TestAggregateTotalEqualsBuckets(t *testing.T) {
	for _, m := range Aggregate(fixtures()) {
		sum := m.RawMaterialCost.Add(m.PackagingCost).Add(m.LaborCost).Add(m.WastageCost)
		assert.True(t, m.TotalCost().Equal(sum))
		assert.True(t, m.ReportedTotal.Equal(sum), m.ID)
	}
}

func TestAggregateToleratesMissingNumbers(t *testing.T) {
	out := Aggregate([]DailyCostMetric{{ID: "x", ReferenceID: "R"}, {ID: "y", ReferenceID: "R"}})
	require.Len(t, out, 1)
	assert.True(t, out[0].TotalCost().IsZero())
	assert.Empty(t, Aggregate(nil))
}

func TestAggregateFlagsMismatch(t *testing.T) {
	m := raw("c-1", 1, "R", "10", "0", "0", "0")
	m.TotalCost = d("99")
	out := Aggregate([]DailyCostMetric{m})
	assert.True(t, out[0].Mismatch())
}

func TestAggregatedJSONCarriesTotal(t *testing.T) {
	out := Aggregate([]DailyCostMetric{
		raw("a", 4, "B-1", "80", "4.20", "37.50", "1.80"),
		raw("b", 4, "B-1", "20", "0", "12.50", "0"),
	})
	require.Len(t, out, 1)

	payload, err := json.Marshal(out[0])
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "156", got["total_cost"])
	assert.Equal(t, false, got["mismatch"])
	assert.Equal(t, "a", got["id"])
	assert.Equal(t, "B-1", got["reference_id"])

	var back AggregatedCostMetric
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.True(t, back.TotalCost().Equal(out[0].TotalCost()))
}
