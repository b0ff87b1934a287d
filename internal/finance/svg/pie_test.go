package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPieRendersSlices(t *testing.T) {
	html, err := Pie(360, 240, []PieSlice{
		{Label: "Raw Materials", Color: "#15803d", Percentage: 75, Path: "M 0 0 L 1.0000 0.0000 A 1 1 0 1 1 0.0000 -1.0000 L 0 0"},
		{Label: "Labor", Color: "#3b82f6", Percentage: 25, Path: "M 0 0 L 0.0000 -1.0000 A 1 1 0 0 1 1.0000 0.0000 L 0 0"},
	}, PieOpts{Title: "Expense Distribution", ShowLegend: true})
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "Raw Materials 75.0%")
	assert.Contains(t, out, `id="expense-distribution-pie-title"`)
}

func TestPieEmptyState(t *testing.T) {
	html, err := Pie(0, 0, nil, PieOpts{})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "No expenses recorded")
	assert.NotContains(t, out, "<path")
}

func TestBarsRendersOneBarPerLabel(t *testing.T) {
	html, err := Bars(420, 220, []float64{0, 120.5, 300}, []string{"Mon", "Tue", "Wed"}, BarOpts{Title: "Weekly Revenue"})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(html), "<rect"))

	_, err = Bars(420, 220, []float64{1}, []string{"Mon", "Tue"}, BarOpts{})
	require.Error(t, err)
}
