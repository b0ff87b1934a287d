package finance

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlicesSumToHundred(t *testing.T) {
	cases := []ExpenseBuckets{
		{RawMaterials: dec("10"), Packaging: dec("20"), Labor: dec("30"), Wastage: dec("40")},
		{RawMaterials: dec("1"), Packaging: dec("0"), Labor: dec("3.33"), Wastage: dec("0.01")},
		{RawMaterials: dec("1234.56"), Packaging: dec("0.44"), Labor: dec("0"), Wastage: dec("77")},
	}
	for _, b := range cases {
		slices := Slices(b)
		require.NotEmpty(t, slices)
		sum := 0.0
		prevEnd := 0.0
		for _, s := range slices {
			assert.Greater(t, s.Percentage, 0.0)
			assert.InDelta(t, prevEnd, s.StartAngle, 1e-9)
			assert.GreaterOrEqual(t, s.EndAngle, s.StartAngle)
			prevEnd = s.EndAngle
			sum += s.Percentage
		}
		assert.InDelta(t, 100, sum, 1e-6)
		assert.InDelta(t, 2*math.Pi, prevEnd, 1e-6)
	}
}

func TestSlicesOrderAndColors(t *testing.T) {
	slices := Slices(ExpenseBuckets{RawMaterials: dec("25"), Packaging: dec("25"), Labor: dec("25"), Wastage: dec("25")})
	require.Len(t, slices, 4)
	labels := []string{"Raw Materials", "Packaging", "Labor", "Wastage"}
	colors := []string{"#15803d", "#16a34a", "#3b82f6", "#ef4444"}
	for i, s := range slices {
		assert.Equal(t, labels[i], s.Label)
		assert.Equal(t, colors[i], s.Color)
		assert.InDelta(t, 25, s.Percentage, 1e-9)
		assert.False(t, s.LargeArc)
	}
	assert.Equal(t, "M 0 0 L 1.0000 0.0000 A 1 1 0 0 1 0.0000 1.0000 L 0 0", slices[0].Path)
}

func TestSlicesLargeArcAndSkipsZero(t *testing.T) {
	slices := Slices(ExpenseBuckets{RawMaterials: dec("70"), Labor: dec("30")})
	require.Len(t, slices, 2)
	assert.Equal(t, "Raw Materials", slices[0].Label)
	assert.True(t, slices[0].LargeArc)
	assert.Contains(t, slices[0].Path, "A 1 1 0 1 1")
	assert.Equal(t, "Labor", slices[1].Label)
	assert.False(t, slices[1].LargeArc)
}

func TestSlicesFullCircle(t *testing.T) {
	slices := Slices(ExpenseBuckets{Labor: dec("500")})
	require.Len(t, slices, 1)
	assert.True(t, slices[0].FullCircle)
	assert.Equal(t, FullCirclePath, slices[0].Path)
	assert.InDelta(t, 100, slices[0].Percentage, 1e-9)
}

func TestSlicesEmptyWhenNothingSpent(t *testing.T) {
	assert.Empty(t, Slices(ExpenseBuckets{}))
	assert.NotNil(t, Slices(ExpenseBuckets{}))
	assert.Empty(t, Slices(ExpenseBuckets{RawMaterials: decimal.NewFromInt(-5), Wastage: decimal.Zero}))
}

func TestBucketsFromFeedsPackagingWithProcurement(t *testing.T) {
	b := BucketsFrom(Summary{TotalProcurementCost: dec("80"), TotalPackagingCost: dec("3")})
	assert.Equal(t, "80", b.Packaging.String())
}

func TestSlicesTreatNegativeBucketsAsZero(t *testing.T) {
	slices := Slices(ExpenseBuckets{RawMaterials: dec("60"), Packaging: dec("-20"), Labor: dec("40"), Wastage: dec("0")})
	require.Len(t, slices, 2)
	assert.Equal(t, "Raw Materials", slices[0].Label)
	assert.InDelta(t, 60, slices[0].Percentage, 1e-9)
	assert.InDelta(t, 40, slices[1].Percentage, 1e-9)
	assert.InDelta(t, 2*math.Pi, slices[1].EndAngle, 1e-9)

	assert.Empty(t, Slices(ExpenseBuckets{RawMaterials: dec("-5")}))
}
