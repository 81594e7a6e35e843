package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceLines(prices ...float64) []Line {
	lines := make([]Line, 0, len(prices))
	for i, p := range prices {
		l := Line{ID: int64(i + 1), ProductID: int64(100 + i), Quantity: 1, UnitPrice: p, LineOrder: i + 1}
		l.Subtotal = LineSubtotal(l)
		lines = append(lines, l)
	}
	return lines
}

func sumSubtotals(lines []Line) float64 {
	var s float64
	for _, l := range lines {
		s += l.Subtotal
	}
	return round2(s)
}

func TestScaleToSubtotalProportional(t *testing.T) {
	scaled, err := ScaleToSubtotal(priceLines(10, 20, 30), 90)
	require.NoError(t, err)

	assert.Equal(t, 15.0, scaled[0].UnitPrice)
	assert.Equal(t, 30.0, scaled[1].UnitPrice)
	assert.Equal(t, 45.0, scaled[2].UnitPrice)
	assert.Equal(t, 90.0, sumSubtotals(scaled))
}

func TestScaleToSubtotalIdempotent(t *testing.T) {
	first, err := ScaleToSubtotal(priceLines(10, 20, 30), 90)
	require.NoError(t, err)

	second, err := ScaleToSubtotal(first, 90)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].UnitPrice, second[i].UnitPrice, "line %d moved on re-adjustment", i)
		assert.Equal(t, first[i].Subtotal, second[i].Subtotal)
	}
}

func TestScaleToSubtotalResidualOnLastLine(t *testing.T) {
	// 3 * 10 = 30 scaled to 100: per-line thirds cannot round evenly, the
	// last line absorbs the leftover cents so the sum is exact.
	scaled, err := ScaleToSubtotal(priceLines(10, 10, 10), 100)
	require.NoError(t, err)

	assert.Equal(t, 100.0, sumSubtotals(scaled))
	assert.Equal(t, 33.33, scaled[0].Subtotal)
	assert.Equal(t, 33.33, scaled[1].Subtotal)
	assert.Equal(t, 33.34, scaled[2].Subtotal)
}

func TestScaleToSubtotalWeightBasedLines(t *testing.T) {
	net := 12.5
	l := Line{ID: 1, ProductID: 1, Quantity: 10, NetWeight: &net, UnitPrice: 4, LineOrder: 1}
	l.Subtotal = LineSubtotal(l) // 12.5 * 4 = 50

	scaled, err := ScaleToSubtotal([]Line{l}, 75)
	require.NoError(t, err)
	assert.Equal(t, 75.0, scaled[0].Subtotal)
	assert.InDelta(t, 6.0, scaled[0].UnitPrice, 1e-9)
}

func TestScaleToSubtotalEmptyDocument(t *testing.T) {
	_, err := ScaleToSubtotal(nil, 50)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestScaleToSubtotalZeroTargetZeroSubtotal(t *testing.T) {
	scaled, err := ScaleToSubtotal(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, scaled)
}

func TestScaleToSubtotalInvalidTarget(t *testing.T) {
	_, err := ScaleToSubtotal(priceLines(10, 20), -5)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// Scaling 60 down to 0 would zero out every price.
	_, err = ScaleToSubtotal(priceLines(10, 20, 30), 0)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// A tiny target rounds the cheap line's price to zero.
	_, err = ScaleToSubtotal(priceLines(0.01, 1000), 0.05)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestTargetSubtotalBacksOutInvoiceAdjustments(t *testing.T) {
	// Invoice: total = subtotal + taxes - discount, so the target subtotal
	// backs those out before scaling.
	assert.Equal(t, 95.0, TargetSubtotal(KindInvoice, 100, 10, 5))
	assert.Equal(t, 100.0, TargetSubtotal(KindClientOffer, 100, 10, 5))
}
