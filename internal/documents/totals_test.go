package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveQuantityPrefersNetWeight(t *testing.T) {
	net := 18.2
	l := Line{Quantity: 20, NetWeight: &net}
	assert.Equal(t, 18.2, EffectiveQuantity(l))

	zero := 0.0
	l.NetWeight = &zero
	assert.Equal(t, 20.0, EffectiveQuantity(l))

	l.NetWeight = nil
	assert.Equal(t, 20.0, EffectiveQuantity(l))
}

func TestValidateLine(t *testing.T) {
	ok := Line{Quantity: 2, UnitPrice: 3.5}
	assert.NoError(t, ValidateLine(ok))

	assert.ErrorIs(t, ValidateLine(Line{Quantity: 0, UnitPrice: 1}), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateLine(Line{Quantity: -1, UnitPrice: 1}), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateLine(Line{Quantity: 1, UnitPrice: 0}), ErrInvalidPrice)
	assert.ErrorIs(t, ValidateLine(Line{Quantity: 1, UnitPrice: -2}), ErrInvalidPrice)

	badCIF := -1.0
	assert.ErrorIs(t, ValidateLine(Line{Quantity: 1, UnitPrice: 1, CIFPrice: &badCIF}), ErrInvalidPrice)
}

func TestLineSubtotalUsesEffectiveQuantity(t *testing.T) {
	net := 12.5
	l := Line{Quantity: 10, NetWeight: &net, UnitPrice: 4}
	assert.Equal(t, 50.0, LineSubtotal(l))

	l.NetWeight = nil
	assert.Equal(t, 40.0, LineSubtotal(l))
}

func TestComputeTotalsOffer(t *testing.T) {
	lines := priceLines(10, 20, 30)
	subtotal, total := ComputeTotals(KindClientOffer, lines, 0, 0)
	assert.Equal(t, 60.0, subtotal)
	assert.Equal(t, 60.0, total)
}

func TestComputeTotalsInvoice(t *testing.T) {
	lines := priceLines(10, 20, 30)
	subtotal, total := ComputeTotals(KindInvoice, lines, 9.5, 4.5)
	assert.Equal(t, 60.0, subtotal)
	assert.Equal(t, 65.0, total)
}

func TestComputeTotalsEmptyDocument(t *testing.T) {
	subtotal, total := ComputeTotals(KindGeneralOffer, nil, 0, 0)
	assert.Zero(t, subtotal)
	assert.Zero(t, total)
}
