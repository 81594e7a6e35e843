package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	numbers map[Kind]string
}

func (f fakeScanner) MaxNumber(_ context.Context, kind Kind, _ string) (string, error) {
	return f.numbers[kind], nil
}

var year2026 = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func TestOfferPrefix(t *testing.T) {
	assert.Equal(t, "Z26", OfferPrefix(2026))
	assert.Equal(t, "Z09", OfferPrefix(2009))
}

func TestNextOfferNumberStartsAtOne(t *testing.T) {
	n, err := NextOfferNumber(context.Background(), fakeScanner{numbers: map[Kind]string{}}, year2026)
	require.NoError(t, err)
	assert.Equal(t, "Z26001", n)
}

func TestNextOfferNumberTakesMaxAcrossFamilies(t *testing.T) {
	scanner := fakeScanner{numbers: map[Kind]string{
		KindClientOffer:   "Z26004",
		KindImporterOffer: "Z26006",
	}}
	n, err := NextOfferNumber(context.Background(), scanner, year2026)
	require.NoError(t, err)
	assert.Equal(t, "Z26007", n)

	scanner.numbers[KindClientOffer] = "Z26011"
	n, err = NextOfferNumber(context.Background(), scanner, year2026)
	require.NoError(t, err)
	assert.Equal(t, "Z26012", n)
}

func TestNextOfferNumberIgnoresMalformedSuffix(t *testing.T) {
	scanner := fakeScanner{numbers: map[Kind]string{
		KindClientOffer:   "Z26ABC",
		KindImporterOffer: "Z26003",
	}}
	n, err := NextOfferNumber(context.Background(), scanner, year2026)
	require.NoError(t, err)
	assert.Equal(t, "Z26004", n)

	// Both corrupted: sequence restarts at 1 rather than failing.
	scanner.numbers[KindImporterOffer] = "Z26-XX"
	n, err = NextOfferNumber(context.Background(), scanner, year2026)
	require.NoError(t, err)
	assert.Equal(t, "Z26001", n)
}

func TestNextOfferNumberYearRollover(t *testing.T) {
	scanner := fakeScanner{numbers: map[Kind]string{
		// Last year's numbers do not match the new prefix.
		KindClientOffer: "",
	}}
	n, err := NextOfferNumber(context.Background(), scanner, time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Z27001", n)
}

func TestNextFamilyNumberScansOwnFamilyOnly(t *testing.T) {
	scanner := fakeScanner{numbers: map[Kind]string{
		KindGeneralOffer: "Z26009",
	}}
	n, err := NextFamilyNumber(context.Background(), scanner, KindGeneralOffer, year2026)
	require.NoError(t, err)
	assert.Equal(t, "Z26010", n)
}
