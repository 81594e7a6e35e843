package documents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Offer numbers look like Z26007: a fixed letter, a two-digit year and a
// three-digit sequence. ClientOffer and ImporterOffer draw from one shared
// counter per year so the two families never collide on number even though
// each is created independently.
const offerNumberLetter = "Z"

// OfferPrefix returns the numbering-space prefix for the given year,
// e.g. 2026 -> "Z26".
func OfferPrefix(year int) string {
	return fmt.Sprintf("%s%02d", offerNumberLetter, year%100)
}

// numericSuffix extracts the sequence part of a number within a prefix.
// Corrupted or malformed suffixes are treated as 0, never as a failure.
func numericSuffix(number, prefix string) int {
	if !strings.HasPrefix(number, prefix) {
		return 0
	}
	n, err := strconv.Atoi(number[len(prefix):])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// maxNumberScanner is the slice of the repository the allocator needs.
type maxNumberScanner interface {
	MaxNumber(ctx context.Context, kind Kind, prefix string) (string, error)
}

// NextOfferNumber scans the highest existing number across both the
// ClientOffer and ImporterOffer families for the current year's prefix and
// returns one greater. The read is idempotent; the unique index on
// (kind, number) is the backstop for the race window between two concurrent
// allocations, surfaced to the caller as ErrDuplicateNumber on commit.
func NextOfferNumber(ctx context.Context, repo maxNumberScanner, now time.Time) (string, error) {
	prefix := OfferPrefix(now.Year())

	max := 0
	for _, kind := range []Kind{KindClientOffer, KindImporterOffer} {
		number, err := repo.MaxNumber(ctx, kind, prefix)
		if err != nil {
			return "", fmt.Errorf("documents: scan %s numbers: %w", kind, err)
		}
		if n := numericSuffix(number, prefix); n > max {
			max = n
		}
	}

	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}

// NextFamilyNumber allocates within a single family's numbering space using
// the same year-prefixed scheme. GeneralOffer numbers live here; they do not
// share the client/importer counter.
func NextFamilyNumber(ctx context.Context, repo maxNumberScanner, kind Kind, now time.Time) (string, error) {
	prefix := OfferPrefix(now.Year())
	number, err := repo.MaxNumber(ctx, kind, prefix)
	if err != nil {
		return "", fmt.Errorf("documents: scan %s numbers: %w", kind, err)
	}
	return fmt.Sprintf("%s%03d", prefix, numericSuffix(number, prefix)+1), nil
}
