package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Product codes form a family-local sequence (PROD-001, PROD-002, ...) with
// no year component: the allocator scans only its own family.
const codePrefix = "PROD-"

// NextCode returns the next product code by incrementing the numeric suffix
// of the lexicographically highest existing code. A malformed suffix is
// treated as 0 rather than failing the allocation.
func NextCode(ctx context.Context, repo interface {
	MaxCode(ctx context.Context, prefix string) (string, error)
}) (string, error) {
	max, err := repo.MaxCode(ctx, codePrefix)
	if err != nil {
		return "", fmt.Errorf("products: scan codes: %w", err)
	}

	seq := 0
	if strings.HasPrefix(max, codePrefix) {
		if n, err := strconv.Atoi(max[len(codePrefix):]); err == nil && n > 0 {
			seq = n
		}
	}
	return fmt.Sprintf("%s%03d", codePrefix, seq+1), nil
}
