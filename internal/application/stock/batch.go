package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

// batchPrefix builds the human-readable batch id prefix:
// category code + route code + station code, dash separated.
func batchPrefix(categoryCode, routeCode, stationCode string) string {
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s-", categoryCode, routeCode, stationCode))
}

// allocateBatchID derives the next batch id for a prefix by counting the
// movements already carrying it. Count-based sequences race unless they run
// inside the same transaction as the guarded card flip, so this must only
// be called with a tx-bound repository.
func allocateBatchID(ctx context.Context, movements repository.StockMovementRepository, categoryCode, routeCode, stationCode string) (string, error) {
	prefix := batchPrefix(categoryCode, routeCode, stationCode)
	n, err := movements.CountByBatchPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, n+1), nil
}
