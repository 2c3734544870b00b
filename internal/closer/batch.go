package closer

import (
	"fmt"

	"github.com/rentclaim/rentclaim/internal/config"
	"github.com/rentclaim/rentclaim/internal/models"
)

// SplitBatches partitions accounts into ordered batches of at most maxBatchSize,
// preserving input order. All batches except possibly the last are full.
// An empty input yields zero batches.
func SplitBatches(accounts []models.CloseableAccount, maxBatchSize int) ([][]models.CloseableAccount, error) {
	if maxBatchSize < 1 {
		return nil, fmt.Errorf("%w: got %d", config.ErrInvalidBatchSize, maxBatchSize)
	}

	if len(accounts) == 0 {
		return nil, nil
	}

	batches := make([][]models.CloseableAccount, 0, (len(accounts)+maxBatchSize-1)/maxBatchSize)
	for start := 0; start < len(accounts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(accounts) {
			end = len(accounts)
		}
		batches = append(batches, accounts[start:end])
	}

	return batches, nil
}
