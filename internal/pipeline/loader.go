package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

// MultiLoader loads every batch into each of its loaders in order and stops at
// the first failure. The pipeline retries the whole batch, so loaders must
// tolerate seeing the same result twice.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, results []domain.RunResult) error {
	for i, l := range m {
		if err := l.LoadBatch(ctx, results); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
