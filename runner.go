package aacflow

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one run of a batch.
type BatchResult struct {
	UserID string         `json:"user_id"`
	Result *domain.Result `json:"result,omitempty"`
	Err    error          `json:"-"`
}

// Batch runs the workflow for every user, at most concurrency at a time
// (unbounded when concurrency < 1). Runs are independent: one failure does
// not stop the others. Results keep the order of userIDs.
func (e *Engine) Batch(ctx context.Context, userIDs []string, concurrency int) []BatchResult {
	results := make([]BatchResult, len(userIDs))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, id := range userIDs {
		g.Go(func() error {
			res, err := e.Run(ctx, id)
			results[i] = BatchResult{UserID: id, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
