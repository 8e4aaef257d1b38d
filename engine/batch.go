package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/outbound"
)

// BatchCall names one call in a batch.
type BatchCall struct {
	Endpoint string
	Call     outbound.CallContext
}

// CallBatch dispatches a set of calls concurrently with at most limit in
// flight (limit <= 0 means unbounded). Results are positional: results[i]
// belongs to calls[i]. Individual failures stay inside their Response —
// one bad call never aborts the rest of the batch.
func (e *Engine) CallBatch(ctx context.Context, calls []BatchCall, limit int) []*outbound.Response {
	results := make([]*outbound.Response, len(calls))

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, bc := range calls {
		g.Go(func() error {
			results[i] = e.Call(ctx, bc.Endpoint, bc.Call)
			return nil
		})
	}
	// Calls report failures through Response categories, never errors.
	_ = g.Wait()

	return results
}
