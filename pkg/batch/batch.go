package batch

import (
	"context"
	"log"
	"time"
)

// Processor runs per-item work in fixed-size chunks, strictly sequentially,
// pausing between items and between chunks so vendor per-second quotas are
// respected. An item failure is logged and skipped; it never aborts the run.
type Processor struct {
	ItemDelay  time.Duration
	ChunkDelay time.Duration
}

func NewProcessor() *Processor {
	return &Processor{
		ItemDelay:  100 * time.Millisecond,
		ChunkDelay: 500 * time.Millisecond,
	}
}

// Process applies fn to every item in chunks of batchSize and returns the
// successful results along with the number of failed items.
func Process[T, R any](ctx context.Context, p *Processor, items []T, batchSize int, fn func(T) (R, error)) ([]R, int, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	results := make([]R, 0, len(items))
	failed := 0

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		for _, item := range items[i:end] {
			if err := ctx.Err(); err != nil {
				return results, failed, err
			}

			result, err := fn(item)
			if err != nil {
				failed++
				log.Printf("[BATCH] Error processing item: %v", err)
			} else {
				results = append(results, result)
			}

			if p.ItemDelay > 0 {
				if err := sleep(ctx, p.ItemDelay); err != nil {
					return results, failed, err
				}
			}
		}

		if end < len(items) && p.ChunkDelay > 0 {
			if err := sleep(ctx, p.ChunkDelay); err != nil {
				return results, failed, err
			}
		}
	}

	return results, failed, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
