// Package drain removes rows from a store in bounded pages.
package drain

import (
	"context"
	"fmt"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 100

// PageFunc removes at most limit items and reports how many it removed.
type PageFunc func(ctx context.Context, limit int) (int, error)

// Pages calls fn until a page comes back smaller than pageSize and returns the
// total removed. The context is checked between pages.
func Pages(ctx context.Context, pageSize int, fn PageFunc) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := 0
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := fn(ctx, pageSize)
		if err != nil {
			return total, fmt.Errorf("drain page %d: %w", page, err)
		}
		total += n
		if n < pageSize {
			return total, nil
		}
	}
}

// Each fetches pages with next and applies fn to every item until next
// returns an empty page. next receives the number of items already visited.
func Each[T any](ctx context.Context, pageSize int, next func(ctx context.Context, offset, limit int) ([]T, error), fn func(ctx context.Context, item T) error) (int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	visited := 0
	for {
		if err := ctx.Err(); err != nil {
			return visited, err
		}
		items, err := next(ctx, visited, pageSize)
		if err != nil {
			return visited, fmt.Errorf("fetch page at offset %d: %w", visited, err)
		}
		if len(items) == 0 {
			return visited, nil
		}
		for _, item := range items {
			if err := fn(ctx, item); err != nil {
				return visited, err
			}
			visited++
		}
		if len(items) < pageSize {
			return visited, nil
		}
	}
}
