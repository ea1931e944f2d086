package catalog

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Bootstrap performs the process-wide first catalog load. Concurrent callers
// share one FetchLatest; after a success the result is memoized; after a
// failure the next caller tries again.
type Bootstrap struct {
	fetcher Fetcher
	group   singleflight.Group

	mu     sync.RWMutex
	latest *Item
}

// NewBootstrap wraps fetcher.
func NewBootstrap(fetcher Fetcher) *Bootstrap {
	return &Bootstrap{fetcher: fetcher}
}

// Load returns the latest item as of the first successful load. The shared
// fetch runs detached from any one caller's cancellation and is bounded by
// the fetcher's own timeout; a caller whose ctx ends stops waiting without
// failing the others.
func (b *Bootstrap) Load(ctx context.Context) (Item, error) {
	if item, ok := b.Loaded(); ok {
		return item, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := b.group.DoChan("latest", func() (any, error) {
		if item, ok := b.Loaded(); ok {
			return item, nil
		}
		item, err := b.fetcher.FetchLatest(shared)
		if err != nil {
			return Item{}, err
		}
		if item.Index <= 0 {
			return Item{}, fmt.Errorf("latest item: number %d is not positive", item.Index)
		}
		b.mu.Lock()
		b.latest = &item
		b.mu.Unlock()
		return item, nil
	})

	select {
	case <-ctx.Done():
		return Item{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Item{}, res.Err
		}
		return res.Val.(Item), nil
	}
}

// Loaded returns the memoized item, if any.
func (b *Bootstrap) Loaded() (Item, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return Item{}, false
	}
	return *b.latest, true
}
