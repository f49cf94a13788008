package dashboard

import (
	"context"
	"log"
	"slices"
	"sync"
)

// Collection is the list state behind one dashboard tab. Each Load replaces
// the items wholesale; nothing is cached between loads.
type Collection[T any] struct {
	mu       sync.Mutex
	name     string
	failMsg  string
	items    []T
	loading  bool
	errMsg   string
	gen      uint64
	detached bool
}

// NewCollection returns an empty collection. failMsg is shown when a load fails.
func NewCollection[T any](name, failMsg string) *Collection[T] {
	return &Collection[T]{name: name, failMsg: failMsg}
}

// Load fetches the collection. A result arriving after a newer Load started,
// or after Detach, is discarded.
func (c *Collection[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	items, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached || gen != c.gen {
		return nil
	}
	c.loading = false
	if err != nil {
		log.Printf("dashboard: load %s: %v", c.name, err)
		c.items = nil
		c.errMsg = c.failMsg
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	return nil
}

// Items returns a copy of the loaded items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the message of the last failed load, or "".
func (c *Collection[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Detach drops any in-flight result and ignores future loads. Used when the
// view owning the collection goes away.
func (c *Collection[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
	c.loading = false
}
