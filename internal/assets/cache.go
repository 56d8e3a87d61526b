// Package assets resolves image assets off the interactive thread and binds
// them to generation-stamped display slots, so a result arriving after its
// slot was recycled is discarded instead of corrupting the new occupant.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrResourceNotFound reports an asset locator that could not be opened or
// decoded. The slot keeps showing its placeholder.
var ErrResourceNotFound = errors.New("asset resource not found")

// Resolver turns an asset locator into pixel data. Implementations may
// block; the cache always calls them from a background goroutine.
type Resolver interface {
	Resolve(ctx context.Context, assetID string) (image.Image, error)
}

// Slot is a reusable display location. Every reassignment bumps its
// generation, which is how in-flight resolutions detect staleness.
type Slot struct {
	mu  sync.Mutex
	gen uint64
	img image.Image
}

// Recycle clears the slot for new content and returns the new generation.
func (s *Slot) Recycle() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.img = nil
	return s.gen
}

// Generation returns the slot's current generation.
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Image returns the bound pixel data, or nil while the placeholder shows.
func (s *Slot) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// apply binds img if the slot still has the stamped generation.
func (s *Slot) apply(gen uint64, img image.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.img = img
	return true
}

// stillAt reports whether the slot's generation is unchanged.
func (s *Slot) stillAt(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// Arena is a fixed set of slots indexed by display row.
type Arena struct {
	slots []*Slot
}

// NewArena creates an arena of n fresh slots.
func NewArena(n int) *Arena {
	a := &Arena{slots: make([]*Slot, n)}
	for i := range a.slots {
		a.slots[i] = &Slot{}
	}
	return a
}

// Slot returns the slot at index i.
func (a *Arena) Slot(i int) *Slot { return a.slots[i] }

// Len returns the number of slots.
func (a *Arena) Len() int { return len(a.slots) }

// Cache resolves assets asynchronously with an LRU of decoded pixel data in
// front of the resolver.
type Cache struct {
	resolver Resolver
	decoded  *lru.Cache[string, image.Image]
}

// New creates a cache holding up to capacity decoded images.
func New(resolver Resolver, capacity int) (*Cache, error) {
	decoded, err := lru.New[string, image.Image](capacity)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return &Cache{resolver: resolver, decoded: decoded}, nil
}

// Request stamps the slot with its current generation and resolves assetID
// in the background. On completion the result is applied only if the slot's
// generation is unchanged; otherwise it is discarded silently and done is
// not invoked (the slot belongs to different content now). done is optional
// and runs on the background goroutine.
func (c *Cache) Request(ctx context.Context, assetID string, slot *Slot, done func(error)) {
	gen := slot.Generation()
	go func() {
		img, err := c.resolve(ctx, assetID)
		if err != nil {
			if slot.stillAt(gen) && done != nil {
				done(err)
			}
			return
		}
		if !slot.apply(gen, img) {
			return
		}
		if done != nil {
			done(nil)
		}
	}()
}

func (c *Cache) resolve(ctx context.Context, assetID string) (image.Image, error) {
	if img, ok := c.decoded.Get(assetID); ok {
		return img, nil
	}
	img, err := c.resolver.Resolve(ctx, assetID)
	if err != nil {
		return nil, err
	}
	c.decoded.Add(assetID, img)
	return img, nil
}
