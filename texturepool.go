package texmap

import "image"

// texturePool keeps released backend images keyed by exact size so that
// recycled tiles never reallocate. After warmup, acquire/release are
// zero-alloc.
type texturePool[T any] struct {
	buckets map[uint64][]T
	alloc   func(w, h int) T
	clear   func(T)
	size    func(T) image.Point
}

// poolKey packs width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(uint32(h))
}

// acquire returns a cleared image of exactly (w, h) pixels.
func (p *texturePool[T]) acquire(w, h int) T {
	key := poolKey(w, h)
	if stack := p.buckets[key]; len(stack) > 0 {
		img := stack[len(stack)-1]
		var zero T
		stack[len(stack)-1] = zero
		p.buckets[key] = stack[:len(stack)-1]
		p.clear(img)
		return img
	}
	return p.alloc(w, h)
}

// release returns an image to the pool. It is cleared on the next acquire,
// not here.
func (p *texturePool[T]) release(img T) {
	s := p.size(img)
	key := poolKey(s.X, s.Y)
	if p.buckets == nil {
		p.buckets = make(map[uint64][]T)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// idle returns the number of pooled images waiting for reuse.
func (p *texturePool[T]) idle() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// drain hands every pooled image to free and empties the pool.
func (p *texturePool[T]) drain(free func(T)) {
	for key, stack := range p.buckets {
		for _, img := range stack {
			if free != nil {
				free(img)
			}
		}
		delete(p.buckets, key)
	}
}
