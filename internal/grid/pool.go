package grid

import "sync"

// Pool reuses grids of identical dimensions across frames.
//
// Thread safety: all methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Grid
	maxSize int // max grids per bucket, 0 = unlimited
}

type poolKey struct {
	width  int
	height int
}

// NewPool creates a pool retaining at most maxPerBucket grids per size.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Grid),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed grid of the requested size, reusing a pooled one
// when available.
func (p *Pool) Get(width, height int) (*Grid, error) {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		g := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()
		g.Clear()
		return g, nil
	}
	p.mu.Unlock()

	return New(width, height)
}

// Put returns g to the pool. Nil grids and grids beyond the bucket limit
// are dropped.
func (p *Pool) Put(g *Grid) {
	if g == nil {
		return
	}
	key := poolKey{width: g.width, height: g.height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, g)
}

// Len returns the number of pooled grids across all sizes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
