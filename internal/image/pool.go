package image

import "sync"

// Pool is a thread-safe pool for reusing Frame instances.
//
// Pool groups frames by their dimensions so the post-processing chain can
// borrow scratch targets every frame without reallocating them.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Frame
	maxSize int // max frames per bucket
}

type poolKey struct {
	width  int
	height int
}

// NewPool creates a pool keeping at most maxPerBucket frames of each size.
// A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Frame),
		maxSize: maxPerBucket,
	}
}

// Get returns a cleared frame of the requested size.
func (p *Pool) Get(width, height int) (*Frame, error) {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		f := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()
		f.Clear()
		return f, nil
	}
	p.mu.Unlock()

	return NewFrame(width, height)
}

// Put returns a frame to the pool. Nil frames are ignored.
func (p *Pool) Put(f *Frame) {
	if f == nil {
		return
	}
	key := poolKey{width: f.width, height: f.height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, f)
}

// Len returns the number of pooled frames of the given size.
func (p *Pool) Len(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height}])
}
