package filter

import (
	"math"
	"sync"
)

// GaussianWeights returns the one-sided weights of the blur kernel for the
// given radius: w[0] = 1 for the centre tap and
// w[i] = exp(-(2i/radius)^2 / 2) for 0 < i < ceil(radius).
// The weights are not normalized; see WeightSum.
//
// A radius whose ceiling is at most 1 yields only the centre tap, which
// makes the blur an identity.
func GaussianWeights(radius float32) []float32 {
	irad := int(math.Ceil(float64(radius)))
	if irad <= 1 || math.IsNaN(float64(radius)) {
		return []float32{1}
	}
	w := make([]float32, irad)
	w[0] = 1
	for i := 1; i < irad; i++ {
		x := float64(i) / float64(radius) * 2
		w[i] = float32(math.Exp(x * x / -2))
	}
	return w
}

// WeightSum returns the total weight of the symmetric kernel described by
// one-sided weights w.
func WeightSum(w []float32) float32 {
	sum := w[0]
	for _, v := range w[1:] {
		sum += 2 * v
	}
	return sum
}

// kernelCache caches computed kernels to avoid recomputation.
// Key is radius * 100 (to handle float precision), value is kernel.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int][]float32
	maxLen int
}

var defaultKernelCache = newKernelCache(64)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		cache:  make(map[int][]float32),
		maxLen: maxLen,
	}
}

// get retrieves a kernel from cache or generates and caches it.
func (c *kernelCache) get(radius float32) []float32 {
	key := int(radius * 100)

	c.mu.RLock()
	if kernel, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return kernel
	}
	c.mu.RUnlock()

	kernel := GaussianWeights(radius)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		// Drop half the entries.
		count := 0
		for k := range c.cache {
			delete(c.cache, k)
			count++
			if count >= c.maxLen/2 {
				break
			}
		}
	}
	c.cache[key] = kernel
	c.mu.Unlock()

	return kernel
}

// CachedGaussianWeights returns cached weights for the radius.
func CachedGaussianWeights(radius float32) []float32 {
	return defaultKernelCache.get(radius)
}
