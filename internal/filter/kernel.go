package filter

import (
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyKernel is returned when a kernel has no weights.
var ErrEmptyKernel = errors.New("filter: empty kernel")

// Gaussian9Weights holds the center weight followed by the one-sided weights
// of the fixed 9-tap Gaussian used by Blur. Tap i applies to both +i and -i,
// so the full kernel sums to 1.
var Gaussian9Weights = [5]float32{0.227027, 0.194595, 0.121622, 0.054054, 0.016216}

// Kernel is a symmetric 1D convolution kernel stored as its center weight
// followed by the weights at offsets 1..Radius.
type Kernel struct {
	half []float32
}

var (
	// Gaussian9 is Gaussian9Weights as a Kernel (radius 4).
	Gaussian9 = Kernel{half: Gaussian9Weights[:]}

	// Binomial5 is the 5-tap binomial {1,4,6,4,1}/16 (radius 2), the
	// default kernel of the cached blur.
	Binomial5 = Kernel{half: []float32{0.375, 0.25, 0.0625}}
)

// NewKernel builds a kernel from its center and one-sided weights. The
// weights are copied and used as given, without normalization.
func NewKernel(half ...float32) (Kernel, error) {
	if len(half) == 0 {
		return Kernel{}, ErrEmptyKernel
	}
	return Kernel{half: append([]float32(nil), half...)}, nil
}

// Radius returns the largest tap offset.
func (k Kernel) Radius() int {
	return len(k.half) - 1
}

// Weight returns the weight at offset i (negative offsets mirror).
// Offsets beyond the radius weigh 0.
func (k Kernel) Weight(i int) float32 {
	if i < 0 {
		i = -i
	}
	if i >= len(k.half) {
		return 0
	}
	return k.half[i]
}

// Taps returns all 2*Radius+1 weights from offset -Radius to +Radius.
func (k Kernel) Taps() []float64 {
	r := k.Radius()
	taps := make([]float64, 0, 2*r+1)
	for i := -r; i <= r; i++ {
		taps = append(taps, float64(k.Weight(i)))
	}
	return taps
}

// Sum returns the total weight of the full kernel.
func (k Kernel) Sum() float64 {
	if len(k.half) == 0 {
		return 0
	}
	return floats.Sum(k.Taps())
}

// IsZero reports whether k has no weights.
func (k Kernel) IsZero() bool {
	return len(k.half) == 0
}

// GaussianKernel returns a normalized Gaussian kernel with standard
// deviation sigma and radius ceil(3*sigma), covering 99.7% of the
// distribution. sigma <= 0 gives the identity kernel. Results are cached.
func GaussianKernel(sigma float64) Kernel {
	return defaultKernelCache.get(sigma)
}

func gaussianKernel(sigma float64) Kernel {
	if sigma <= 0 {
		return Kernel{half: []float32{1}}
	}

	radius := int(math.Ceil(sigma * 3))
	raw := make([]float64, radius+1)
	twoSigmaSq := 2 * sigma * sigma
	for i := range raw {
		x := float64(i)
		raw[i] = math.Exp(-(x * x) / twoSigmaSq)
	}

	// Full kernel total: center once, every other tap twice.
	total := 2*floats.Sum(raw) - raw[0]
	half := make([]float32, len(raw))
	for i, v := range raw {
		half[i] = float32(v / total)
	}
	return Kernel{half: half}
}

// kernelCache caches generated Gaussian kernels keyed by sigma*100.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int]Kernel
	maxLen int
}

var defaultKernelCache = newKernelCache(64)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		cache:  make(map[int]Kernel),
		maxLen: maxLen,
	}
}

func (c *kernelCache) get(sigma float64) Kernel {
	key := int(sigma * 100)

	c.mu.RLock()
	k, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return k
	}

	k = gaussianKernel(sigma)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		// Drop half; kernels are cheap to rebuild.
		n := 0
		for key := range c.cache {
			delete(c.cache, key)
			n++
			if n >= c.maxLen/2 {
				break
			}
		}
	}
	c.cache[key] = k
	c.mu.Unlock()

	return k
}
