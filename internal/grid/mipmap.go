package grid

import "math"

// MipChain holds a base grid and progressively halved levels.
//
// Level 0 is the full-resolution grid. Each further level is
// max(1, prev/2) in both dimensions.
type MipChain struct {
	levels []*Grid
}

// MaxLevels returns the number of levels a full chain for a width x height
// grid has, down to a 1x1 level.
func MaxLevels(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return 1 + int(math.Floor(math.Log2(float64(max(width, height)))))
}

// LevelSize returns the dimensions of level n of a chain whose base is
// width x height.
func LevelSize(width, height, n int) (int, int) {
	return max(1, width>>n), max(1, height>>n)
}

// NewMipChain allocates levels zeroed grids for a width x height base.
// levels is clamped to MaxLevels.
func NewMipChain(width, height, levels int) (*MipChain, error) {
	return newMipChain(width, height, levels, nil)
}

// NewMipChainFromPool is like NewMipChain but takes its grids from p.
// Release returns them.
func NewMipChainFromPool(p *Pool, width, height, levels int) (*MipChain, error) {
	return newMipChain(width, height, levels, p)
}

func newMipChain(width, height, levels int, p *Pool) (*MipChain, error) {
	n := min(levels, MaxLevels(width, height))
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}
	m := &MipChain{levels: make([]*Grid, n)}
	for i := range n {
		w, h := LevelSize(width, height, i)
		var (
			g   *Grid
			err error
		)
		if p != nil {
			g, err = p.Get(w, h)
		} else {
			g, err = New(w, h)
		}
		if err != nil {
			return nil, err
		}
		m.levels[i] = g
	}
	return m, nil
}

// Level returns level n, or nil when n is out of range.
func (m *MipChain) Level(n int) *Grid {
	if m == nil || n < 0 || n >= len(m.levels) {
		return nil
	}
	return m.levels[n]
}

// Levels returns the number of levels in the chain.
func (m *MipChain) Levels() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// Release returns every level to p. The chain must not be used afterwards.
func (m *MipChain) Release(p *Pool) {
	if m == nil {
		return
	}
	for i, g := range m.levels {
		p.Put(g)
		m.levels[i] = nil
	}
	m.levels = nil
}
