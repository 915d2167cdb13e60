package tilemap

import "fmt"

// FillRect fills cells left <= x < right, top <= y < bottom. With several
// names each cell gets one chosen at random.
func (m *Map) FillRect(names []string, left, right, top, bottom int) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: no tiles to fill with", ErrUnknownTile)
	}
	values := make([]uint8, len(names))
	for i, n := range names {
		v, err := m.Index(n)
		if err != nil {
			return err
		}
		values[i] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			v := values[0]
			if len(values) > 1 {
				v = values[m.rnd.IntN(len(values))]
			}
			m.set(x, y, v)
		}
	}
	return nil
}

// Line sets every cell on the line from (x0, y0) to (x1, y1), both ends
// included, using Bresenham's algorithm.
func (m *Map) Line(name string, x0, y0, x1, y1 int) error {
	v, err := m.Index(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dx, sx := abs(x1-x0), sign(x1-x0)
	dy, sy := -abs(y1-y0), sign(y1-y0)
	e := dx + dy
	for {
		m.set(x0, y0, v)
		if x0 == x1 && y0 == y1 {
			return nil
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// FloodFill replaces the 4-connected region of cells equal to cell (x, y)
// with name and returns the number of cells changed. The fill never leaves
// the rectangle of allocated blocks grown to include (x, y), so filling an
// empty region terminates.
func (m *Map) FloodFill(name string, x, y int) (int, error) {
	v, err := m.Index(name)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.get(x, y)
	if target == v {
		return 0, nil
	}
	minX, minY, maxX, maxY, ok := m.bounds()
	if !ok {
		minX, minY, maxX, maxY = x, y, x+1, y+1
	}
	minX, minY = min(minX, x), min(minY, y)
	maxX, maxY = max(maxX, x+1), max(maxY, y+1)

	type cell struct{ x, y int }
	stack := []cell{{x, y}}
	n := 0
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.x < minX || c.y < minY || c.x >= maxX || c.y >= maxY {
			continue
		}
		if m.get(c.x, c.y) != target {
			continue
		}
		m.set(c.x, c.y, v)
		n++
		stack = append(stack, cell{c.x + 1, c.y}, cell{c.x - 1, c.y}, cell{c.x, c.y + 1}, cell{c.x, c.y - 1})
	}
	return n, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
