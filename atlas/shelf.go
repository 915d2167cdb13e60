package atlas

import "fmt"

// region is a rectangle on an atlas page, in page pixels.
type region struct {
	X, Y          int
	Width, Height int
}

func (r region) valid() bool { return r.Width > 0 && r.Height > 0 }

func (r region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is one horizontal strip of a page.
type shelf struct {
	y      int
	height int
	nextX  int
}

// shelfPacker places rectangles on horizontal shelves: a rectangle goes on
// the first shelf wide and tall enough for it, or on a new shelf below the
// last one. A shelf's height is fixed by its first rectangle. Placed
// rectangles never move.
type shelfPacker struct {
	width, height int
	shelves       []shelf
	used          int
}

func newShelfPacker(width, height int) *shelfPacker {
	return &shelfPacker{width: width, height: height}
}

// place returns a region of the requested size, or an invalid region when
// the page has no room.
func (p *shelfPacker) place(w, h int) region {
	if w <= 0 || h <= 0 || w > p.width || h > p.height {
		return region{}
	}
	for i := range p.shelves {
		s := &p.shelves[i]
		if s.nextX+w > p.width || h > s.height {
			continue
		}
		r := region{X: s.nextX, Y: s.y, Width: w, Height: h}
		s.nextX += w
		p.used += w * h
		return r
	}

	y := 0
	if n := len(p.shelves); n > 0 {
		y = p.shelves[n-1].y + p.shelves[n-1].height
	}
	if y+h > p.height {
		return region{}
	}
	p.shelves = append(p.shelves, shelf{y: y, height: h, nextX: w})
	p.used += w * h
	return region{X: 0, Y: y, Width: w, Height: h}
}

// utilization returns the fraction of the page covered by placed rectangles.
func (p *shelfPacker) utilization() float64 {
	total := p.width * p.height
	if total == 0 {
		return 0
	}
	return float64(p.used) / float64(total)
}
