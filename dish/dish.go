// Package dish defines the circular substrate's coordinate space.
package dish

import "math"

// Dish is a disk of Radius cells centered in a square bounding box of
// Size cells. Cell arrays cover the whole box; only positions within the
// disk are valid substrate.
type Dish struct {
	Size   int
	Center float32
	Radius float32
}

// New creates a dish geometry.
func New(size int, radius float64) Dish {
	return Dish{
		Size:   size,
		Center: float32(size) / 2,
		Radius: float32(radius),
	}
}

// InBounds reports whether a position lies on the substrate disk.
func (d Dish) InBounds(x, y float32) bool {
	dx := float64(x - d.Center)
	dy := float64(y - d.Center)
	return math.Sqrt(dx*dx+dy*dy) <= float64(d.Radius)
}

// Cell maps a position to its containing cell, clamped to the bounding box.
func (d Dish) Cell(x, y float32) (int, int) {
	cx := int(x)
	cy := int(y)
	if cx < 0 {
		cx = 0
	} else if cx >= d.Size {
		cx = d.Size - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= d.Size {
		cy = d.Size - 1
	}
	return cx, cy
}

// CellInBounds reports whether a cell center lies on the substrate disk.
func (d Dish) CellInBounds(cx, cy int) bool {
	return d.InBounds(float32(cx)+0.5, float32(cy)+0.5)
}

// RadiusAt returns the distance of a position from the dish center.
func (d Dish) RadiusAt(x, y float32) float64 {
	dx := float64(x - d.Center)
	dy := float64(y - d.Center)
	return math.Sqrt(dx*dx + dy*dy)
}
