// Package components defines ECS components for branch tips.
package components

// Position is a tip's location in dish coordinates.
type Position struct {
	X, Y float32
}

// Heading is a tip's growth direction in radians.
type Heading struct {
	Angle float32
}

// Tip holds per-branch growth state.
type Tip struct {
	Age           int32 // ticks survived
	BoundaryTicks int32 // consecutive ticks with an out-of-bounds candidate
	Starved       bool  // last advance found an exhausted cell (render hint)
}
