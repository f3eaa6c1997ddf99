package engine

// OrganismID identifies one placed organism for the lifetime of a run.
type OrganismID uint32

// FruitingEvent marks sustained colony contact with the dish edge. It is
// informational: consumers may render a fruiting body at the position,
// but the engine itself does nothing with it.
type FruitingEvent struct {
	Organism OrganismID
	Species  string
	X, Y     float32
	Tick     int64
}

// BranchCount reports one live organism's tip count after a tick.
type BranchCount struct {
	Organism    OrganismID
	Species     string
	Contaminant bool
	Count       int
}

// TickReport summarizes the outcome of a single tick.
type TickReport struct {
	Tick int64

	Advanced int // tips that moved to a new cell
	Spawned  int // sibling tips created by branching
	Starved  int // tips dropped on an exhausted cell

	Removed      []OrganismID  // organisms whose last tip was lost
	BranchCounts []BranchCount // surviving organisms, processing order
	Fruiting     []FruitingEvent
}
