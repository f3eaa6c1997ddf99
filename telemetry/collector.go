// Package telemetry aggregates tick reports into windowed statistics and
// writes them to structured logs and CSV files. It consumes only the
// engine's public report and snapshot types.
package telemetry

import (
	"github.com/mycolab/mycelium/engine"
)

// Collector accumulates tick events over a stats window.
type Collector struct {
	centerX, centerY float64

	windowStart int64
	advanced    int
	spawned     int
	starved     int
	removed     int
	fruiting    int
	placements  int
}

// NewCollector creates a collector. The dish center is needed to derive
// branch radius statistics from snapshots.
func NewCollector(centerX, centerY float64) *Collector {
	return &Collector{centerX: centerX, centerY: centerY}
}

// Record accumulates one tick report into the current window.
func (c *Collector) Record(r engine.TickReport) {
	c.advanced += r.Advanced
	c.spawned += r.Spawned
	c.starved += r.Starved
	c.removed += len(r.Removed)
	c.fruiting += len(r.Fruiting)
}

// RecordPlacement counts a host-issued organism placement.
func (c *Collector) RecordPlacement() {
	c.placements++
}

// Flush closes the current window against a snapshot, returning its
// stats and resetting the accumulators.
func (c *Collector) Flush(snap engine.Snapshot) WindowStats {
	stats := computeWindowStats(snap, c.centerX, c.centerY)
	stats.WindowStartTick = c.windowStart
	stats.WindowEndTick = snap.Tick
	stats.Advanced = c.advanced
	stats.Spawned = c.spawned
	stats.Starved = c.starved
	stats.Removed = c.removed
	stats.Fruiting = c.fruiting
	stats.Placements = c.placements

	c.windowStart = snap.Tick
	c.advanced = 0
	c.spawned = 0
	c.starved = 0
	c.removed = 0
	c.fruiting = 0
	c.placements = 0

	return stats
}
