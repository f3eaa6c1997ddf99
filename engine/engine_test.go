package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mycolab/mycelium/config"
	"github.com/mycolab/mycelium/environment"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

// testConfig returns a fresh config so tests can mutate catalogs freely.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := New(cfg, 42)
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return e
}

func TestNewValidatesSubstrate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment.Substrate = "velvet"
	if _, err := New(cfg, 42); !errors.Is(err, ErrUnknownSubstrate) {
		t.Errorf("expected ErrUnknownSubstrate, got %v", err)
	}
}

func TestPlaceOrganism(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	id, err := e.PlaceOrganism(center, center, "oyster", false)
	if err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}
	if id == 0 {
		t.Error("expected nonzero organism id")
	}

	snap := e.Snapshot()
	if len(snap.Organisms) != 1 {
		t.Fatalf("expected 1 organism, got %d", len(snap.Organisms))
	}
	org := snap.Organisms[0]
	if org.Species != "oyster" || org.Contaminant {
		t.Errorf("unexpected organism identity: %+v", org)
	}
	if len(org.Branches) != cfg.Growth.InitialTips {
		t.Errorf("expected %d initial branches, got %d", cfg.Growth.InitialTips, len(org.Branches))
	}
	for _, b := range org.Branches {
		if b.X != center || b.Y != center {
			t.Errorf("expected initial branches at placement point, got (%f, %f)", b.X, b.Y)
		}
	}
	if e.TipCount() != cfg.Growth.InitialTips {
		t.Errorf("expected tip count %d, got %d", cfg.Growth.InitialTips, e.TipCount())
	}
}

func TestPlaceOrganismOutOfBounds(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)

	// Outside the disk: silent no-op
	id, err := e.PlaceOrganism(1, 1, "oyster", false)
	if err != nil {
		t.Fatalf("expected out-of-bounds placement to be a no-op, got %v", err)
	}
	if id != 0 {
		t.Errorf("expected zero id for ignored placement, got %d", id)
	}
	if got := len(e.Snapshot().Organisms); got != 0 {
		t.Errorf("expected no organisms, got %d", got)
	}
}

func TestPlaceOrganismUnknownSpecies(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "morel", false); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("expected ErrUnknownSpecies, got %v", err)
	}
	// A colony name is not valid as a contaminant
	if _, err := e.PlaceOrganism(center, center, "oyster", true); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("expected ErrUnknownSpecies for kind mismatch, got %v", err)
	}
}

func TestPlaceOrganismResumesClock(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	e.SetPaused(true)
	report := e.Step()
	if report.Tick != 0 || e.Tick() != 0 {
		t.Errorf("expected paused step to leave tick at 0, got %d", e.Tick())
	}

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}
	if e.Paused() {
		t.Error("expected placement to resume the clock")
	}
	if report := e.Step(); report.Tick != 1 {
		t.Errorf("expected tick 1 after resume, got %d", report.Tick)
	}
}

func TestSetEnvironmentClamps(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)

	ph := 99.0
	e.SetEnvironment(environment.Update{PH: &ph})
	if got := e.Environment().PH; got != cfg.Environment.PHMax {
		t.Errorf("expected ph clamped to %f, got %f", cfg.Environment.PHMax, got)
	}
}

func TestSetSubstrate(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}
	for i := 0; i < 5; i++ {
		e.Step()
	}

	if err := e.SetSubstrate("straw"); err != nil {
		t.Fatalf("failed to set substrate: %v", err)
	}

	snap := e.Snapshot()
	if len(snap.Organisms) != 0 {
		t.Errorf("expected organisms cleared on substrate change, got %d", len(snap.Organisms))
	}
	if snap.Tick != 5 {
		t.Errorf("expected tick preserved at 5, got %d", snap.Tick)
	}
	if snap.Environment.Substrate != "straw" {
		t.Errorf("expected active substrate straw, got %q", snap.Environment.Substrate)
	}
	if snap.Fields.SubstrateNutrient != 80 {
		t.Errorf("expected straw nutrient 80, got %f", snap.Fields.SubstrateNutrient)
	}
	if snap.Fields.Nutrient.Min != 80 || snap.Fields.Nutrient.Max != 80 {
		t.Errorf("expected uniform nutrient 80, got [%f, %f]", snap.Fields.Nutrient.Min, snap.Fields.Nutrient.Max)
	}

	if err := e.SetSubstrate("velvet"); !errors.Is(err, ErrUnknownSubstrate) {
		t.Errorf("expected ErrUnknownSubstrate, got %v", err)
	}
}

func TestReset(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}
	for i := 0; i < 10; i++ {
		e.Step()
	}

	e.Reset()

	snap := e.Snapshot()
	if snap.Tick != 0 {
		t.Errorf("expected tick 0 after reset, got %d", snap.Tick)
	}
	if len(snap.Organisms) != 0 {
		t.Errorf("expected no organisms after reset, got %d", len(snap.Organisms))
	}
	if len(snap.Fruiting) != 0 {
		t.Errorf("expected empty event log after reset, got %d", len(snap.Fruiting))
	}
	if snap.Fields.Nutrient.Min != 100 || snap.Fields.Nutrient.Max != 100 {
		t.Errorf("expected fields restored to [100, 100], got [%f, %f]",
			snap.Fields.Nutrient.Min, snap.Fields.Nutrient.Max)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}
	for i := 0; i < 20; i++ {
		e.Step()
	}

	a := e.Snapshot()
	b := e.Snapshot()
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical snapshots with no intervening command")
	}
}

func TestPausedStepIsNoOp(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}
	for i := 0; i < 5; i++ {
		e.Step()
	}

	before := e.Snapshot()
	e.SetPaused(true)
	for i := 0; i < 5; i++ {
		e.Step()
	}
	e.SetPaused(false)

	after := e.Snapshot()
	before.Paused, after.Paused = false, false
	if !reflect.DeepEqual(before, after) {
		t.Error("expected paused steps to leave state untouched")
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() Snapshot {
		cfg := testConfig(t)
		e := newTestEngine(t, cfg)
		center := float32(cfg.Derived.Center)
		if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
			t.Fatalf("failed to place organism: %v", err)
		}
		if _, err := e.PlaceOrganism(center+40, center, "trichoderma", true); err != nil {
			t.Fatalf("failed to place contaminant: %v", err)
		}
		for i := 0; i < 50; i++ {
			e.Step()
		}
		return e.Snapshot()
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Error("expected identical runs for identical seed and commands")
	}
}
