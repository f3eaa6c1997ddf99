package engine

import (
	"math"
	"testing"
)

// radiusOf returns a branch's distance from the dish center.
func radiusOf(centerX, centerY float64, b BranchState) float64 {
	return math.Hypot(float64(b.X)-centerX, float64(b.Y)-centerY)
}

func TestStepAdvancesBranches(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}

	report := e.Step()
	if report.Tick != 1 {
		t.Errorf("expected tick 1, got %d", report.Tick)
	}
	if report.Advanced != cfg.Growth.InitialTips {
		t.Errorf("expected all %d branches to advance, got %d", cfg.Growth.InitialTips, report.Advanced)
	}

	snap := e.Snapshot()
	org := snap.Organisms[0]
	c := cfg.Derived.Center
	for i, b := range org.Branches {
		if b.Age < 1 {
			t.Errorf("branch %d: expected age >= 1, got %d", i, b.Age)
		}
		if radiusOf(c, c, b) == 0 {
			t.Errorf("branch %d: expected movement away from placement point", i)
		}
	}
	if org.Nutrients <= 0 {
		t.Error("expected organism to accumulate nutrients from advancing")
	}

	// Depletion left a dent in the field
	if snap.Fields.Nutrient.Min >= snap.Fields.Nutrient.Max {
		t.Errorf("expected depleted cells below initial level, got [%f, %f]",
			snap.Fields.Nutrient.Min, snap.Fields.Nutrient.Max)
	}
}

func TestHostileEnvironmentStalls(t *testing.T) {
	cfg := testConfig(t)
	// pH 10 is far beyond every colony tolerance, so growth factor is 0
	cfg.Environment.PH = 10
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}

	for i := 0; i < 30; i++ {
		report := e.Step()
		if report.Advanced != 0 || report.Spawned != 0 || report.Starved != 0 {
			t.Fatalf("expected stalled branches, got advanced=%d spawned=%d starved=%d",
				report.Advanced, report.Spawned, report.Starved)
		}
		if len(report.Removed) != 0 {
			t.Fatal("hostile environment must not kill organisms")
		}
	}

	snap := e.Snapshot()
	org := snap.Organisms[0]
	if len(org.Branches) != cfg.Growth.InitialTips {
		t.Errorf("expected branch count unchanged, got %d", len(org.Branches))
	}
	for _, b := range org.Branches {
		if b.X != center || b.Y != center {
			t.Error("expected stalled branches to hold position")
		}
		if b.Age != 30 {
			t.Errorf("expected stalled branches to keep aging, got age %d", b.Age)
		}
	}
}

func TestStarvationRemovesOrganism(t *testing.T) {
	cfg := testConfig(t)
	cfg.Substrates[0].Nutrient = 0 // agar with nothing to eat
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}

	report := e.Step()
	if report.Starved != cfg.Growth.InitialTips {
		t.Errorf("expected all %d branches to starve, got %d", cfg.Growth.InitialTips, report.Starved)
	}
	if len(report.Removed) != 1 {
		t.Fatalf("expected 1 organism removed, got %d", len(report.Removed))
	}
	if got := len(e.Snapshot().Organisms); got != 0 {
		t.Errorf("expected no live organisms, got %d", got)
	}
	if e.TipCount() != 0 {
		t.Errorf("expected no live tips, got %d", e.TipCount())
	}
}

func TestBranchSpawning(t *testing.T) {
	cfg := testConfig(t)
	cfg.Species[0].BranchProbability = 1.0
	cfg.Growth.BranchNutrientNorm = 50 // certainty on a full cell
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}

	report := e.Step()
	if report.Spawned != cfg.Growth.InitialTips {
		t.Errorf("expected every advancing branch to spawn, got %d", report.Spawned)
	}
	org := e.Snapshot().Organisms[0]
	if len(org.Branches) != 2*cfg.Growth.InitialTips {
		t.Errorf("expected branch count to double, got %d", len(org.Branches))
	}
	// Siblings start at their parent's new position
	if len(report.BranchCounts) != 1 || report.BranchCounts[0].Count != len(org.Branches) {
		t.Errorf("branch count report mismatch: %+v", report.BranchCounts)
	}
}

func TestNoBranchingScenario(t *testing.T) {
	cfg := testConfig(t)
	cfg.Species[0].BranchProbability = 0
	cfg.Growth.HeadingJitter = 0
	cfg.Growth.PlacementJitter = 0
	e := newTestEngine(t, cfg)
	c := cfg.Derived.Center
	center := float32(c)

	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place organism: %v", err)
	}

	tips := cfg.Growth.InitialTips
	prev := make([]float64, tips)
	fruiting := 0
	atBoundary := false

	for i := 0; i < 400; i++ {
		report := e.Step()
		if report.Spawned != 0 {
			t.Fatal("expected no spawning with zero branch probability")
		}
		fruiting += len(report.Fruiting)

		org := e.Snapshot().Organisms[0]
		if len(org.Branches) != tips {
			t.Fatalf("expected stable branch count %d, got %d", tips, len(org.Branches))
		}
		for j, b := range org.Branches {
			r := radiusOf(c, c, b)
			if r < prev[j] {
				t.Fatalf("branch %d radius decreased: %f -> %f", j, prev[j], r)
			}
			prev[j] = r
			if b.BoundaryTicks > 0 {
				atBoundary = true
			}
		}
	}

	if !atBoundary {
		t.Fatal("expected branches to reach the dish boundary")
	}
	// Each branch becomes a fruiting candidate exactly once
	if fruiting != tips {
		t.Errorf("expected %d fruiting events, got %d", tips, fruiting)
	}

	snap := e.Snapshot()
	if len(snap.Fruiting) != tips {
		t.Errorf("expected %d cumulative fruiting events, got %d", tips, len(snap.Fruiting))
	}
	for _, b := range snap.Organisms[0].Branches {
		if int(b.BoundaryTicks) <= cfg.Growth.BoundaryThreshold {
			t.Errorf("expected boundary counter past threshold, got %d", b.BoundaryTicks)
		}
	}
}

func TestContaminantsNeverFruit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Contaminants[0].BranchProbability = 0
	cfg.Growth.HeadingJitter = 0
	cfg.Growth.PlacementJitter = 0
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	if _, err := e.PlaceOrganism(center, center, "trichoderma", true); err != nil {
		t.Fatalf("failed to place contaminant: %v", err)
	}

	for i := 0; i < 400; i++ {
		if report := e.Step(); len(report.Fruiting) != 0 {
			t.Fatal("contaminants must not emit fruiting events")
		}
	}

	snap := e.Snapshot()
	if len(snap.Organisms) != 1 {
		t.Fatalf("expected contaminant to survive, got %d organisms", len(snap.Organisms))
	}
	hit := false
	for _, b := range snap.Organisms[0].Branches {
		if b.BoundaryTicks > int32(cfg.Growth.BoundaryThreshold) {
			hit = true
		}
	}
	if !hit {
		t.Error("expected contaminant branches held at the boundary past the threshold")
	}
}

func TestColoniesProcessedBeforeContaminants(t *testing.T) {
	cfg := testConfig(t)
	e := newTestEngine(t, cfg)
	center := float32(cfg.Derived.Center)

	// Contaminant placed first, colony second: report order still lists
	// the colony first.
	if _, err := e.PlaceOrganism(center+30, center, "trichoderma", true); err != nil {
		t.Fatalf("failed to place contaminant: %v", err)
	}
	if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
		t.Fatalf("failed to place colony: %v", err)
	}

	report := e.Step()
	if len(report.BranchCounts) != 2 {
		t.Fatalf("expected 2 branch counts, got %d", len(report.BranchCounts))
	}
	if report.BranchCounts[0].Contaminant {
		t.Error("expected colony branch counts before contaminants")
	}
	if !report.BranchCounts[1].Contaminant {
		t.Error("expected contaminant branch counts last")
	}
}

func TestSubstrateBonus(t *testing.T) {
	cfg := testConfig(t)

	run := func(substrate string) float64 {
		c := testConfig(t)
		c.Growth.HeadingJitter = 0
		c.Growth.PlacementJitter = 0
		c.Species[0].BranchProbability = 0
		c.Environment.Substrate = substrate
		e := newTestEngine(t, c)
		center := float32(c.Derived.Center)
		if _, err := e.PlaceOrganism(center, center, "oyster", false); err != nil {
			t.Fatalf("failed to place organism: %v", err)
		}
		for i := 0; i < 10; i++ {
			e.Step()
		}
		org := e.Snapshot().Organisms[0]
		return radiusOf(c.Derived.Center, c.Derived.Center, org.Branches[0])
	}

	// Oyster prefers straw, so it spreads faster there than on agar.
	onAgar := run("agar")
	onStraw := run("straw")
	if onStraw <= onAgar {
		t.Errorf("expected faster spread on preferred substrate: straw=%f agar=%f", onStraw, onAgar)
	}
	want := onAgar * cfg.Growth.SubstrateBonus
	if math.Abs(onStraw-want) > 1e-3 {
		t.Errorf("expected straw spread %f (bonus %.1fx), got %f", want, cfg.Growth.SubstrateBonus, onStraw)
	}
}
