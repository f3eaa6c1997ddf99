package telemetry

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/mycolab/mycelium/engine"
)

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("expected no error for disabled output, got %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager when output disabled")
	}

	// All methods are safe on the nil manager
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("WriteStats on nil manager: %v", err)
	}
	if err := om.WriteFruiting([]engine.FruitingEvent{{Organism: 1}}); err != nil {
		t.Errorf("WriteFruiting on nil manager: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("expected empty dir, got %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestWriteStatsHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("failed to create output manager: %v", err)
	}

	if err := om.WriteStats(WindowStats{WindowEndTick: 100, Colonies: 1}); err != nil {
		t.Fatalf("failed to write stats: %v", err)
	}
	if err := om.WriteStats(WindowStats{WindowEndTick: 200, Colonies: 2}); err != nil {
		t.Fatalf("failed to write stats: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("failed to open stats.csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse stats.csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "window_end" {
		t.Errorf("expected window_end header, got %q", rows[0][0])
	}
	if rows[1][0] != "100" || rows[2][0] != "200" {
		t.Errorf("unexpected data rows: %v, %v", rows[1], rows[2])
	}
}

func TestWriteFruiting(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("failed to create output manager: %v", err)
	}

	// Empty batches write nothing, not even headers
	if err := om.WriteFruiting(nil); err != nil {
		t.Fatalf("failed on empty batch: %v", err)
	}

	events := []engine.FruitingEvent{
		{Organism: 1, Species: "oyster", X: 10, Y: 20, Tick: 150},
		{Organism: 2, Species: "shiitake", X: 30, Y: 40, Tick: 150},
	}
	if err := om.WriteFruiting(events); err != nil {
		t.Fatalf("failed to write events: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatalf("failed to open events.csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse events.csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "tick" {
		t.Errorf("expected tick header, got %q", rows[0][0])
	}
	if rows[1][2] != "oyster" || rows[2][2] != "shiitake" {
		t.Errorf("unexpected species columns: %v, %v", rows[1], rows[2])
	}
}
