package quality

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adder-go/adder/logging"
)

func TestNewClampsLevel(t *testing.T) {
	c := New(3)
	if c.Level() != 3 {
		t.Fatalf("Level() = %d, want 3", c.Level())
	}
	c.SetLevel(20)
	if c.Level() != 9 {
		t.Fatalf("Level() after SetLevel(20) = %d, want clamped 9", c.Level())
	}
}

func TestRowMatchesTable(t *testing.T) {
	c := New(5)
	if got, want := c.Row(), Table[5]; got != want {
		t.Fatalf("Row() = %+v, want %+v", got, want)
	}
}

func TestFeatureRadiusPixelsScalesByDiagonal(t *testing.T) {
	c := New(0)
	got := c.FeatureRadiusPixels(3, 4)
	want := Table[0].FeatureCRadius * 5 // 3-4-5 triangle
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("FeatureRadiusPixels = %f, want %f", got, want)
	}
}

func TestOverrideTable(t *testing.T) {
	c := New(0)
	var custom [10]Row
	custom[0] = Row{CThreshBaseline: 99, CThreshMax: 100, CIncreaseVelocity: 1, FeatureCRadius: 0.5}
	c.OverrideTable(custom)
	if got := c.Row(); got.CThreshBaseline != 99 {
		t.Fatalf("Row().CThreshBaseline = %d, want 99", got.CThreshBaseline)
	}
}

func TestLoadTableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crf.json")
	data, err := json.Marshal(Table)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := LoadTableFile(path)
	if err != nil {
		t.Fatalf("LoadTableFile: %v", err)
	}
	if got != Table {
		t.Fatalf("LoadTableFile() = %+v, want %+v", got, Table)
	}
}

func TestLoadTableFileMissing(t *testing.T) {
	if _, err := LoadTableFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("LoadTableFile(missing) = nil error, want one")
	}
}

func TestWatchCRFTableReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crf.json")
	if err := os.WriteFile(path, []byte(mustJSON(t, Table)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := New(3)
	w, err := c.WatchCRFTable(path, logging.NoOp{})
	if err != nil {
		t.Fatalf("WatchCRFTable: %v", err)
	}
	defer w.Close()

	var custom [10]Row
	custom[3] = Row{CThreshBaseline: 77, CThreshMax: 111, CIncreaseVelocity: 2, FeatureCRadius: 0.33}
	if err := os.WriteFile(path, []byte(mustJSON(t, custom)), 0o644); err != nil {
		t.Fatalf("rewrite WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Row().CThreshBaseline == 77 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("table was not reloaded within the deadline; Row() = %+v", c.Row())
}

func mustJSON(t *testing.T, v [10]Row) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return string(data)
}
