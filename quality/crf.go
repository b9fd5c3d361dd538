// Package quality implements the constant-rate-factor (CRF) controller
// that maps a single 0-9 quality dial to the pixel arena's contrast
// thresholds, grounded on the rate controller's CRF table.
package quality

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/adder-go/adder/logging"
)

// Row is one CRF table entry.
type Row struct {
	CThreshBaseline   uint8
	CThreshMax        uint8
	CIncreaseVelocity uint8
	FeatureCRadius    float64 // fraction of plane diagonal
}

// Table is the built-in 10-row CRF lookup, index 0 (highest quality, most
// events) through 9 (lowest quality, fewest events).
var Table = [10]Row{
	{CThreshBaseline: 0, CThreshMax: 30, CIncreaseVelocity: 1, FeatureCRadius: 0.02},
	{CThreshBaseline: 2, CThreshMax: 35, CIncreaseVelocity: 1, FeatureCRadius: 0.03},
	{CThreshBaseline: 4, CThreshMax: 40, CIncreaseVelocity: 1, FeatureCRadius: 0.04},
	{CThreshBaseline: 6, CThreshMax: 50, CIncreaseVelocity: 2, FeatureCRadius: 0.05},
	{CThreshBaseline: 8, CThreshMax: 60, CIncreaseVelocity: 2, FeatureCRadius: 0.06},
	{CThreshBaseline: 10, CThreshMax: 70, CIncreaseVelocity: 3, FeatureCRadius: 0.07},
	{CThreshBaseline: 14, CThreshMax: 85, CIncreaseVelocity: 3, FeatureCRadius: 0.08},
	{CThreshBaseline: 18, CThreshMax: 100, CIncreaseVelocity: 4, FeatureCRadius: 0.10},
	{CThreshBaseline: 24, CThreshMax: 115, CIncreaseVelocity: 5, FeatureCRadius: 0.12},
	{CThreshBaseline: 32, CThreshMax: 127, CIncreaseVelocity: 6, FeatureCRadius: 0.15},
}

// Crf selects a row from Table (or an overridden table) and exposes
// the derived thresholds for a given plane's feature radius in pixels.
type Crf struct {
	mu    sync.RWMutex
	level uint8
	table [10]Row
}

// New builds a Crf at the given level (clamped to [0,9]) using the
// built-in Table.
func New(level uint8) *Crf {
	c := &Crf{table: Table}
	c.SetLevel(level)
	return c
}

// SetLevel changes the active CRF level, clamped to [0,9].
func (c *Crf) SetLevel(level uint8) {
	if level > 9 {
		level = 9
	}
	c.mu.Lock()
	c.level = level
	c.mu.Unlock()
}

// Level returns the active CRF level.
func (c *Crf) Level() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// Row returns the active row.
func (c *Crf) Row() Row {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table[c.level]
}

// FeatureRadiusPixels scales the active row's feature_c_radius fraction by
// a plane's diagonal length.
func (c *Crf) FeatureRadiusPixels(width, height uint16) float64 {
	row := c.Row()
	diag := floats.Norm([]float64{float64(width), float64(height)}, 2)
	return row.FeatureCRadius * diag
}

// OverrideTable replaces the active table wholesale, e.g. after loading a
// tuned table from disk.
func (c *Crf) OverrideTable(t [10]Row) {
	c.mu.Lock()
	c.table = t
	c.mu.Unlock()
}

// LoadTableFile reads a JSON-encoded [10]Row array from path.
func LoadTableFile(path string) ([10]Row, error) {
	var t [10]Row
	data, err := os.ReadFile(path)
	if err != nil {
		return t, errors.Wrap(err, "read crf table file")
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, errors.Wrap(err, "decode crf table file")
	}
	return t, nil
}

// WatchCRFTable watches path for changes and calls c.OverrideTable with
// the reloaded contents each time it's written, logging failures through
// log rather than returning them (the watch loop runs for the life of the
// process). The returned fsnotify.Watcher must be closed by the caller to
// stop watching.
func (c *Crf) WatchCRFTable(path string, log logging.Logger) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create crf table watcher")
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "watch crf table file")
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				t, err := LoadTableFile(path)
				if err != nil {
					log.Log(logging.ErrorLevel, "reload crf table", "error", err)
					continue
				}
				c.OverrideTable(t)
				log.Log(logging.InfoLevel, "reloaded crf table", "path", path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Log(logging.ErrorLevel, "crf table watcher error", "error", err)
			}
		}
	}()
	return w, nil
}
