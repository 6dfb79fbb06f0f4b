// Package usage counts model requests per backend and feature and persists
// the totals between runs.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fastcoding/internal/logging"
)

const fileVersion = "1.0"

// Tracker records usage and saves it to a JSON file.
type Tracker struct {
	mu       sync.Mutex
	data     UsageData
	filePath string
	dirty    bool
}

// NewTracker creates a tracker backed by path. Existing totals are loaded;
// a corrupt file is logged and replaced on the next save.
func NewTracker(path string) (*Tracker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create usage dir: %w", err)
	}

	t := &Tracker{filePath: path, data: emptyData()}
	if err := t.Load(); err != nil {
		logging.StoreError("Failed to load usage from %s: %v", path, err)
		t.data = emptyData()
	}
	return t, nil
}

func emptyData() UsageData {
	return UsageData{
		Version: fileVersion,
		Aggregate: AggregatedStats{
			ByBackend: make(map[string]Counts),
			ByFeature: make(map[string]Counts),
		},
	}
}

// Load reads the usage data from disk. A missing file is not an error.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &t.data); err != nil {
		return err
	}
	if t.data.Aggregate.ByBackend == nil {
		t.data.Aggregate.ByBackend = make(map[string]Counts)
	}
	if t.data.Aggregate.ByFeature == nil {
		t.data.Aggregate.ByFeature = make(map[string]Counts)
	}
	return nil
}

// Save writes the usage data to disk if anything changed since the last save.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirty {
		return nil
	}
	t.data.Updated = time.Now().UTC()
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}
	t.dirty = false
	return nil
}

// Record adds one model request.
func (t *Tracker) Record(backend, feature string, promptChars, outputChars int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	failed := err != nil
	t.data.Aggregate.Total.Add(promptChars, outputChars, failed)
	addToMap(t.data.Aggregate.ByBackend, backend, promptChars, outputChars, failed)
	addToMap(t.data.Aggregate.ByFeature, feature, promptChars, outputChars, failed)
	t.dirty = true
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByBackend = copyCountsMap(stats.ByBackend)
	stats.ByFeature = copyCountsMap(stats.ByFeature)
	return stats
}

// Reset clears all totals.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = emptyData()
	t.dirty = true
}

// Path returns the backing file.
func (t *Tracker) Path() string {
	return t.filePath
}

func copyCountsMap(src map[string]Counts) map[string]Counts {
	dst := make(map[string]Counts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]Counts, key string, prompt, output int, failed bool) {
	entry := m[key]
	entry.Add(prompt, output, failed)
	m[key] = entry
}
