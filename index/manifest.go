package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Entry is what a rescan compares to decide whether a file changed.
type Entry struct {
	Modified int64  `json:"modified"`
	Hash     uint64 `json:"hash"`
}

// Manifest maps file paths to their last indexed state.
type Manifest map[string]Entry

func Hash(text string) uint64 {
	return xxhash.Sum64String(text)
}

// LoadManifest reads a manifest file. A missing file is an empty manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(Manifest), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := make(Manifest)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

func (m Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Changed reports whether path is new or its content hash differs. An
// unchanged timestamp counts as unchanged content.
func (m Manifest) Changed(path string, modified int64, hash uint64) bool {
	e, ok := m[path]
	if !ok {
		return true
	}
	if e.Modified == modified {
		return false
	}
	return e.Hash != hash
}

func (m Manifest) Set(path string, modified int64, hash uint64) {
	m[path] = Entry{Modified: modified, Hash: hash}
}
