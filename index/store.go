package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ManifestFile     = "manifest.json"
	DeclarationsFile = "declarations.json"
	PointersFile     = "pointers.tsv"
	SynopsesFile     = "synopses.tsv"
)

// Store is an index directory: the manifest plus the declarations of every
// indexed file, so unchanged files need not be parsed again.
type Store struct {
	Manifest     Manifest
	Declarations map[string][]Declaration
}

func NewStore() *Store {
	return &Store{
		Manifest:     make(Manifest),
		Declarations: make(map[string][]Declaration),
	}
}

// LoadStore reads the store in dir. Missing files yield an empty store.
func LoadStore(dir string) (*Store, error) {
	s := NewStore()
	m, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	s.Manifest = m

	path := filepath.Join(dir, DeclarationsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read declarations: %w", err)
	}
	if err := json.Unmarshal(data, &s.Declarations); err != nil {
		return nil, fmt.Errorf("decode declarations %s: %w", path, err)
	}
	if s.Declarations == nil {
		s.Declarations = make(map[string][]Declaration)
	}
	return s, nil
}

// Save writes the manifest, the declarations and the pointer and synopsis
// lists into dir.
func (s *Store) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := s.Manifest.Save(filepath.Join(dir, ManifestFile)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Declarations, "", "  ")
	if err != nil {
		return fmt.Errorf("encode declarations: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DeclarationsFile), data, 0o644); err != nil {
		return fmt.Errorf("write declarations: %w", err)
	}

	decls := s.All()
	if err := writeFile(filepath.Join(dir, PointersFile), func(f *os.File) error {
		return WritePointers(f, decls)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, SynopsesFile), func(f *os.File) error {
		return WriteSynopses(f, decls)
	})
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Fresh reports whether path was indexed with the same modification time.
func (s *Store) Fresh(path string, modified int64) bool {
	e, ok := s.Manifest[path]
	if !ok {
		return false
	}
	_, indexed := s.Declarations[path]
	return indexed && e.Modified == modified
}

// Unchanged reports whether path was indexed with the same content. The
// manifest entry is updated to the new modification time when it was.
func (s *Store) Unchanged(path string, modified int64, hash uint64) bool {
	if _, indexed := s.Declarations[path]; !indexed || s.Manifest.Changed(path, modified, hash) {
		return false
	}
	s.Manifest.Set(path, modified, hash)
	return true
}

func (s *Store) Put(path string, modified int64, hash uint64, decls []Declaration) {
	s.Manifest.Set(path, modified, hash)
	if decls == nil {
		decls = []Declaration{}
	}
	s.Declarations[path] = decls
}

// Retain drops every path for which keep returns false and reports how
// many were dropped.
func (s *Store) Retain(keep func(path string) bool) int {
	dropped := 0
	for path := range s.Manifest {
		if !keep(path) {
			delete(s.Manifest, path)
			delete(s.Declarations, path)
			dropped++
		}
	}
	for path := range s.Declarations {
		if !keep(path) {
			delete(s.Declarations, path)
		}
	}
	return dropped
}

// All returns every stored declaration, sorted.
func (s *Store) All() []Declaration {
	var out []Declaration
	for _, decls := range s.Declarations {
		out = append(out, decls...)
	}
	Sort(out)
	return out
}
