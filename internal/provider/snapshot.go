package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"mywbem/internal/engine"
	"mywbem/internal/repo"
)

// Snapshot is the serialized form of a populated mock server: every
// namespace's stores plus the provider registry's identity map.
type Snapshot struct {
	Namespaces []repo.NamespaceExport `json:"namespaces"`
	Providers  []Entry                `json:"providers,omitempty"`
}

// Save writes a snapshot of the repository and registry as indented
// JSON.
func Save(w io.Writer, r *repo.Repository, reg *Registry) error {
	snap := Snapshot{Namespaces: r.Export()}
	if reg != nil {
		snap.Providers = reg.Entries()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Load reads a snapshot and rebuilds the repository and registry. The
// factory maps provider identities to provider values.
func Load(rd io.Reader, factory map[string]Provider) (*repo.Repository, *Registry, error) {
	var snap Snapshot
	if err := json.NewDecoder(rd).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	r := repo.New()
	if err := r.Import(snap.Namespaces); err != nil {
		return nil, nil, err
	}
	reg := NewRegistry(r)
	if err := reg.Restore(snap.Providers, factory); err != nil {
		return nil, nil, err
	}
	return r, reg, nil
}

// SaveFile writes a snapshot to a file.
func SaveFile(path string, r *repo.Repository, reg *Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()
	return Save(f, r, reg)
}

// LoadFile reads a snapshot from a file.
func LoadFile(path string, factory map[string]Provider) (*repo.Repository, *Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return Load(f, factory)
}

// NewDispatcherFromSnapshot is a convenience for test setups: load a
// snapshot file and wire a dispatcher over it.
func NewDispatcherFromSnapshot(path string, factory map[string]Provider) (*Dispatcher, error) {
	r, reg, err := LoadFile(path, factory)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(reg, engine.New(r)), nil
}
