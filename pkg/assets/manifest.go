// Package assets resolves logical (library, name) resource pairs to request
// paths.
//
// A build step may fingerprint resources and record the mapping in a
// manifest.json keyed by "library/name":
//
//	{
//	  "primefaces/primeicons/primeicons.css": "primefaces/primeicons/primeicons.1f2e3d.css",
//	  "primefaces-saga-blue/theme.css": "primefaces-saga-blue/theme.9a8b7c.css"
//	}
//
// The manifest can be read from disk, fetched from S3, and reloaded whenever
// the file changes. Resolvers combine a lookup strategy with a URL prefix:
//
//	manifest, _ := assets.Load("dist/manifest.json")
//	resolver := assets.NewResolver(manifest, "/resources/")
//	resolver.Resolve("primefaces", "moment/moment.js")
//	// "/resources/primefaces/moment/moment.4d5e6f.js", true
package assets

import (
	"encoding/json"
	"os"
	"sync"
)

// Manifest holds the mapping from logical resource keys to fingerprinted
// paths. It is safe for concurrent use.
type Manifest struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// Key returns the manifest key of a library resource.
func Key(library, name string) string {
	if library == "" {
		return name
	}
	return library + "/" + name
}

// Load reads a manifest.json file and returns a Manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes manifest JSON: {"library/name": "library/name.hash.ext"}.
func Parse(data []byte) (*Manifest, error) {
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Manifest{entries: entries}, nil
}

// Lookup returns the fingerprinted path for key and whether it exists.
func (m *Manifest) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, ok := m.entries[key]
	return resolved, ok
}

// Has returns true if the manifest contains the given key.
func (m *Manifest) Has(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Set adds or updates an entry in the manifest.
func (m *Manifest) Set(key, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = resolved
}

// Replace swaps all entries at once. Readers see either the old or the new
// mapping, never a mix.
func (m *Manifest) Replace(other *Manifest) {
	entries := other.All()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = entries
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// All returns a copy of all manifest entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		result[k] = v
	}
	return result
}
