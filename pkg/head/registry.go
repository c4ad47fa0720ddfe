package head

// ResourceKey identifies a stylesheet or script by library and name.
// Comparison is exact and case sensitive.
type ResourceKey struct {
	Library string
	Name    string
}

// String returns "library:name".
func (k ResourceKey) String() string {
	return k.Library + ":" + k.Name
}

// EmittedSet records the resources written during one render.
// It is owned by a single Context and is not safe for concurrent use.
type EmittedSet struct {
	keys map[ResourceKey]struct{}
}

// NewEmittedSet returns an empty set.
func NewEmittedSet() *EmittedSet {
	return &EmittedSet{keys: make(map[ResourceKey]struct{})}
}

// Has reports whether key was marked.
func (s *EmittedSet) Has(key ResourceKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Mark records key and reports whether it was not already present.
func (s *EmittedSet) Mark(key ResourceKey) bool {
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of marked keys.
func (s *EmittedSet) Len() int {
	return len(s.keys)
}

// ResourceTracker is implemented by frameworks that track resources rendered
// outside the head renderer, for example by a page template.
type ResourceTracker interface {
	IsResourceRendered(library, name string) bool
}

// ResourceTrackerFunc adapts a function to ResourceTracker.
type ResourceTrackerFunc func(library, name string) bool

// IsResourceRendered calls f(library, name).
func (f ResourceTrackerFunc) IsResourceRendered(library, name string) bool {
	return f(library, name)
}
