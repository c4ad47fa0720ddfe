package assets

import (
	"io/fs"
	"path"
)

// Resolver maps a logical resource to its request path.
type Resolver interface {
	// Resolve returns the URL path of the resource and whether it exists.
	//
	// Example:
	//   resolver.Resolve("primefaces", "moment/moment.js")
	//   // "/resources/primefaces/moment/moment.4d5e6f.js", true
	Resolve(library, name string) (string, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(library, name string) (string, bool)

// Resolve calls f(library, name).
func (f ResolverFunc) Resolve(library, name string) (string, bool) {
	return f(library, name)
}

// manifestResolver resolves only resources recorded in a Manifest.
type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver backed by a Manifest. Resources missing from
// the manifest are reported as not found.
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{
		manifest: m,
		prefix:   prefix,
	}
}

func (r *manifestResolver) Resolve(library, name string) (string, bool) {
	resolved, ok := r.manifest.Lookup(Key(library, name))
	if !ok {
		return "", false
	}
	return r.prefix + resolved, true
}

// fsResolver resolves resources that exist as files in a filesystem laid out
// as <library>/<name>.
type fsResolver struct {
	fsys   fs.FS
	prefix string
}

// NewFSResolver creates a Resolver that reports a resource as found when
// <library>/<name> is a regular file in fsys. Use it in development where no
// manifest is built:
//
//	resolver := assets.NewFSResolver(os.DirFS("resources"), "/resources/")
func NewFSResolver(fsys fs.FS, prefix string) Resolver {
	return &fsResolver{fsys: fsys, prefix: prefix}
}

func (r *fsResolver) Resolve(library, name string) (string, bool) {
	key := path.Clean(Key(library, name))
	if !fs.ValidPath(key) {
		return "", false
	}
	info, err := fs.Stat(r.fsys, key)
	if err != nil || info.IsDir() {
		return "", false
	}
	return r.prefix + key, true
}

// passthrough resolves every resource to prefix + library/name.
type passthrough struct {
	prefix string
}

// NewPassthroughResolver creates a resolver that treats every resource as
// present and returns its path unchanged under prefix.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: prefix}
}

func (p *passthrough) Resolve(library, name string) (string, bool) {
	return p.prefix + Key(library, name), true
}

// Chain returns a Resolver that tries each resolver in order and returns the
// first hit.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(library, name string) (string, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if url, ok := r.Resolve(library, name); ok {
				return url, true
			}
		}
		return "", false
	})
}
