package assets

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// CachePolicy selects the Cache-Control headers of served resources.
type CachePolicy int

const (
	// CacheNone forbids caching. Use it in development.
	CacheNone CachePolicy = iota

	// CacheProduction caches fingerprinted resources forever and everything
	// else for an hour.
	CacheProduction
)

type staticHandler struct {
	fsys   fs.FS
	policy CachePolicy
}

// Handler serves the files of fsys. The request path, with any mount prefix
// already stripped, is the <library>/<name> key of the file.
//
//	mux.Handle("/resources/", http.StripPrefix("/resources/",
//		assets.Handler(os.DirFS("resources"), assets.CacheProduction)))
func Handler(fsys fs.FS, policy CachePolicy) http.Handler {
	return &staticHandler{fsys: fsys, policy: policy}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	key, ok := staticKey(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := h.fsys.Open(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	h.setCacheHeaders(w, key)

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, key, info.ModTime(), rs)
}

// staticKey returns the fs.FS path of a request path, rejecting traversal
// and absolute paths.
func staticKey(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" || strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, `\`) {
		return "", false
	}

	// Dot segments are rejected rather than cleaned so a request never
	// resolves to a different file than it names.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	return clean, true
}

func (h *staticHandler) setCacheHeaders(w http.ResponseWriter, key string) {
	switch h.policy {
	case CacheNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheProduction:
		if isFingerprinted(key) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether the file name carries a content hash of
// at least eight hex digits before its extension, e.g. "theme.a1b2c3d4.css".
func isFingerprinted(key string) bool {
	parts := strings.Split(path.Base(key), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !(('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')) {
			return false
		}
	}
	return true
}
