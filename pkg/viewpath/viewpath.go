// Package viewpath normalizes the request paths that name views.
//
// A view id is derived from the request path, so two spellings of the same
// path would otherwise render with different ids. Clean returns the single
// canonical spelling and rejects paths that cannot name a view at all.
package viewpath

import (
	"errors"
	"strings"
)

// Errors returned by Clean.
var (
	ErrBackslash     = errors.New("viewpath: path contains backslash")
	ErrNullByte      = errors.New("viewpath: path contains null byte")
	ErrInvalidEscape = errors.New("viewpath: invalid percent escape")
	ErrEscapesRoot   = errors.New("viewpath: path escapes root via ..")
)

// Clean returns the canonical form of an escaped URL path: a leading slash,
// no empty or "." segments, ".." resolved and no trailing slash except for
// the root. changed reports whether the result differs from path.
func Clean(path string) (clean string, changed bool, err error) {
	if strings.Contains(path, `\`) {
		return "", false, ErrBackslash
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", false, ErrNullByte
	}
	if !validEscapes(path) {
		return "", false, ErrInvalidEscape
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return "", false, ErrEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	clean = "/" + strings.Join(segments, "/")
	return clean, clean != path, nil
}

func validEscapes(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2]) {
			return false
		}
		i += 2
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
