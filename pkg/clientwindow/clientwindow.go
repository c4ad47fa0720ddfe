// Package clientwindow identifies browser tabs of the same session.
//
// Every tab carries a window id in the jfwid query parameter. When a request
// arrives without one, the server assigns a fresh id, sets a one-shot
// "initial redirect" cookie and redirects to the same URL with the id added.
// The page rendered after that redirect reads the cookie, tells the client
// runtime that it is the redirect target, and expires the cookie so the
// marker is observed exactly once.
package clientwindow

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// QueryParam is the request parameter carrying the window id.
const QueryParam = "jfwid"

// InitialRedirectCookiePrefix prefixes the one-shot redirect marker cookie.
const InitialRedirectCookiePrefix = "pf.initialredirect-"

// Window is a client window attached to a request.
type Window interface {
	ID() string
}

// Managed is the client window kind managed by this package. Windows of
// other kinds come from foreign mechanisms and are ignored by the head
// renderer.
type Managed struct {
	id string
}

// NewManaged returns a Managed window with the given id.
func NewManaged(id string) *Managed {
	return &Managed{id: id}
}

// ID implements Window.
func (w *Managed) ID() string {
	return w.id
}

// NewID generates a new window id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// FromRequest returns the managed window named by the request, or nil when
// the request carries no window id.
func FromRequest(r *http.Request) *Managed {
	if r == nil {
		return nil
	}
	id := r.URL.Query().Get(QueryParam)
	if id == "" {
		return nil
	}
	return NewManaged(id)
}

// SecureWindowID makes a window id safe to embed in a single-quoted
// JavaScript string literal.
func SecureWindowID(id string) string {
	return template.JSEscapeString(id)
}

// InitialRedirectCookieName returns the marker cookie name for a window.
func InitialRedirectCookieName(windowID string) string {
	return InitialRedirectCookiePrefix + windowID
}

// CookieSetter receives cookies to add to the outgoing response.
type CookieSetter interface {
	SetCookie(c *http.Cookie)
}

// ResponseCookies adapts an http.ResponseWriter to CookieSetter.
type ResponseCookies struct {
	http.ResponseWriter
}

// SetCookie adds a Set-Cookie header to the response.
func (rc ResponseCookies) SetCookie(c *http.Cookie) {
	http.SetCookie(rc.ResponseWriter, c)
}

// HasInitialRedirect reports whether the request carries the redirect marker
// for windowID. It has no side effects.
func HasInitialRedirect(r *http.Request, windowID string) bool {
	if r == nil || windowID == "" {
		return false
	}
	_, err := r.Cookie(InitialRedirectCookieName(windowID))
	return err == nil
}

// ConsumeInitialRedirect reports whether the request carries the redirect
// marker for windowID and, if so, expires the marker on the response.
func ConsumeInitialRedirect(r *http.Request, sink CookieSetter, windowID, path string) bool {
	if !HasInitialRedirect(r, windowID) {
		return false
	}
	if sink != nil {
		sink.SetCookie(&http.Cookie{
			Name:     InitialRedirectCookieName(windowID),
			Value:    "",
			Path:     cookiePath(path),
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	return true
}

// AssignAndRedirect gives a request without a window id a fresh one: it sets
// the redirect marker and redirects to the same URL with the id appended.
// It returns the new id.
func AssignAndRedirect(w http.ResponseWriter, r *http.Request, path string) string {
	id := NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     InitialRedirectCookieName(id),
		Value:    "true",
		Path:     cookiePath(path),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	target := *r.URL
	q := target.Query()
	q.Set(QueryParam, id)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, (&url.URL{Path: target.Path, RawQuery: target.RawQuery}).String(), http.StatusFound)
	return id
}

func cookiePath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
