package head

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/vango-dev/headkit/pkg/clientwindow"
	"github.com/vango-dev/headkit/pkg/locale"
	"github.com/vango-dev/headkit/pkg/render"
	"github.com/vango-dev/headkit/pkg/theme"
)

// Context is the state of one head render. It is created by
// Renderer.NewContext and must not be shared between requests or used from
// more than one goroutine.
type Context struct {
	std      context.Context
	renderer *Renderer
	w        *render.ResponseWriter
	req      Request

	emitted   *EmittedSet
	scripts   InitScriptQueue
	resources []Component
	written   int

	localeDone bool
	localeTag  language.Tag
	localeErr  error
}

// NewContext starts a render writing to w. If w is a *render.ResponseWriter
// it is used directly so the head shares the page's element stream.
func (r *Renderer) NewContext(std context.Context, w io.Writer, req Request) *Context {
	if std == nil {
		std = context.Background()
	}
	rw, ok := w.(*render.ResponseWriter)
	if !ok {
		rw = render.NewResponseWriter(w)
	}
	return &Context{
		std:      std,
		renderer: r,
		w:        rw,
		req:      req,
		emitted:  NewEmittedSet(),
	}
}

// Context returns the standard context of the render.
func (c *Context) Context() context.Context {
	return c.std
}

// Writer returns the element stream of the render.
func (c *Context) Writer() *render.ResponseWriter {
	return c.w
}

// Request returns the request the render belongs to.
func (c *Context) Request() Request {
	return c.req
}

// Config returns the renderer configuration.
func (c *Context) Config() Config {
	return c.renderer.config
}

// Logger returns the renderer logger.
func (c *Context) Logger() *slog.Logger {
	return c.renderer.logger
}

// Emitted returns the resources written so far.
func (c *Context) Emitted() *EmittedSet {
	return c.emitted
}

// AddInitScript queues a fragment for the initialization script.
func (c *Context) AddInitScript(script string) {
	c.scripts.Add(script)
}

// InitScripts returns the queue of pending initialization fragments.
func (c *Context) InitScripts() *InitScriptQueue {
	return &c.scripts
}

// AddHeadResource registers a component to be written with the head
// resources. Components added while the head resources are being written
// are written in the same pass.
func (c *Context) AddHeadResource(component Component) {
	if component == nil {
		return
	}
	c.resources = append(c.resources, component)
}

// ResourceEmitted reports whether library/name has already been written,
// either by this render or according to the framework tracker.
func (c *Context) ResourceEmitted(library, name string) bool {
	if t := c.renderer.tracker; t != nil && t.IsResourceRendered(library, name) {
		return true
	}
	return c.emitted.Has(ResourceKey{Library: library, Name: name})
}

// EncodeResourceURL prefixes absolute paths with the context path.
// URLs with a scheme or host and paths already under the context path are
// returned unchanged.
func (c *Context) EncodeResourceURL(path string) string {
	cp := c.req.ContextPath
	if cp == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return path
	}
	if path == cp || strings.HasPrefix(path, cp+"/") {
		return path
	}
	return cp + path
}

// Locale returns the locale of the request. The provider is asked once per
// render.
func (c *Context) Locale() (language.Tag, error) {
	if !c.localeDone {
		c.localeTag, c.localeErr = c.renderer.locales.Locale(c.req.HTTP)
		c.localeDone = true
	}
	return c.localeTag, c.localeErr
}

// EncodeInitScripts writes the pending initialization fragments as one
// script element. Pages rendering with MoveScriptsToBottom call it after the
// body to flush fragments queued after the head.
func (c *Context) EncodeInitScripts() error {
	scripts := c.scripts.Drain()
	body, ok := BuildInitScript(scripts, c.renderer.config.MoveScriptsToBottom)
	if !ok {
		return nil
	}
	c.written += len(scripts)
	return writeScript(c, body)
}

func (c *Context) cookiePath() string {
	if c.req.ContextPath == "" {
		return "/"
	}
	return c.req.ContextPath
}

// consumeWindow returns the framework managed window of the request and
// expires its initial redirect marker.
func (c *Context) consumeWindow() *WindowState {
	m, ok := c.req.Window.(*clientwindow.Managed)
	if !ok || m == nil {
		return nil
	}
	redirect := clientwindow.ConsumeInitialRedirect(c.req.HTTP, c.req.Cookies, m.ID(), c.cookiePath())
	return &WindowState{ID: m.ID(), InitialRedirect: redirect}
}

// themeEnv exposes the request to theme expressions. Maps hold any values so
// a missing key evaluates to nil and works with "??".
func (c *Context) themeEnv() theme.Env {
	env := theme.Env{
		"viewId":      c.req.ViewID,
		"contextPath": c.req.ContextPath,
		"secure":      c.req.Secure,
		"param":       map[string]any{},
		"cookie":      map[string]any{},
		"header":      map[string]any{},
	}
	if r := c.req.HTTP; r != nil {
		env["param"] = firstValues(r.URL.Query())
		env["header"] = firstValues(r.Header)
		cookies := make(map[string]any)
		for _, ck := range r.Cookies() {
			if _, seen := cookies[ck.Name]; !seen {
				cookies[ck.Name] = ck.Value
			}
		}
		env["cookie"] = cookies
	}
	if tag, err := c.Locale(); err == nil {
		env["locale"] = locale.String(tag)
	}
	return env
}

func firstValues[M ~map[string][]string](values M) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

