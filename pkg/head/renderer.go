package head

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	herrors "github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/assets"
	"github.com/vango-dev/headkit/pkg/locale"
	"github.com/vango-dev/headkit/pkg/theme"
)

// Library is the resource library of the client runtime.
const Library = theme.Library

const (
	iconsStylesheet  = "primeicons/primeicons.css"
	momentScript     = "moment/moment.js"
	validationScript = "validation/validation.bv.js"
)

// LocaleScript returns the name of the client side translation script for a
// language, e.g. "locales/locale-de.js".
func LocaleScript(lang string) string {
	return "locales/locale-" + lang + ".js"
}

// Renderer renders head elements. It holds no per-request state and is safe
// for concurrent use.
type Renderer struct {
	config   Config
	resolver assets.Resolver
	themes   *theme.Resolver
	locales  locale.Provider
	tracker  ResourceTracker
	observer Observer
	logger   *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithResolver sets the resolver mapping resources to URLs.
func WithResolver(r assets.Resolver) Option {
	return func(h *Renderer) {
		h.resolver = r
	}
}

// WithThemeResolver sets the theme resolver.
func WithThemeResolver(r *theme.Resolver) Option {
	return func(h *Renderer) {
		h.themes = r
	}
}

// WithLocaleProvider sets the locale provider.
func WithLocaleProvider(p locale.Provider) Option {
	return func(h *Renderer) {
		h.locales = p
	}
}

// WithTracker sets the framework resource tracker consulted before the
// render's own set of emitted resources.
func WithTracker(t ResourceTracker) Option {
	return func(h *Renderer) {
		h.tracker = t
	}
}

// WithObserver adds an observer. It may be given more than once.
func WithObserver(o Observer) Option {
	return func(h *Renderer) {
		h.observer = MultiObserver(h.observer, o)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Renderer) {
		h.logger = l
	}
}

// NewRenderer creates a Renderer. Without options resources resolve under
// "/resources/", themes are evaluated with expr and the locale is English.
func NewRenderer(cfg Config, opts ...Option) *Renderer {
	if cfg.ProjectStage == "" {
		cfg.ProjectStage = StageProduction
	}
	r := &Renderer{config: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.resolver == nil {
		r.resolver = assets.NewPassthroughResolver("/resources/")
	}
	if r.themes == nil {
		r.themes = theme.NewResolver(nil)
	}
	if r.locales == nil {
		r.locales = locale.Fixed(language.English)
	}
	if r.observer == nil {
		r.observer = MultiObserver()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.config
}

// Render writes the complete head element.
func (r *Renderer) Render(ctx *Context, h Head) error {
	if err := r.EncodeBegin(ctx, h); err != nil {
		return err
	}
	return r.EncodeEnd(ctx, h)
}

// EncodeBegin writes the opening tag and all content up to and including the
// initialization script. The head stays open so components rendered later
// can still contribute to the last facet.
func (r *Renderer) EncodeBegin(ctx *Context, h Head) (err error) {
	defer r.timeRender(ctx, PhaseBegin, time.Now(), &err)

	w := ctx.w
	if err := w.StartElement("head"); err != nil {
		return err
	}
	if h.ID != "" {
		if err := w.WriteAttribute("id", h.ID); err != nil {
			return err
		}
	}

	if err := encodeComponent(ctx, h.First); err != nil {
		return err
	}
	if err := r.encodeTheme(ctx); err != nil {
		return err
	}
	if r.config.PrimeIcons {
		if err := ctx.EncodeCSS(Library, iconsStylesheet); err != nil {
			return err
		}
	}
	if err := encodeComponent(ctx, h.Middle); err != nil {
		return err
	}
	if err := r.encodeHeadResources(ctx); err != nil {
		return err
	}
	if r.config.ClientSideValidation {
		if err := r.encodeValidation(ctx); err != nil {
			return err
		}
	}
	if r.config.ClientSideLocalization {
		if err := r.encodeLocaleScript(ctx); err != nil {
			return err
		}
	}
	if err := r.encodeSettings(ctx); err != nil {
		return err
	}
	return ctx.EncodeInitScripts()
}

// EncodeEnd writes the last facet, closes the head and flushes the writer.
func (r *Renderer) EncodeEnd(ctx *Context, h Head) (err error) {
	defer r.timeRender(ctx, PhaseEnd, time.Now(), &err)

	if err := encodeComponent(ctx, h.Last); err != nil {
		return err
	}
	if err := ctx.w.EndElement("head"); err != nil {
		return err
	}
	ctx.w.Flush()
	return nil
}

func (r *Renderer) timeRender(ctx *Context, phase Phase, start time.Time, err *error) {
	r.observer.RenderCompleted(ctx.std, RenderEvent{
		Phase:       phase,
		ViewID:      ctx.req.ViewID,
		Duration:    time.Since(start),
		Emitted:     ctx.emitted.Len(),
		InitScripts: ctx.written,
		Err:         *err,
	})
}

func (r *Renderer) encodeTheme(ctx *Context) error {
	var env theme.Env
	if _, ok := theme.Expression(r.config.Theme); ok {
		env = ctx.themeEnv()
	}

	res, err := r.themes.Resolve(r.config.Theme, env)
	if err != nil {
		return herrors.New("H002").
			WithDetail(fmt.Sprintf("The theme %q could not be resolved.", r.config.Theme)).
			WithSuggestion("Make the expression return a theme name, \"none\" or an empty string").
			Wrap(err)
	}
	if res == nil {
		return nil
	}
	return ctx.EncodeCSS(res.Library, res.Name)
}

// encodeHeadResources writes registered resources in registration order.
// The length is re-read on every iteration because encoding a resource may
// register more.
func (r *Renderer) encodeHeadResources(ctx *Context) error {
	for i := 0; i < len(ctx.resources); i++ {
		if err := encodeComponent(ctx, ctx.resources[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) encodeValidation(ctx *Context) error {
	if err := ctx.EncodeJS(Library, momentScript); err != nil {
		return err
	}
	if r.config.BeanValidation {
		return ctx.EncodeJS(Library, validationScript)
	}
	return nil
}

// encodeLocaleScript writes the translation script of the request language.
// A missing locale or script is not an error; in development it is logged.
func (r *Renderer) encodeLocaleScript(ctx *Context) error {
	tag, err := ctx.Locale()
	if err == nil {
		err = ctx.EncodeJS(Library, LocaleScript(locale.Language(tag)))
		if err == nil {
			return nil
		}
		var notFound *ResourceNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	if r.config.IsDevelopment() {
		r.logger.LogAttrs(ctx.std, slog.LevelWarn, "Failed to load client side locale.js",
			slog.String("view", ctx.req.ViewID),
			slog.Any("error", herrors.New("H003").Wrap(err)),
		)
	}
	return nil
}

func (r *Renderer) encodeSettings(ctx *Context) error {
	tag, err := ctx.Locale()
	if err != nil {
		return herrors.New("H004").
			WithSuggestion("Configure a default locale or a locale provider that always answers").
			Wrap(err)
	}

	st := SettingsState{
		Locale:      locale.String(tag),
		ViewID:      ctx.req.ViewID,
		ContextPath: ctx.req.ContextPath,
		Secure:      ctx.req.Secure,
		Window:      ctx.consumeWindow(),
	}
	return writeScript(ctx, BuildSettingsScript(r.config, st))
}

