package head

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/text/language"

	herrors "github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/assets"
	"github.com/vango-dev/headkit/pkg/clientwindow"
	"github.com/vango-dev/headkit/pkg/locale"
	"github.com/vango-dev/headkit/pkg/render"
	"github.com/vango-dev/headkit/pkg/theme"
)

const (
	themeLink = `<link type="text/css" rel="stylesheet" href="/resources/primefaces/primefaces-saga-blue/theme.css">`
	iconsLink = `<link type="text/css" rel="stylesheet" href="/resources/primefaces/primeicons/primeicons.css">`
)

func renderHead(t *testing.T, r *Renderer, req Request, h Head, setup ...func(*Context)) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	ctx := r.NewContext(context.Background(), &buf, req)
	for _, fn := range setup {
		fn(ctx)
	}
	err := r.Render(ctx, h)
	return buf.String(), err
}

func mustRender(t *testing.T, r *Renderer, req Request, h Head, setup ...func(*Context)) string {
	t.Helper()
	out, err := renderHead(t, r, req, h, setup...)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return out
}

func manifestResolver(keys ...string) assets.Resolver {
	m := assets.NewManifest()
	for _, k := range keys {
		m.Set(k, k)
	}
	return assets.NewResolver(m, "/resources/")
}

func TestRenderDefaults(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	got := mustRender(t, r, Request{ViewID: "/index.xhtml"}, Head{ID: "j_idt2"})

	want := `<head id="j_idt2">` + themeLink + iconsLink +
		"<script>if(window.PrimeFaces){" +
		"PrimeFaces.settings.locale='en';" +
		"PrimeFaces.settings.viewId='/index.xhtml';" +
		"PrimeFaces.settings.contextPath='';" +
		"PrimeFaces.settings.cookiesSecure=false;" +
		"PrimeFaces.settings.cookiesSameSite='Strict';" +
		"PrimeFaces.settings.validateEmptyFields=false;" +
		"PrimeFaces.settings.considerEmptyStringNull=false;" +
		"}</script></head>"
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClientSideValidation = true
	cfg.BeanValidation = true
	cfg.ClientSideLocalization = true
	r := NewRenderer(cfg, WithLocaleProvider(locale.Fixed(language.MustParse("de-CH"))))

	h := Head{
		First:  Raw(`<meta charset="utf-8">`),
		Middle: Raw(`<title>Orders</title>`),
		Last:   Raw(`<style>.x{}</style>`),
	}
	got := mustRender(t, r, Request{ViewID: "/orders.xhtml"}, h, func(ctx *Context) {
		ctx.AddHeadResource(Script("primefaces", "core.js"))
		ctx.AddHeadResource(Stylesheet("app", "site.css"))
		ctx.AddInitScript("PrimeFaces.cw('Panel')")
	})

	parts := []string{
		`<head>`,
		`<meta charset="utf-8">`,
		themeLink,
		iconsLink,
		`<title>Orders</title>`,
		`<script src="/resources/primefaces/core.js"></script>`,
		`<link type="text/css" rel="stylesheet" href="/resources/app/site.css">`,
		`<script src="/resources/primefaces/moment/moment.js"></script>`,
		`<script src="/resources/primefaces/validation/validation.bv.js"></script>`,
		`<script src="/resources/primefaces/locales/locale-de.js"></script>`,
		`<script>if(window.PrimeFaces){PrimeFaces.settings.locale='de_CH';`,
		`<script>(function(){const pfInit=() => {PrimeFaces.cw('Panel');};`,
		`<style>.x{}</style>`,
		`</head>`,
	}
	pos := 0
	for _, p := range parts {
		i := strings.Index(got[pos:], p)
		if i < 0 {
			t.Fatalf("%q not found after offset %d in\n%s", p, pos, got)
		}
		pos += i + len(p)
	}
}

func TestRenderParsesAsHead(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClientSideValidation = true
	r := NewRenderer(cfg)
	out := mustRender(t, r, Request{}, Head{ID: "head"}, func(ctx *Context) {
		ctx.AddInitScript("init()")
	})

	doc, err := html.Parse(strings.NewReader("<!DOCTYPE html><html>" + out + "<body></body></html>"))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}

	var headNode *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "head" {
			headNode = n
			return
		}
		for c := n.FirstChild; c != nil && headNode == nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	if headNode == nil {
		t.Fatal("no head element")
	}

	var got []string
	for c := headNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			got = append(got, c.Data)
		}
	}
	want := "link,link,script,script,script"
	if strings.Join(got, ",") != want {
		t.Errorf("head children = %v, want %s", got, want)
	}
	for _, a := range headNode.Attr {
		if a.Key == "id" && a.Val != "head" {
			t.Errorf("id = %q, want head", a.Val)
		}
	}
}

func TestRenderDeduplicatesResources(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	got := mustRender(t, r, Request{}, Head{
		Middle: Group(Stylesheet("primefaces", "primeicons/primeicons.css"), Script("app", "a.js")),
	}, func(ctx *Context) {
		res := theme.ForTheme(theme.Default)
		ctx.AddHeadResource(Stylesheet(res.Library, res.Name))
		ctx.AddHeadResource(Script("app", "a.js"))
		ctx.AddHeadResource(Script("app", "a.js"))
		ctx.AddHeadResource(Script("App", "a.js"))
	})

	counts := map[string]int{
		themeLink: 1,
		iconsLink: 1,
		`<script src="/resources/app/a.js"></script>`: 1,
		`<script src="/resources/App/a.js"></script>`: 1,
	}
	for s, want := range counts {
		if n := strings.Count(got, s); n != want {
			t.Errorf("count(%s) = %d, want %d", s, n, want)
		}
	}
}

func TestRenderResourcesRegisteredDuringPass(t *testing.T) {
	r := NewRenderer(Config{})
	got := mustRender(t, r, Request{}, Head{}, func(ctx *Context) {
		ctx.AddHeadResource(ComponentFunc(func(ctx *Context) error {
			ctx.AddHeadResource(Script("app", "late.js"))
			return ctx.EncodeJS("app", "early.js")
		}))
	})

	early := strings.Index(got, "early.js")
	late := strings.Index(got, "late.js")
	if early < 0 || late < 0 || late < early {
		t.Errorf("early=%d late=%d in %s", early, late, got)
	}
}

func TestRenderTheme(t *testing.T) {
	tests := []struct {
		name   string
		theme  string
		cookie string
		want   string
	}{
		{"unset", "", "", "primefaces-saga-blue/theme.css"},
		{"alias", "arya", "", "primefaces-arya-blue/theme.css"},
		{"literal", "luna-amber", "", "primefaces-luna-amber/theme.css"},
		{"none", "none", "", ""},
		{"expression default", "#{cookie.theme ?? 'vela'}", "", "primefaces-vela-blue/theme.css"},
		{"expression cookie", "#{cookie.theme ?? 'vela'}", "arya", "primefaces-arya-blue/theme.css"},
		{"expression none", "#{cookie.theme}", "none", ""},
		{"expression nil", "#{cookie.theme}", "", "primefaces-saga-blue/theme.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(Config{Theme: tt.theme})
			hr := httptest.NewRequest(http.MethodGet, "/index.xhtml", nil)
			if tt.cookie != "" {
				hr.AddCookie(&http.Cookie{Name: "theme", Value: tt.cookie})
			}
			got := mustRender(t, r, NewRequest(nil, hr, RequestOptions{}), Head{})

			if tt.want == "" {
				if strings.Contains(got, "theme.css") {
					t.Errorf("Render() = %s, want no theme", got)
				}
				return
			}
			if !strings.Contains(got, `href="/resources/primefaces/`+tt.want+`"`) {
				t.Errorf("Render() = %s, want theme %s", got, tt.want)
			}
		})
	}
}

func TestRenderThemeExpressionFailure(t *testing.T) {
	r := NewRenderer(Config{Theme: "#{['a'][5]}"})
	out, err := renderHead(t, r, Request{}, Head{First: Raw("<meta>")})
	if err == nil {
		t.Fatal("Render() error = nil, want expression failure")
	}
	if code := herrors.Code(err); code != "H002" {
		t.Errorf("Code() = %q, want H002", code)
	}
	var evalErr *theme.EvaluationError
	if !errors.As(err, &evalErr) {
		t.Errorf("error %v is not a *theme.EvaluationError", err)
	}
	if out != "<head><meta>" {
		t.Errorf("partial output = %q, want %q", out, "<head><meta>")
	}
}

func TestRenderResourceNotFound(t *testing.T) {
	resolver := manifestResolver("primefaces/primefaces-saga-blue/theme.css")
	r := NewRenderer(DefaultConfig(), WithResolver(resolver))

	out, err := renderHead(t, r, Request{}, Head{})
	if err == nil {
		t.Fatal("Render() error = nil, want not found")
	}
	if code := herrors.Code(err); code != "H001" {
		t.Errorf("Code() = %q, want H001", code)
	}
	var nf *ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error %v is not a *ResourceNotFoundError", err)
	}
	want := `Error loading CSS, cannot find "primeicons/primeicons.css" resource of "primefaces" library`
	if nf.Error() != want {
		t.Errorf("Error() = %q, want %q", nf.Error(), want)
	}
	if out != "<head>"+themeLink {
		t.Errorf("partial output = %q", out)
	}
}

func TestRenderScriptNotFound(t *testing.T) {
	r := NewRenderer(Config{ClientSideValidation: true}, WithResolver(manifestResolver()))

	_, err := renderHead(t, r, Request{}, Head{})
	var nf *ResourceNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error %v is not a *ResourceNotFoundError", err)
	}
	want := `Error loading JavaScript, cannot find "moment/moment.js" resource of "primefaces" library`
	if nf.Error() != want {
		t.Errorf("Error() = %q, want %q", nf.Error(), want)
	}
}

func TestRenderLocaleScriptMissing(t *testing.T) {
	tests := []struct {
		stage   Stage
		wantLog bool
	}{
		{StageDevelopment, true},
		{StageProduction, false},
		{StageUnitTest, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			r := NewRenderer(
				Config{ClientSideLocalization: true, ProjectStage: tt.stage},
				WithResolver(manifestResolver("primefaces/primefaces-saga-blue/theme.css")),
				WithLogger(logger),
			)

			got, err := renderHead(t, r, Request{}, Head{})
			if err != nil {
				t.Fatalf("Render() error = %v, want nil", err)
			}
			if strings.Contains(got, "locale-en.js") {
				t.Errorf("Render() = %s, want no locale script", got)
			}
			if !strings.HasSuffix(got, "</script></head>") {
				t.Errorf("Render() = %s, want completed head", got)
			}

			logged := strings.Contains(logs.String(), "Failed to load client side locale.js")
			if logged != tt.wantLog {
				t.Errorf("warning logged = %v, want %v; logs: %s", logged, tt.wantLog, logs.String())
			}
			if tt.wantLog && !strings.Contains(logs.String(), "H003") {
				t.Errorf("warning %q does not carry H003", logs.String())
			}
		})
	}
}

func TestRenderLocaleUnavailable(t *testing.T) {
	var logs bytes.Buffer
	failing := locale.ProviderFunc(func(*http.Request) (language.Tag, error) {
		return language.Und, locale.ErrNoLocale
	})
	r := NewRenderer(
		Config{ClientSideLocalization: true, ProjectStage: StageDevelopment},
		WithLocaleProvider(failing),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	out, err := renderHead(t, r, Request{}, Head{})
	if !errors.Is(err, locale.ErrNoLocale) {
		t.Fatalf("Render() error = %v, want ErrNoLocale", err)
	}
	if code := herrors.Code(err); code != "H004" {
		t.Errorf("Code() = %q, want H004", code)
	}
	if !strings.Contains(logs.String(), "Failed to load client side locale.js") {
		t.Errorf("missing locale warning in %q", logs.String())
	}
	if strings.Contains(out, "<script") {
		t.Errorf("output %q should stop before the settings script", out)
	}
}

func TestRenderLocaleAskedOnce(t *testing.T) {
	calls := 0
	provider := locale.ProviderFunc(func(*http.Request) (language.Tag, error) {
		calls++
		return language.French, nil
	})
	r := NewRenderer(Config{Theme: "#{locale == 'fr' ? 'vela' : 'saga'}", ClientSideLocalization: true},
		WithLocaleProvider(provider))

	got := mustRender(t, r, Request{}, Head{})
	if calls != 1 {
		t.Errorf("provider called %d times, want 1", calls)
	}
	if !strings.Contains(got, "primefaces-vela-blue/theme.css") || !strings.Contains(got, "locale-fr.js") {
		t.Errorf("Render() = %s", got)
	}
}

func TestRenderInitScripts(t *testing.T) {
	t.Run("wrapped", func(t *testing.T) {
		r := NewRenderer(Config{})
		got := mustRender(t, r, Request{}, Head{}, func(ctx *Context) {
			ctx.AddInitScript("a()")
			ctx.AddInitScript("b()")
		})
		if !strings.Contains(got, "<script>(function(){const pfInit=() => {a();b();};") {
			t.Errorf("Render() = %s", got)
		}
	})

	t.Run("bottom", func(t *testing.T) {
		r := NewRenderer(Config{MoveScriptsToBottom: true})
		got := mustRender(t, r, Request{}, Head{}, func(ctx *Context) {
			ctx.AddInitScript("a()")
			ctx.AddInitScript("b()")
		})
		if !strings.Contains(got, "<script>a();b();</script></head>") {
			t.Errorf("Render() = %s", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		r := NewRenderer(Config{})
		got := mustRender(t, r, Request{}, Head{})
		if strings.Count(got, "<script>") != 1 {
			t.Errorf("Render() = %s, want only the settings script", got)
		}
	})
}

func TestEncodeInitScriptsAfterHead(t *testing.T) {
	r := NewRenderer(Config{MoveScriptsToBottom: true})
	var buf bytes.Buffer
	ctx := r.NewContext(context.Background(), &buf, Request{})
	if err := r.Render(ctx, Head{}); err != nil {
		t.Fatal(err)
	}
	ctx.AddInitScript("late()")
	if err := ctx.EncodeInitScripts(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "</head><script>late();</script>") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestRenderFacets(t *testing.T) {
	r := NewRenderer(Config{Theme: "none"})
	got := mustRender(t, r, Request{}, Head{
		First:  When(false, Raw("<first>")),
		Middle: When(true, Raw("<meta name=\"middle\">")),
		Last:   When(true, nil),
	})
	if strings.Contains(got, "<first>") {
		t.Errorf("hidden facet rendered: %s", got)
	}
	if !strings.HasPrefix(got, `<head><meta name="middle"><script>`) {
		t.Errorf("Render() = %s", got)
	}
}

func TestRenderContextPath(t *testing.T) {
	r := NewRenderer(Config{}, WithResolver(assets.ResolverFunc(func(library, name string) (string, bool) {
		switch name {
		case "primefaces-saga-blue/theme.css":
			return "/resources/theme.css", true
		case "cdn.js":
			return "https://cdn.example.com/x.js", true
		case "mounted.js":
			return "/shop/static/m.js", true
		}
		return "", false
	})))

	got := mustRender(t, r, Request{ContextPath: "/shop"}, Head{}, func(ctx *Context) {
		ctx.AddHeadResource(Script("app", "cdn.js"))
		ctx.AddHeadResource(Script("app", "mounted.js"))
	})
	for _, want := range []string{
		`href="/shop/resources/theme.css"`,
		`src="https://cdn.example.com/x.js"`,
		`src="/shop/static/m.js"`,
		"PrimeFaces.settings.contextPath='/shop';",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %s, want %s", got, want)
		}
	}
}

func TestRenderTracker(t *testing.T) {
	tracker := ResourceTrackerFunc(func(library, name string) bool {
		return library == "primefaces" && name == "primeicons/primeicons.css"
	})
	r := NewRenderer(DefaultConfig(), WithTracker(tracker))
	got := mustRender(t, r, Request{}, Head{})
	if strings.Contains(got, "primeicons.css") {
		t.Errorf("Render() = %s, want icons skipped", got)
	}
}

func TestRenderClientWindow(t *testing.T) {
	r := NewRenderer(Config{})

	hr := httptest.NewRequest(http.MethodGet, "/app/index.xhtml?jfwid=w42", nil)
	hr.AddCookie(&http.Cookie{Name: clientwindow.InitialRedirectCookieName("w42"), Value: "true"})
	rec := httptest.NewRecorder()
	req := NewRequest(rec, hr, RequestOptions{ContextPath: "/app"})

	got := mustRender(t, r, req, Head{})
	if !strings.Contains(got, "PrimeFaces.clientwindow.init('w42', true);") {
		t.Errorf("Render() = %s", got)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v, want one expired marker", cookies)
	}
	if c := cookies[0]; c.Name != "pf.initialredirect-w42" || c.MaxAge >= 0 || c.Path != "/app" {
		t.Errorf("cookie = %+v, want expired pf.initialredirect-w42 on /app", c)
	}

	hr = httptest.NewRequest(http.MethodGet, "/app/index.xhtml?jfwid=w42", nil)
	rec = httptest.NewRecorder()
	got = mustRender(t, r, NewRequest(rec, hr, RequestOptions{ContextPath: "/app"}), Head{})
	if !strings.Contains(got, "PrimeFaces.clientwindow.init('w42', false);") {
		t.Errorf("Render() = %s", got)
	}
	if n := len(rec.Result().Cookies()); n != 0 {
		t.Errorf("cookies set = %d, want 0", n)
	}
}

type foreignWindow struct{}

func (foreignWindow) ID() string { return "foreign" }

func TestRenderForeignClientWindow(t *testing.T) {
	r := NewRenderer(Config{})
	got := mustRender(t, r, Request{Window: foreignWindow{}}, Head{})
	if strings.Contains(got, "clientwindow") {
		t.Errorf("Render() = %s, want no clientwindow init", got)
	}

	var nilWindow *clientwindow.Managed
	got = mustRender(t, r, Request{Window: nilWindow}, Head{})
	if strings.Contains(got, "clientwindow") {
		t.Errorf("Render() = %s, want no clientwindow init for nil window", got)
	}
}

func TestRenderConcurrentContexts(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	const n = 32
	var wg sync.WaitGroup
	outs := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			ctx := r.NewContext(context.Background(), &buf, Request{ViewID: fmt.Sprintf("/v%d", i)})
			ctx.AddHeadResource(Script("app", "shared.js"))
			errs[i] = r.Render(ctx, Head{})
			outs[i] = buf.String()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("render %d: %v", i, errs[i])
		}
		if c := strings.Count(outs[i], "shared.js"); c != 1 {
			t.Errorf("render %d: shared.js count = %d, want 1", i, c)
		}
		if c := strings.Count(outs[i], "theme.css"); c != 1 {
			t.Errorf("render %d: theme count = %d, want 1", i, c)
		}
		if !strings.Contains(outs[i], fmt.Sprintf("viewId='/v%d'", i)) {
			t.Errorf("render %d: wrong view id in %s", i, outs[i])
		}
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	resources []ResourceEvent
	renders   []RenderEvent
}

func (o *recordingObserver) ResourceEncoded(_ context.Context, ev ResourceEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resources = append(o.resources, ev)
}

func (o *recordingObserver) RenderCompleted(_ context.Context, ev RenderEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renders = append(o.renders, ev)
}

func TestRenderObserver(t *testing.T) {
	obs := &recordingObserver{}
	second := &recordingObserver{}
	r := NewRenderer(DefaultConfig(), WithObserver(obs), WithObserver(second))

	mustRender(t, r, Request{ViewID: "/x"}, Head{}, func(ctx *Context) {
		ctx.AddHeadResource(Stylesheet("primefaces", "primeicons/primeicons.css"))
		ctx.AddInitScript("go()")
	})

	var outcomes []string
	for _, ev := range obs.resources {
		outcomes = append(outcomes, string(ev.Outcome))
	}
	if got := strings.Join(outcomes, ","); got != "emitted,emitted,duplicate" {
		t.Errorf("outcomes = %s, want emitted,emitted,duplicate", got)
	}
	if obs.resources[0].URL != "/resources/primefaces/primefaces-saga-blue/theme.css" {
		t.Errorf("URL = %q", obs.resources[0].URL)
	}

	if len(obs.renders) != 2 {
		t.Fatalf("renders = %d, want 2", len(obs.renders))
	}
	begin := obs.renders[0]
	if begin.Phase != PhaseBegin || begin.ViewID != "/x" || begin.Emitted != 2 || begin.InitScripts != 1 || begin.Err != nil {
		t.Errorf("begin event = %+v", begin)
	}
	if obs.renders[1].Phase != PhaseEnd {
		t.Errorf("second event phase = %s, want end", obs.renders[1].Phase)
	}
	if len(second.renders) != 2 {
		t.Errorf("second observer got %d renders, want 2", len(second.renders))
	}
}

func TestRenderObserverMissing(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRenderer(Config{}, WithResolver(manifestResolver()), WithObserver(obs))
	if _, err := renderHead(t, r, Request{}, Head{}); err == nil {
		t.Fatal("Render() error = nil")
	}
	if len(obs.resources) != 1 || obs.resources[0].Outcome != OutcomeMissing {
		t.Errorf("resources = %+v, want one missing", obs.resources)
	}
	if len(obs.renders) != 1 || obs.renders[0].Err == nil {
		t.Errorf("renders = %+v, want one failed begin", obs.renders)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRenderWriteError(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	ctx := r.NewContext(context.Background(), failingWriter{}, Request{})
	err := r.Render(ctx, Head{})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Render() error = %v, want connection reset", err)
	}
}

func TestRenderFlushesAfterHead(t *testing.T) {
	var buf bytes.Buffer
	fw := &render.FlushableWriter{Writer: &buf}
	r := NewRenderer(Config{})
	ctx := r.NewContext(context.Background(), fw, Request{})

	if err := r.EncodeBegin(ctx, Head{}); err != nil {
		t.Fatal(err)
	}
	if fw.FlushCount != 0 {
		t.Errorf("FlushCount after EncodeBegin = %d, want 0", fw.FlushCount)
	}
	if err := r.EncodeEnd(ctx, Head{}); err != nil {
		t.Fatal(err)
	}
	if fw.FlushCount != 1 {
		t.Errorf("FlushCount after EncodeEnd = %d, want 1", fw.FlushCount)
	}
}

func TestNewContextSharesResponseWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := render.NewResponseWriter(&buf)
	if err := rw.StartElement("html"); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(Config{Theme: "none"})
	ctx := r.NewContext(context.Background(), rw, Request{})
	if ctx.Writer() != rw {
		t.Fatal("Writer() is not the shared ResponseWriter")
	}
	if err := r.Render(ctx, Head{}); err != nil {
		t.Fatal(err)
	}
	if err := rw.EndElement("html"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "<html><head><script>") || !strings.HasSuffix(buf.String(), "</head></html>") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{"", StageProduction, false},
		{"Development", StageDevelopment, false},
		{"SystemTest", StageSystemTest, false},
		{"development", "", true},
		{"Staging", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStage(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStage(%q) = (%q, %v), want (%q, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
