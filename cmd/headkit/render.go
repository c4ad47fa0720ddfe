package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/vango-dev/headkit/internal/config"
	herrors "github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/clientwindow"
	"github.com/vango-dev/headkit/pkg/head"
	"github.com/vango-dev/headkit/pkg/locale"
)

type renderOptions struct {
	theme       string
	stage       string
	locale      string
	contextPath string
	secure      bool
	window      string
	bottom      bool
	stylesheets []string
	scripts     []string
	initScripts []string
}

func renderCmd(global *globalOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [path]",
		Short: "Render the head of a page",
		Long: `Render the <head> element of the page at path and print it.

The configuration file supplies the defaults; flags override them
for this render only. The path defaults to /index.xhtml.

Examples:
  headkit render
  headkit render /orders/list.xhtml --theme "#{param.theme ?? 'vela'}"
  headkit render --css primefaces:layout.css --init "PF('dlg').show()"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/index.xhtml"
			if len(args) == 1 {
				path = args[0]
			}
			return runRender(cmd, global, opts, path)
		},
	}

	cmd.Flags().StringVar(&opts.theme, "theme", "", "Theme name, none, or #{...} expression")
	cmd.Flags().StringVar(&opts.stage, "stage", "", "Project stage")
	cmd.Flags().StringVarP(&opts.locale, "locale", "l", "", "Locale of the request, e.g. de-CH")
	cmd.Flags().StringVar(&opts.contextPath, "context-path", "", "Context path the page is served under")
	cmd.Flags().BoolVar(&opts.secure, "secure", false, "Treat the request as HTTPS")
	cmd.Flags().StringVar(&opts.window, "window", "", "Client window id of the request")
	cmd.Flags().BoolVar(&opts.bottom, "bottom", false, "Emit initialization scripts for the end of the body")
	cmd.Flags().StringArrayVar(&opts.stylesheets, "css", nil, "Extra stylesheet as library:name (repeatable)")
	cmd.Flags().StringArrayVar(&opts.scripts, "js", nil, "Extra script as library:name (repeatable)")
	cmd.Flags().StringArrayVar(&opts.initScripts, "init", nil, "Initialization script fragment (repeatable)")

	return cmd
}

func runRender(cmd *cobra.Command, global *globalOptions, opts *renderOptions, path string) error {
	cfg, err := loadConfig(global.configDir)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), global.verbose)
	resolver, _, err := loadResolver(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	var extra []head.Option
	if opts.locale != "" {
		tag, err := language.Parse(opts.locale)
		if err != nil {
			return fmt.Errorf("invalid --locale %q: %w", opts.locale, err)
		}
		extra = append(extra, head.WithLocaleProvider(locale.Fixed(tag)))
	}
	renderer, err := newRenderer(cfg, resolver, logger, extra...)
	if err != nil {
		return err
	}

	resources, err := opts.resources()
	if err != nil {
		return err
	}

	req, err := opts.request(cfg, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := renderer.NewContext(cmd.Context(), out, req)
	for _, c := range resources {
		ctx.AddHeadResource(c)
	}
	for _, s := range opts.initScripts {
		ctx.AddInitScript(s)
	}
	if err := renderer.Render(ctx, head.Head{}); err != nil {
		if ctx.Writer().Err() != nil {
			return herrors.New("H030").Wrap(err)
		}
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// apply copies the flag overrides onto cfg and revalidates it.
func (o *renderOptions) apply(cfg *config.Config) error {
	if o.theme != "" {
		cfg.Theme = o.theme
	}
	if o.stage != "" {
		cfg.ProjectStage = o.stage
	}
	if o.contextPath != "" {
		cfg.Server.ContextPath = o.contextPath
	}
	if o.bottom {
		cfg.Client.MoveScriptsToBottom = true
	}
	return cfg.Validate()
}

// resources parses the --css and --js flags into head components.
func (o *renderOptions) resources() ([]head.Component, error) {
	var out []head.Component
	for _, v := range o.stylesheets {
		lib, name, err := splitResource(v)
		if err != nil {
			return nil, err
		}
		out = append(out, head.Stylesheet(lib, name))
	}
	for _, v := range o.scripts {
		lib, name, err := splitResource(v)
		if err != nil {
			return nil, err
		}
		out = append(out, head.Script(lib, name))
	}
	return out, nil
}

// request builds the simulated request of the render.
func (o *renderOptions) request(cfg *config.Config, path string) (head.Request, error) {
	target := strings.TrimRight(cfg.Server.ContextPath, "/") + "/" + strings.TrimLeft(path, "/")
	u := &url.URL{Scheme: "http", Host: cfg.ServerAddress(), Path: target}
	if o.secure {
		u.Scheme = "https"
	}
	r, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return head.Request{}, err
	}
	if o.locale != "" {
		r.Header.Set("Accept-Language", o.locale)
	}

	req := head.NewRequest(nil, r, head.RequestOptions{ContextPath: cfg.Server.ContextPath})
	req.Secure = o.secure
	if o.window != "" {
		req.Window = clientwindow.NewManaged(o.window)
	}
	return req, nil
}

// splitResource splits "library:name". A value without a colon names a
// resource of the primefaces library.
func splitResource(v string) (library, name string, err error) {
	library, name, ok := strings.Cut(v, ":")
	if !ok {
		return head.Library, v, nil
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid resource %q: missing name", v)
	}
	return library, name, nil
}
