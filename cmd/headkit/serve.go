package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/headkit/internal/config"
	"github.com/vango-dev/headkit/pkg/assets"
	"github.com/vango-dev/headkit/pkg/clientwindow"
	"github.com/vango-dev/headkit/pkg/head"
	"github.com/vango-dev/headkit/pkg/middleware"
	"github.com/vango-dev/headkit/pkg/render"
	"github.com/vango-dev/headkit/pkg/viewpath"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(global *globalOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages with rendered heads",
		Long: `Start an HTTP server that renders a page with its <head> for every
request, serves the configured resources directory and exposes
Prometheus metrics at /metrics.

Examples:
  headkit serve
  headkit serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global.configDir)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			return runServe(cmd, cfg, newLogger(cmd.ErrOrStderr(), global.verbose))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from headkit.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from headkit.json)")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	printBanner(out)

	registry := prometheus.NewRegistry()
	srv, manifest, err := newServer(ctx, cfg, logger, registry)
	if err != nil {
		return err
	}

	if cfg.Resources.Watch && manifest != nil {
		w, err := assets.NewWatcher(cfg.ManifestPath(), manifest, logger)
		if err != nil {
			warn(out, "Manifest watching disabled: %v", err)
		} else {
			go w.Run(ctx)
			info(out, "Watching %s", cfg.ManifestPath())
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	success(out, "Serving on http://%s%s/", cfg.ServerAddress(), strings.TrimRight(cfg.Server.ContextPath, "/"))
	info(out, "Metrics at http://%s/metrics", cfg.ServerAddress())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// server renders a page with its head for every request.
type server struct {
	cfg      *config.Config
	renderer *head.Renderer
	proxies  *head.ProxyMatcher
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// newServer wires the renderer of cfg to Prometheus metrics registered on
// registry and to OpenTelemetry span events. The loaded manifest, if any, is
// returned for watching.
func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) (*server, *assets.Manifest, error) {
	resolver, manifest, err := loadResolver(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	metrics := middleware.Prometheus(middleware.WithRegistry(registry))
	renderer, err := newRenderer(cfg, resolver, logger,
		head.WithObserver(metrics),
		head.WithObserver(middleware.Tracing()),
	)
	if err != nil {
		return nil, nil, err
	}

	return &server{
		cfg:      cfg,
		renderer: renderer,
		proxies:  head.NewProxyMatcher(cfg.Server.TrustedProxies, logger),
		gatherer: registry,
		logger:   logger,
	}, manifest, nil
}

// Handler returns the HTTP handler of the server.
func (s *server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerName("headkit"),
		middleware.WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		}),
	))
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	if base := s.contextPath(); base != "" {
		r.Route(base, s.mount)
	} else {
		s.mount(r)
	}
	return r
}

func (s *server) mount(r chi.Router) {
	if dir := s.cfg.ResourcesDir(); dir != "" {
		prefix := s.cfg.Resources.Prefix
		policy := assets.CacheProduction
		if s.renderer.Config().IsDevelopment() {
			policy = assets.CacheNone
		}
		r.Handle(prefix+"*", http.StripPrefix(s.contextPath()+prefix, assets.Handler(os.DirFS(dir), policy)))
	}
	r.Get("/*", s.handlePage)
}

func (s *server) contextPath() string {
	return strings.TrimRight(s.cfg.Server.ContextPath, "/")
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	clean, changed, err := viewpath.Clean(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if changed {
		target := clean
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	if s.cfg.Server.ClientWindow && clientwindow.FromRequest(r) == nil {
		path := s.contextPath()
		if path == "" {
			path = "/"
		}
		clientwindow.AssignAndRedirect(w, r, path)
		return
	}

	req := head.NewRequest(w, r, head.RequestOptions{
		ContextPath:    s.cfg.Server.ContextPath,
		TrustedProxies: s.proxies,
	})

	// Cookies are set while rendering, so the page is buffered.
	var buf bytes.Buffer
	if err := s.writePage(r.Context(), &buf, req); err != nil {
		s.logger.Error("render failed",
			slog.String("view", req.ViewID),
			slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("write page", slog.Any("error", err))
	}
}

// writePage writes an HTML document whose body names the view.
func (s *server) writePage(std context.Context, buf *bytes.Buffer, req head.Request) error {
	rw := render.NewResponseWriter(buf)
	ctx := s.renderer.NewContext(std, rw, req)

	if err := rw.Write("<!DOCTYPE html>"); err != nil {
		return err
	}
	if err := rw.StartElement("html"); err != nil {
		return err
	}
	if err := s.renderer.Render(ctx, head.Head{}); err != nil {
		return err
	}
	if err := rw.StartElement("body"); err != nil {
		return err
	}
	if err := rw.StartElement("main"); err != nil {
		return err
	}
	if err := rw.WriteAttribute("data-view", req.ViewID); err != nil {
		return err
	}
	if err := rw.WriteText(req.ViewID); err != nil {
		return err
	}
	if err := rw.EndElement("main"); err != nil {
		return err
	}
	if err := ctx.EncodeInitScripts(); err != nil {
		return err
	}
	if err := rw.EndElement("body"); err != nil {
		return err
	}
	if err := rw.EndElement("html"); err != nil {
		return err
	}
	return rw.Err()
}
