package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/vango-dev/headkit/internal/config"
	herrors "github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/assets"
	"github.com/vango-dev/headkit/pkg/head"
	"github.com/vango-dev/headkit/pkg/theme"
)

// loadConfig reads the configuration from dir, or from the working directory
// and its parents when dir is empty. Without any config file the defaults
// are used.
func loadConfig(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if dir != "" {
		cfg, err = config.Load(dir)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if herrors.Code(err) == "H011" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadResolver builds the resource resolver of cfg. A manifest, local or in
// S3, is consulted first and the resources directory second. The manifest is
// returned so it can be watched.
func loadResolver(ctx context.Context, cfg *config.Config) (assets.Resolver, *assets.Manifest, error) {
	prefix := cfg.Resources.Prefix

	var manifest *assets.Manifest
	switch {
	case strings.HasPrefix(cfg.Resources.Manifest, "s3://"):
		bucket, key, err := assets.ParseS3URL(cfg.Resources.Manifest)
		if err != nil {
			return nil, nil, err
		}
		manifest, err = assets.LoadS3(ctx, assets.NewS3Client(cfg.Resources.Region), bucket, key)
		if err != nil {
			return nil, nil, manifestError(cfg.Resources.Manifest, err)
		}
	case cfg.ManifestPath() != "":
		var err error
		manifest, err = assets.Load(cfg.ManifestPath())
		if err != nil {
			return nil, nil, manifestError(cfg.ManifestPath(), err)
		}
	}

	var chain []assets.Resolver
	if manifest != nil {
		chain = append(chain, assets.NewResolver(manifest, prefix))
	}
	if dir := cfg.ResourcesDir(); dir != "" {
		chain = append(chain, assets.NewFSResolver(os.DirFS(dir), prefix))
	}
	if len(chain) == 0 {
		return assets.NewPassthroughResolver(prefix), nil, nil
	}
	return assets.Chain(chain...), manifest, nil
}

func manifestError(location string, err error) error {
	return herrors.New("H020").
		WithFile(location).
		WithSuggestion("Check resources.manifest in the configuration").
		Wrap(err)
}

// newRenderer builds a renderer from cfg. Extra options are applied last and
// override the configured ones.
func newRenderer(cfg *config.Config, resolver assets.Resolver, logger *slog.Logger, opts ...head.Option) (*head.Renderer, error) {
	provider, err := cfg.LocaleProvider()
	if err != nil {
		return nil, err
	}
	base := []head.Option{
		head.WithResolver(resolver),
		head.WithThemeResolver(theme.NewResolver(theme.NewExprEvaluator())),
		head.WithLocaleProvider(provider),
		head.WithLogger(logger),
	}
	return head.NewRenderer(cfg.HeadConfig(), append(base, opts...)...), nil
}
