// Package app wires the bridge together: it fetches the specification,
// builds the tool registry, and owns the caches and invoker shared by every
// transport.
package app

import (
	"context"
	"time"

	"github.com/apibridge/apibridge/internal/apierr"
	"github.com/apibridge/apibridge/internal/cache"
	"github.com/apibridge/apibridge/internal/common"
	"github.com/apibridge/apibridge/internal/config"
	"github.com/apibridge/apibridge/internal/invoke"
	"github.com/apibridge/apibridge/internal/spec"
	"github.com/apibridge/apibridge/internal/tools"
)

// App holds all application components. It is constructed once at startup;
// the registry is immutable afterwards and the caches are the only shared
// mutable state.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Registry *tools.Registry
	Invoker  *invoke.Invoker

	// Three cache instances with distinct TTL/size policy: long-lived
	// reference data (the specification document), medium-lived per-resource
	// reports (pinned proxy responses), and a generic default (GET tool
	// results).
	ReferenceCache *cache.ResponseCache
	ReportCache    *cache.ResponseCache
	DefaultCache   *cache.ResponseCache
}

// New initializes the application: caches first, then the specification
// fetch, then the tool registry. A specification without paths is fatal —
// there is no partial-startup mode.
func New(ctx context.Context, cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	cleanup := time.Duration(cfg.Cache.CleanupIntervalSeconds) * time.Second
	a.ReferenceCache = cache.New(cache.Options{
		TTL:             time.Duration(cfg.Cache.ReferenceTTLSeconds) * time.Second,
		MaxEntries:      cfg.Cache.MaxEntries,
		Enabled:         cfg.Cache.Enabled,
		CleanupInterval: cleanup,
	})
	a.ReportCache = cache.New(cache.Options{
		TTL:             time.Duration(cfg.Cache.ReportTTLSeconds) * time.Second,
		MaxEntries:      cfg.Cache.MaxEntries,
		Enabled:         cfg.Cache.Enabled,
		CleanupInterval: cleanup,
	})
	a.DefaultCache = cache.New(cache.Options{
		TTL:             time.Duration(cfg.Cache.DefaultTTLSeconds) * time.Second,
		MaxEntries:      cfg.Cache.MaxEntries,
		Enabled:         cfg.Cache.Enabled,
		CleanupInterval: cleanup,
	})

	loader := spec.NewLoader(a.ReferenceCache, time.Duration(cfg.Cache.ReferenceTTLSeconds)*time.Second, logger)
	doc, err := loader.Load(ctx, cfg.Upstream.SpecURL)
	if err != nil {
		a.disposeCaches()
		return nil, err
	}
	logger.Info().Str("spec", spec.Describe(doc)).Msg("specification parsed")

	built, err := tools.Build(doc, tools.BuildOptions{
		StrictNames: cfg.Tools.StrictNames,
		Logger:      logger,
	})
	if err != nil {
		a.disposeCaches()
		return nil, apierr.SpecificationInvalid("tool generation failed: %v", err)
	}
	a.Registry = tools.NewRegistry(built)

	a.Invoker = invoke.New(
		cfg.Upstream.BaseURL,
		time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second,
		logger,
		a.DefaultCache,
		time.Duration(cfg.Cache.DefaultTTLSeconds)*time.Second,
	)

	logger.Info().
		Int("tools", a.Registry.Len()).
		Str("upstream", cfg.Upstream.BaseURL).
		Msg("application initialization complete")

	return a, nil
}

// ListTools returns the registry contents in build order.
func (a *App) ListTools() []tools.Tool {
	return a.Registry.List()
}

// CallTool resolves a tool by name and invokes it. Lookup failures (unknown
// name, unusable metadata) are returned as error envelopes alongside the
// normalized error so protocol layers can choose their own mapping.
func (a *App) CallTool(ctx context.Context, name string, args map[string]any) (*invoke.Result, *apierr.Error) {
	tool, lerr := a.Registry.Lookup(name)
	if lerr != nil {
		a.Logger.Warn().
			Str("tool", name).
			Str("kind", lerr.Kind.String()).
			Str("request_id", lerr.RequestID).
			Msg("tool lookup failed")
		return invoke.ErrorResult(lerr), lerr
	}
	return a.Invoker.Invoke(ctx, tool, args), nil
}

// Close releases application resources: the cache janitors stop so the
// process can exit cleanly.
func (a *App) Close() error {
	a.disposeCaches()
	return nil
}

func (a *App) disposeCaches() {
	for _, c := range []*cache.ResponseCache{a.ReferenceCache, a.ReportCache, a.DefaultCache} {
		if c != nil {
			c.Dispose()
		}
	}
}
