package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/Baodng2402/360-Retail-Web-sub000/config"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/credstore"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/httpgateway"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/jwtclaims"
	redisadapter "github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/redis"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/observability/statsd"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/service"
)

// RuntimeDeps groups dependencies for BuildRuntime.
type RuntimeDeps struct {
	Config *config.AppConfig // Required
	Logger *slog.Logger      // Optional

	// HTTPClient overrides the gateway's HTTP client (tests).
	HTTPClient *http.Client
	// RedisClient is used instead of dialing when Credentials.Backend=redis.
	RedisClient redis.UniversalClient
}

// Runtime is the wired session engine.
type Runtime struct {
	Store    ports.CredentialStore
	Gateway  *httpgateway.Client
	Session  *service.SessionContext
	Switcher *service.StoreSwitcher
	Metrics  statsd.Sink

	closers []io.Closer
}

// Close releases connections opened by BuildRuntime.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// BuildRuntime wires credential store, gateway, metrics and session, then
// initializes the session from the persisted credential.
func BuildRuntime(ctx context.Context, deps RuntimeDeps) (*Runtime, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := &Runtime{}
	fail := func(err error) (*Runtime, error) {
		if closeErr := rt.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, err
	}

	store, closer, err := BuildCredentialStore(ctx, cfg, deps.RedisClient, logger)
	if err != nil {
		return fail(err)
	}
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}
	rt.Store = store

	sink, metricsClient := BuildMetrics(cfg.Observability.Metrics, logger)
	if metricsClient != nil {
		rt.closers = append(rt.closers, metricsClient)
	}
	rt.Metrics = sink

	decoder := jwtclaims.New()
	gw, err := httpgateway.New(httpgateway.Options{
		BaseURL:    cfg.API.BaseURL,
		Store:      store,
		Decoder:    decoder,
		HTTPClient: deps.HTTPClient,
		Timeout:    cfg.API.Timeout,
		Logger:     logger,
	})
	if err != nil {
		return fail(fmt.Errorf("build gateway: %w", err))
	}
	rt.Gateway = gw

	sess, err := service.NewSessionContext(service.SessionOptions{
		Gateway: gw,
		Store:   store,
		Decoder: decoder,
		Logger:  logger,
		Metrics: sink,
	})
	if err != nil {
		return fail(fmt.Errorf("build session: %w", err))
	}
	rt.Session = sess

	sw, err := service.NewStoreSwitcher(service.StoreSwitcherOptions{Session: sess, Logger: logger})
	if err != nil {
		return fail(fmt.Errorf("build store switcher: %w", err))
	}
	rt.Switcher = sw

	if err := sess.Init(ctx); err != nil {
		return fail(fmt.Errorf("init session: %w", err))
	}
	return rt, nil
}

// BuildCredentialStore selects the configured persistence backend. The
// returned closer is non-nil only when a Redis connection was dialed here.
func BuildCredentialStore(
	ctx context.Context,
	cfg *config.AppConfig,
	client redis.UniversalClient,
	logger *slog.Logger,
) (ports.CredentialStore, io.Closer, error) {
	creds := cfg.Credentials
	switch creds.Backend {
	case config.CredentialBackendMemory:
		return credstore.NewMemory(""), nil, nil

	case config.CredentialBackendRedis:
		var closer io.Closer
		if client == nil {
			c, err := ConnectRedis(ctx, cfg.Redis, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("connect redis: %w", err)
			}
			client, closer = c, c
		}
		return redisadapter.NewCredentialStore(client, redisadapter.CredentialStoreOptions{
			Prefix: creds.RedisPrefix,
			Key:    creds.Key,
			TTL:    creds.TTL,
		}), closer, nil

	case config.CredentialBackendFile, "":
		fs, err := credstore.NewFile(credstore.FileOptions{Path: creds.FilePath, Key: creds.Key})
		if err != nil {
			return nil, nil, fmt.Errorf("open credential file: %w", err)
		}
		return fs, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported credential backend %q", creds.Backend)
	}
}

// BuildMetrics returns a StatsD sink when metrics are enabled, otherwise a
// no-op sink. A dial failure is logged and metrics are disabled.
func BuildMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (statsd.Sink, *statsd.Client) {
	if !cfg.IsEnabled() {
		return statsd.Noop{}, nil
	}
	obsLogger := logger.With("component", "observability")
	client, err := statsd.NewClient(statsd.Config{
		Enabled:    true,
		Address:    cfg.StatsdAddress,
		Prefix:     cfg.Prefix,
		Logger:     obsLogger,
		GlobalTags: map[string]string{"app": cfg.AppTag},
	})
	if err != nil {
		obsLogger.Error("failed to initialise statsd client", "error", err)
		return statsd.Noop{}, nil
	}
	return client, client
}
