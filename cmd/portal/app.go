package main

import (
	"context"
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-portal-auth/api"
	"github.com/jrsteele09/go-portal-auth/credentials"
	"github.com/jrsteele09/go-portal-auth/internal/config"
	"github.com/jrsteele09/go-portal-auth/internal/errors"
	"github.com/jrsteele09/go-portal-auth/metrics"
	"github.com/jrsteele09/go-portal-auth/portal"
	"github.com/jrsteele09/go-portal-auth/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const redisKeyPrefix = "portal:session:"

// portalApp holds everything one command run needs
type portalApp struct {
	cfg      config.Config
	opts     *rootOptions
	store    *session.Store
	client   *api.Client
	console  *console
	registry *prometheus.Registry
	metrics  *metrics.Collector
	closers  []func() error
}

func newPortalApp(cmd *cobra.Command, opts *rootOptions) (*portalApp, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, cmd.ErrOrStderr())

	a := &portalApp{
		cfg:      cfg,
		opts:     opts,
		console:  newConsole(cmd.OutOrStdout(), !opts.noColour),
		registry: prometheus.NewRegistry(),
	}
	if !opts.quiet {
		displayAppname(cmd.OutOrStdout(), cfg.GetAppName())
	}

	if a.metrics, err = metrics.NewCollector(a.registry); err != nil {
		return nil, err
	}
	if a.store, err = a.openStore(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	a.client, err = api.NewClient(api.Config{
		BaseURL: cfg.GetAPIBaseURL(),
		Tokens:  a.store.TokenSource(cmd.Context()),
		Timeout: cfg.GetHTTPTimeout(),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *portalApp) openStore(ctx context.Context) (*session.Store, error) {
	switch backend := a.cfg.GetStoreBackend(); backend {
	case config.StoreMemory:
		return session.NewMemoryStore(), nil

	case config.StoreFile:
		durable, err := session.NewFileScope(a.cfg.GetStateFile())
		if err != nil {
			return nil, err
		}
		return session.NewStore(durable, session.NewMemoryScope())

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr: a.cfg.GetRedisAddr(),
			DB:   a.cfg.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrapf(err, "connecting to redis at %s", a.cfg.GetRedisAddr())
		}
		a.closers = append(a.closers, client.Close)
		return session.NewStore(
			session.NewRedisScope(client, redisKeyPrefix),
			session.NewTransientRedisScope(client, redisKeyPrefix+"transient:", a.cfg.GetTransientTTL()),
		)

	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedStore, "%q", backend)
	}
}

func (a *portalApp) controller() (*portal.Controller, error) {
	return portal.NewController(a.client, a.store, a.console, a.console, portal.Settings{
		ExpectedRole:  a.cfg.GetExpectedRole(),
		RoleLabel:     a.cfg.GetRoleLabel(),
		RootPath:      a.cfg.GetRootPath(),
		RedirectDelay: a.cfg.GetRedirectDelay(),
		Temporary:     credentials.TemporaryDetector{Prefix: a.cfg.GetTemporaryPasswordPrefix()},
	}, portal.WithMetrics(a.metrics))
}

// Close writes the metrics file, if asked for, and releases connections
func (a *portalApp) Close() {
	if a.opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.opts.metricsFile, a.registry); err != nil {
			log.Err(err).Str("file", a.opts.metricsFile).Msg("writing metrics file")
		}
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Err(err).Msg("closing session store")
		}
	}
}

func setupLogging(cfg config.EnvConfig, w io.Writer) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || cfg.GetLogLevel() == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
