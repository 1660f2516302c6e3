package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/donorpulse/internal/db"
	"github.com/sells-group/donorpulse/internal/fetcher"
	"github.com/sells-group/donorpulse/internal/source"
	"github.com/sells-group/donorpulse/internal/store"
	sfpkg "github.com/sells-group/donorpulse/pkg/salesforce"
)

// appEnv holds the initialized campaign source and snapshot store shared by
// the CLI commands and the API server.
type appEnv struct {
	Source source.Source
	Store  store.Store

	closers []func()
}

// Close releases the store and any pooled connections the sources hold.
func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp sets up the snapshot store and the configured campaign source.
// Callers should defer env.Close().
func initApp(ctx context.Context) (*appEnv, error) {
	st, err := initStore()
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &appEnv{Store: st}
	src, err := initSource(ctx, env)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Source = src

	return env, nil
}

func initStore() (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "donorpulse.db"
		}
		return store.NewSQLite(path)
	case "memory", "":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSource(ctx context.Context, env *appEnv) (source.Source, error) {
	switch cfg.Source.Mode {
	case "demo", "":
		return source.NewDemoSource(), nil
	case "fixture":
		return source.NewFixtureSource(cfg.Source.FixturePath)
	case "file":
		return newFileSource()
	case "postgres":
		return newPostgresSource(ctx, env)
	case "salesforce":
		return newSalesforceSource()
	case "auto":
		return newAutoChain(ctx, env)
	default:
		return nil, eris.Errorf("unsupported source mode: %s", cfg.Source.Mode)
	}
}

func newFetcherClient() *fetcher.Client {
	return fetcher.NewClient(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		RateLimit:  rate.Limit(cfg.Fetch.RateLimit),
		Burst:      cfg.Fetch.Burst,
	})
}

func newFileSource() (source.Source, error) {
	return source.NewFileSource(newFetcherClient(), cfg.Source.File.Location, cfg.Source.File.Format)
}

func newPostgresSource(ctx context.Context, env *appEnv) (source.Source, error) {
	pool, err := db.Connect(ctx, cfg.Source.Postgres.DatabaseURL)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, pool.Close)
	return source.NewPostgresSource(pool), nil
}

func newSalesforceSource() (source.Source, error) {
	client, err := initSalesforce()
	if err != nil {
		return nil, err
	}
	return source.NewSalesforceSource(client), nil
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Source.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (DONORPULSE_SOURCE_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Source.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Source.Salesforce.LoginURL,
		Username:       cfg.Source.Salesforce.Username,
		ConsumerKey:    cfg.Source.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Source.Salesforce.RateLimitRPS)), nil
}

// newAutoChain builds a fallback chain from every source the config carries
// settings for, live systems first. The demo roster is used only when nothing
// is configured at all; it never silently substitutes for a real tenant
// source that happens to be down.
func newAutoChain(ctx context.Context, env *appEnv) (source.Source, error) {
	var sources []source.Source

	if cfg.Source.Salesforce.ClientID != "" {
		sf, err := newSalesforceSource()
		if err != nil {
			zap.L().Warn("salesforce source unavailable", zap.Error(err))
		} else {
			sources = append(sources, sf)
		}
	}
	if cfg.Source.Postgres.DatabaseURL != "" {
		pg, err := newPostgresSource(ctx, env)
		if err != nil {
			zap.L().Warn("postgres source unavailable", zap.Error(err))
		} else {
			sources = append(sources, pg)
		}
	}
	if cfg.Source.File.Location != "" {
		fs, err := newFileSource()
		if err != nil {
			zap.L().Warn("file source unavailable", zap.Error(err))
		} else {
			sources = append(sources, fs)
		}
	}
	if cfg.Source.FixturePath != "" {
		fx, err := source.NewFixtureSource(cfg.Source.FixturePath)
		if err != nil {
			zap.L().Warn("fixture source unavailable", zap.Error(err))
		} else {
			sources = append(sources, fx)
		}
	}

	if len(sources) == 0 {
		zap.L().Info("no live sources configured, using demo roster")
		return source.NewDemoSource(), nil
	}
	if len(sources) == 1 {
		return sources[0], nil
	}

	return source.NewChain(cfg.Source.Cooldown(), sources...), nil
}
