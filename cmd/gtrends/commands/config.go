package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gtrends/lib/chrono"
	"gtrends/lib/configutil"
	"gtrends/lib/reportcache"
	"gtrends/lib/scrapers/trends/core"
	"gtrends/lib/telemetry"
	"gtrends/lib/trends"
	"gtrends/lib/trends/series"

	"dario.cat/mergo"
)

type Config struct {
	Credentials core.Credentials `json:"credentials"`

	AccountsUrl       string  `json:"accounts_url"`
	TrendsUrl         string  `json:"trends_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	BypassCloudflare  bool    `json:"bypass_cloudflare"`

	// defaults for every request, flags take precedence
	Geo      string `json:"geo"`
	Category string `json:"category"`
	Property string `json:"property"`
	Timezone string `json:"timezone"`

	Rescale rescaleConfig      `json:"rescale"`
	Cache   reportcache.Config `json:"cache"`
	// DumpDir keeps a copy of every downloaded window.
	DumpDir string `json:"dump_dir"`
}

func defaultConfig() Config {
	return Config{
		AccountsUrl:       "https://accounts.google.com",
		TrendsUrl:         "https://www.google.com",
		RequestsPerSecond: 2,
		TimeoutSeconds:    30,
	}
}

// rescaleConfig uses pointers so an explicit 0 in the config is told apart
// from a missing field, missing fields take series.DefaultRescaleOptions.
type rescaleConfig struct {
	Threshold *float64 `json:"threshold"`
	Floor     *float64 `json:"floor"`
}

func (c rescaleConfig) Options() series.RescaleOptions {
	opts := series.DefaultRescaleOptions()
	if c.Threshold != nil {
		opts.Threshold = *c.Threshold
	}
	if c.Floor != nil {
		opts.Floor = *c.Floor
	}
	return opts
}

// loadConfig reads the config file if there is one, fills in defaults and
// lets GTRENDS_USERNAME and GTRENDS_PASSWORD override the credentials.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if os.IsNotExist(err) {
		slog.Debug("no config file found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	err = mergo.Merge(&cfg, defaultConfig())
	if err != nil {
		return Config{}, err
	}
	err = configutil.ApplyEnv("GTRENDS", &cfg.Credentials)
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if cfg.Credentials.Username == "" || cfg.Credentials.Password == "" {
		return Config{}, fmt.Errorf("no credentials, set them in %s or through GTRENDS_USERNAME and GTRENDS_PASSWORD", path)
	}
	return cfg, nil
}

// newCollector builds everything a command needs to download, the returned
// function releases the cache database.
func newCollector(ctx context.Context, cfg Config) (*trends.Collector, func(), error) {
	tel := telemetry.SlogAPI{}
	cleanup := func() {}

	client, err := core.NewClient(core.ClientOptions{
		AccountsUrl:       cfg.AccountsUrl,
		TrendsUrl:         cfg.TrendsUrl,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		BypassCloudflare:  cfg.BypassCloudflare,
	}, tel)
	if err != nil {
		return nil, cleanup, err
	}

	clock := chrono.NewStandardImpl(nil)
	rescale := cfg.Rescale.Options()
	opts := trends.Options{
		Rescale: &rescale,
		DumpDir: cfg.DumpDir,
		Clock:   clock,
	}

	if cfg.Cache.Enabled() {
		db, err := cfg.Cache.OpenDB()
		if err != nil {
			return nil, cleanup, fmt.Errorf("open cache: %w", err)
		}
		cleanup = func() { db.Close() }

		store, err := reportcache.Open(ctx, db, clock, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour)
		if err != nil {
			return nil, cleanup, err
		}
		err = store.Prune(ctx)
		if err != nil {
			slog.Warn("failed to prune report cache", "err", err)
		}
		opts.Cache = &store
	}

	collector, err := trends.NewCollector(trends.FromClient(client), opts, tel)
	if err != nil {
		return nil, cleanup, err
	}
	return collector, cleanup, nil
}

// firstNonEmpty returns the flag value when it was given, otherwise the one
// from the config.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
