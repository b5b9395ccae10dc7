package cmd

import (
	"context"
	"fmt"

	"github.com/vibecharting/chartsafe/internal/cache"
	"github.com/vibecharting/chartsafe/internal/config"
	"github.com/vibecharting/chartsafe/internal/llm"
	"github.com/vibecharting/chartsafe/internal/logging"
	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/schema"
	"github.com/vibecharting/chartsafe/internal/service"
	"github.com/vibecharting/chartsafe/internal/storage"
)

// newStore creates the configured query backend.
func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case "duckdb":
		return storage.NewDuckDBStore(cfg)
	case "sqlserver":
		return storage.NewSQLServerStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// newService assembles the chart pipeline: store, catalog refresher,
// extraction provider, and response cache. The caller owns Close on the
// returned store and Stop on the refresher.
func newService(ctx context.Context, cfg *config.Config, store storage.Store) (*service.Service, *schema.Refresher) {
	denylist := schema.NewDenylist(cfg.PIIColumnList()...)
	refresher := schema.NewRefresher(store, denylist, cfg.RefreshIntervalDuration())

	// A failed initial discovery still leaves the baseline catalog in place.
	if err := refresher.Refresh(ctx); err != nil {
		logging.WithError(err).Warn("initial schema discovery failed, serving baseline catalog")
	}

	opts := service.Options{
		Limits: query.Limits{
			MaxRows:   cfg.Limits.MaxRows,
			MaxGroups: cfg.Limits.MaxGroups,
		},
	}

	if cfg.LLM.APIKey != "" {
		opts.Extractor = llm.NewClient(llm.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			MaxRetries:  cfg.LLM.MaxRetries,
		})
	}

	if cfg.Cache.Enabled {
		opts.Cache = cache.New(cfg.CacheTTLDuration(), cfg.Cache.MaxEntries)
	}

	return service.New(refresher, store, opts), refresher
}
