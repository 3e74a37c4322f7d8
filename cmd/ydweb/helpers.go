package main

import (
	"fmt"

	"github.com/at-ishikawa/ydweb/internal/cache"
	"github.com/at-ishikawa/ydweb/internal/config"
	"github.com/at-ishikawa/ydweb/internal/dictionary"
	"github.com/at-ishikawa/ydweb/internal/dictionary/static"
	"github.com/at-ishikawa/ydweb/internal/dictionary/youdao"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// loadCache reads the cache file into memory. A missing file is an empty cache.
func loadCache(cfg *config.Config) (*cache.FileStore, *cache.Cache, error) {
	store := cache.NewFileStore(cfg.Cache.Path)
	records, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("store.Load > %w", err)
	}
	return store, cache.NewFrom(records), nil
}

func loadStatic(cfg *config.Config) (*static.Dictionary, error) {
	dict, err := static.Load(cfg.Static.Path)
	if err != nil {
		return nil, fmt.Errorf("static.Load > %w", err)
	}
	return dict, nil
}

func newRemote(cfg *config.Config) *youdao.Client {
	return youdao.NewClient(youdao.Config{
		BaseURL:           cfg.Remote.BaseURL,
		Timeout:           cfg.Remote.Timeout,
		RetryAttempts:     cfg.Remote.RetryAttempts,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		UserAgent:         cfg.Remote.UserAgent,
	})
}

func newResolver(cfg *config.Config, memory *cache.Cache) (*dictionary.Resolver, error) {
	dict, err := loadStatic(cfg)
	if err != nil {
		return nil, err
	}
	return dictionary.NewResolver(memory, dict, newRemote(cfg)), nil
}
