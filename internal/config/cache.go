package config

import (
	"time"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

// CacheConfig tunes the in-process entity cache.
type CacheConfig struct {
	// RefreshTimeout bounds background refreshes, which outlive the request
	// that triggered them.
	RefreshTimeout time.Duration
	// Warm lists the kinds fetched once at startup so the first page load
	// is served from memory. Unknown kinds are dropped.
	Warm []model.Kind
}

func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		RefreshTimeout: envDur("CACHE_REFRESH_TIMEOUT", 15*time.Second),
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 15 * time.Second
	}
	for _, k := range envList("CACHE_WARM", "category,author,client") {
		if kind := model.Kind(k); kind.Valid() {
			cfg.Warm = append(cfg.Warm, kind)
		}
	}
	return cfg
}
