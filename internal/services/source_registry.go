package services

import (
	"log"
	"sync"

	"github.com/vedsathwik275/envision-sub000/internal/config"
	"github.com/vedsathwik275/envision-sub000/internal/models"
)

// SourceRegistry holds the live view of the source registry file. The
// file watcher swaps the config in place, so cards and health probes
// always see the current endpoints without a restart.
type SourceRegistry struct {
	mu   sync.RWMutex
	cfg  *config.SourcesConfig
	path string
}

// NewSourceRegistry loads the registry file (or the defaults when the
// file is absent).
func NewSourceRegistry(path string) (*SourceRegistry, error) {
	cfg, err := config.LoadSources(path)
	if err != nil {
		return nil, err
	}
	return &SourceRegistry{cfg: cfg, path: path}, nil
}

// Reload re-reads the registry file. On parse or validation errors the
// previous config stays active.
func (r *SourceRegistry) Reload() error {
	cfg, err := config.LoadSources(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	log.Printf("✅ Source registry reloaded from %s", r.path)
	return nil
}

// Endpoint returns the current endpoint for one source key.
func (r *SourceRegistry) Endpoint(key models.SourceKey) (config.SourceEndpoint, error) {
	if !key.Valid() {
		return config.SourceEndpoint{}, models.ErrInvalidSourceKey
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Sources[key], nil
}

// Recommendation returns the current recommendation engine endpoint.
func (r *SourceRegistry) Recommendation() config.SourceEndpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Recommendation
}

// Config returns the current config snapshot. The returned pointer must
// be treated as read-only.
func (r *SourceRegistry) Config() *config.SourcesConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}
