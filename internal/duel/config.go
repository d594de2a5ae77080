package duel

import (
	"context"
	"fmt"
	"sync"
)

// ConfigSource supplies the category weights and fixed question count for a
// duel configuration. Configurations are edited outside the engine and are
// read-only here.
type ConfigSource interface {
	Lookup(ctx context.Context, configID string) (DuelConfig, error)
}

// StaticConfigSource serves a fixed set of configurations, typically loaded
// from the environment at startup.
type StaticConfigSource struct {
	mu      sync.RWMutex
	configs map[string]DuelConfig
}

var _ ConfigSource = (*StaticConfigSource)(nil)

func NewStaticConfigSource(configs ...DuelConfig) *StaticConfigSource {
	src := &StaticConfigSource{configs: make(map[string]DuelConfig, len(configs))}
	for _, cfg := range configs {
		src.configs[cfg.ID] = cfg
	}
	return src
}

func (s *StaticConfigSource) Lookup(_ context.Context, configID string) (DuelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[configID]
	if !ok {
		return DuelConfig{}, fmt.Errorf("duel config %q: %w", configID, ErrNotFound)
	}
	return cfg, nil
}

// Put registers or replaces a configuration.
func (s *StaticConfigSource) Put(cfg DuelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
}
