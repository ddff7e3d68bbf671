package regionconfig

import (
	"context"
	"sync"

	apperrors "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/errors"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// Store is the durable settings store holding one RegionConfig per region.
// Writes must be atomic per region; a reader never observes a partially
// written config.
type Store interface {
	Get(ctx context.Context, region string) (domain.RegionConfig, error)
	Put(ctx context.Context, cfg domain.RegionConfig) error
}

// MemoryStore is an in-process Store, used in tests and single-node setups.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]domain.RegionConfig
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]domain.RegionConfig),
	}
}

// Get returns the stored config for a region or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, region string) (domain.RegionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[region]
	if !ok {
		return domain.RegionConfig{}, apperrors.NotFound("region config", region)
	}
	return cfg, nil
}

// Put stores a config keyed by its region.
func (s *MemoryStore) Put(_ context.Context, cfg domain.RegionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[cfg.Region] = cfg
	return nil
}
