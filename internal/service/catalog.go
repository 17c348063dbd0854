package service

import (
	"context"
	"encoding/json"

	"github.com/die-net/lrucache"
	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/integrations/tmdb"
	"github.com/streamvault/streamvault/internal/models"
)

// catalogCacheSize bounds the payload cache; three category pages fit with
// plenty of headroom.
const catalogCacheSize = 4 << 20

// CatalogFetcher is the upstream surface the catalog service needs.
type CatalogFetcher interface {
	Configured() bool
	FetchCategory(ctx context.Context, category tmdb.Category) (json.RawMessage, error)
}

// CatalogService proxies category listings from the upstream catalog API,
// caching successful payloads for a short TTL.
type CatalogService struct {
	client CatalogFetcher
	cache  *lrucache.LruCache
	log    *logrus.Logger
}

// NewCatalogService initializes a new catalog service. ttlSeconds <= 0
// disables caching expiry-wise but still bounds size.
func NewCatalogService(client CatalogFetcher, ttlSeconds int64, log *logrus.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		cache:  lrucache.New(catalogCacheSize, ttlSeconds),
		log:    log,
	}
}

// Get returns the upstream payload for a category, serving from cache when
// fresh. Invalid categories never reach the upstream call.
func (s *CatalogService) Get(ctx context.Context, category tmdb.Category) (json.RawMessage, error) {
	if !category.Valid() {
		return nil, models.ErrInvalidCategory
	}
	if !s.client.Configured() {
		return nil, models.ErrNotConfigured
	}

	if cached, ok := s.cache.Get(string(category)); ok {
		return json.RawMessage(cached), nil
	}

	payload, err := s.client.FetchCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	s.cache.Set(string(category), payload)
	return payload, nil
}

// Warm prefetches every category so the first browse hits a hot cache.
// Per-category failures are logged and skipped.
func (s *CatalogService) Warm(ctx context.Context) {
	if !s.client.Configured() {
		return
	}
	for _, category := range tmdb.Categories() {
		payload, err := s.client.FetchCategory(ctx, category)
		if err != nil {
			s.log.Warnf("Catalog warm failed for %s: %v", category, err)
			continue
		}
		s.cache.Set(string(category), payload)
	}
}
