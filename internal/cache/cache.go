// internal/cache/cache.go
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/javajoker/storefront-backend/internal/config"
)

// Resource names for the read-side caches. Each resource gets its own cache
// instance with its own freshness window; invalidating a resource flushes the
// whole instance, so lists and details of the same resource expire together.
const (
	ResourceProducts    = "products"
	ResourceBrands      = "brands"
	ResourceCategories  = "categories"
	ResourceCollections = "collections"
	ResourceAttributes  = "attributes"
	ResourceCountries   = "countries"
	ResourceStores      = "stores"
)

// Options configures one resource's cache: how long entries stay fresh and how
// often expired entries are collected.
type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration
}

// Registry holds one cache per resource, pre-configured at startup. Unknown
// resources fall back to a pass-through (loader always runs).
type Registry struct {
	mu     sync.RWMutex
	caches map[string]*gocache.Cache
}

func NewRegistry(cfg config.CacheConfig) *Registry {
	r := &Registry{caches: make(map[string]*gocache.Cache)}

	gc := time.Duration(cfg.GCInterval) * time.Second
	products := Options{StaleTime: time.Duration(cfg.ProductsStale) * time.Second, GCTime: gc}
	taxonomy := Options{StaleTime: time.Duration(cfg.TaxonomyStale) * time.Second, GCTime: gc}
	static := Options{StaleTime: time.Duration(cfg.StaticStale) * time.Second, GCTime: gc}

	r.Register(ResourceProducts, products)
	r.Register(ResourceBrands, taxonomy)
	r.Register(ResourceCategories, taxonomy)
	r.Register(ResourceCollections, taxonomy)
	r.Register(ResourceAttributes, taxonomy)
	r.Register(ResourceCountries, static)
	r.Register(ResourceStores, static)

	return r
}

func (r *Registry) Register(resource string, opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches[resource] = gocache.New(opts.StaleTime, opts.GCTime)
}

func (r *Registry) cache(resource string) *gocache.Cache {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caches[resource]
}

func (r *Registry) Get(resource, key string) (interface{}, bool) {
	c := r.cache(resource)
	if c == nil {
		return nil, false
	}
	return c.Get(key)
}

func (r *Registry) Set(resource, key string, value interface{}) {
	if c := r.cache(resource); c != nil {
		c.Set(key, value, gocache.DefaultExpiration)
	}
}

// GetOrLoad returns the cached value for key, or runs loader and caches its
// result. Loader errors are never cached.
func (r *Registry) GetOrLoad(resource, key string, loader func() (interface{}, error)) (interface{}, error) {
	if value, ok := r.Get(resource, key); ok {
		return value, nil
	}

	value, err := loader()
	if err != nil {
		return nil, err
	}

	r.Set(resource, key, value)
	return value, nil
}

// Invalidate flushes the named resources. Writers call this with the written
// resource plus any resource whose derived data (e.g. product counts) changed.
func (r *Registry) Invalidate(resources ...string) {
	for _, resource := range resources {
		if c := r.cache(resource); c != nil {
			c.Flush()
		}
	}
}

// Key builds a cache key from arbitrary parts, so query parameters can be
// folded into one stable string.
func Key(parts ...interface{}) string {
	segments := make([]string, len(parts))
	for i, part := range parts {
		segments[i] = fmt.Sprintf("%v", part)
	}
	return strings.Join(segments, ":")
}
