// internal/cache/cache_test.go
package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/config"
)

func testRegistry() *Registry {
	return NewRegistry(config.CacheConfig{
		ProductsStale: 60,
		TaxonomyStale: 60,
		StaticStale:   60,
		GCInterval:    60,
	})
}

func TestGetOrLoadCachesResult(t *testing.T) {
	r := testRegistry()

	loads := 0
	loader := func() (interface{}, error) {
		loads++
		return "catalog page", nil
	}

	value, err := r.GetOrLoad(ResourceProducts, "list:1", loader)
	require.NoError(t, err)
	assert.Equal(t, "catalog page", value)
	assert.Equal(t, 1, loads)

	value, err = r.GetOrLoad(ResourceProducts, "list:1", loader)
	require.NoError(t, err)
	assert.Equal(t, "catalog page", value)
	assert.Equal(t, 1, loads, "second read should come from cache")
}

func TestGetOrLoadNeverCachesErrors(t *testing.T) {
	r := testRegistry()

	boom := errors.New("database down")
	_, err := r.GetOrLoad(ResourceProducts, "list:1", func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// The failed load must not have poisoned the key.
	value, err := r.GetOrLoad(ResourceProducts, "list:1", func() (interface{}, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", value)
}

func TestInvalidateFlushesOnlyNamedResources(t *testing.T) {
	r := testRegistry()

	r.Set(ResourceProducts, "list:1", "products")
	r.Set(ResourceBrands, "all", "brands")

	r.Invalidate(ResourceProducts)

	_, ok := r.Get(ResourceProducts, "list:1")
	assert.False(t, ok)

	value, ok := r.Get(ResourceBrands, "all")
	assert.True(t, ok)
	assert.Equal(t, "brands", value)
}

func TestInvalidateMultipleResources(t *testing.T) {
	r := testRegistry()

	r.Set(ResourceBrands, "all", "brands")
	r.Set(ResourceCategories, "all", "categories")
	r.Set(ResourceCountries, "enabled", "countries")

	r.Invalidate(ResourceBrands, ResourceCategories)

	_, ok := r.Get(ResourceBrands, "all")
	assert.False(t, ok)
	_, ok = r.Get(ResourceCategories, "all")
	assert.False(t, ok)
	_, ok = r.Get(ResourceCountries, "enabled")
	assert.True(t, ok)
}

func TestUnknownResourcePassesThrough(t *testing.T) {
	r := testRegistry()

	r.Set("unknown", "key", "value")
	_, ok := r.Get("unknown", "key")
	assert.False(t, ok)

	loads := 0
	loader := func() (interface{}, error) {
		loads++
		return loads, nil
	}

	_, err := r.GetOrLoad("unknown", "key", loader)
	require.NoError(t, err)
	_, err = r.GetOrLoad("unknown", "key", loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "unknown resources should always hit the loader")
}

func TestEntriesExpire(t *testing.T) {
	r := testRegistry()
	r.Register("ephemeral", Options{StaleTime: 50 * time.Millisecond, GCTime: time.Minute})

	r.Set("ephemeral", "key", "value")
	_, ok := r.Get("ephemeral", "key")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = r.Get("ephemeral", "key")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "list:2:asc", Key("list", 2, "asc"))
	assert.Equal(t, "slug:aurora-lamp", Key("slug", "aurora-lamp"))
	assert.Equal(t, "true:3.5", Key(true, 3.5))
	assert.Equal(t, "", Key())
}
