// internal/utils/slug_test.go
package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "leather-weekender-bag", Slugify("Leather Weekender Bag"))
	assert.Equal(t, "cafe-creme-2", Slugify("Café Crème 2"))
	assert.Equal(t, "summer-essentials", Slugify("  Summer   Essentials  "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestUniqueSlugFreeBase(t *testing.T) {
	calls := []string{}
	slug, err := UniqueSlug("aurora-lamp", func(candidate string) (bool, error) {
		calls = append(calls, candidate)
		return false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "aurora-lamp", slug)
	assert.Equal(t, []string{"aurora-lamp"}, calls)
}

func TestUniqueSlugNumbersTakenBase(t *testing.T) {
	taken := map[string]bool{
		"aurora-lamp":   true,
		"aurora-lamp-2": true,
	}

	slug, err := UniqueSlug("aurora-lamp", func(candidate string) (bool, error) {
		return taken[candidate], nil
	})

	require.NoError(t, err)
	assert.Equal(t, "aurora-lamp-3", slug)
}

func TestUniqueSlugPropagatesLookupError(t *testing.T) {
	boom := errors.New("database down")
	_, err := UniqueSlug("aurora-lamp", func(string) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestUniqueSlugEmptyBase(t *testing.T) {
	_, err := UniqueSlug("", func(string) (bool, error) {
		t.Fatal("taken callback should not run for an empty base")
		return false, nil
	})

	assert.ErrorIs(t, err, ErrEmptySlug)
}
