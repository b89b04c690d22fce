// internal/services/taxonomy_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxonomyKind(t *testing.T) {
	cases := []struct {
		raw  string
		kind TaxonomyKind
	}{
		{"brand", TaxonomyBrand},
		{"brands", TaxonomyBrand},
		{"category", TaxonomyCategory},
		{"categories", TaxonomyCategory},
		{"collection", TaxonomyCollection},
		{"collections", TaxonomyCollection},
	}

	for _, tc := range cases {
		kind, err := ParseTaxonomyKind(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.kind, kind)
	}
}

func TestParseTaxonomyKindUnknown(t *testing.T) {
	for _, raw := range []string{"products", "Brand", ""} {
		_, err := ParseTaxonomyKind(raw)
		assert.Error(t, err, "%q should not parse", raw)
	}
}

func TestTaxonomyKindPlural(t *testing.T) {
	assert.Equal(t, "brands", TaxonomyBrand.Plural())
	assert.Equal(t, "categories", TaxonomyCategory.Plural())
	assert.Equal(t, "collections", TaxonomyCollection.Plural())
}

func TestTaxonomyKindFolder(t *testing.T) {
	assert.Equal(t, "brands", TaxonomyBrand.Folder())
	assert.Equal(t, "categories", TaxonomyCategory.Folder())
	assert.Equal(t, "collections", TaxonomyCollection.Folder())
}
