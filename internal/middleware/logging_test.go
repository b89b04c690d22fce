// internal/middleware/logging_test.go
package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleID = "a3bb189e-8bf9-3888-9912-ace4e6543002"

func TestExtractResourceType(t *testing.T) {
	cases := []struct {
		path     string
		resource string
	}{
		{"/v1/admin/products/" + sampleID, "products"},
		{"/v1/admin/orders/" + sampleID + "/status", "orders"},
		{"/v1/admin/settings", "settings"},
		{"/v1/admin/countries/US", "countries"},
		{"/v1/checkout", "checkout"},
		{"/health", "health"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.resource, extractResourceType(tc.path), tc.path)
	}
}

func TestExtractResourceID(t *testing.T) {
	assert.Equal(t, sampleID, extractResourceID("/v1/admin/products/"+sampleID))
	assert.Equal(t, sampleID, extractResourceID("/v1/admin/orders/"+sampleID+"/status"))
	assert.Equal(t, "", extractResourceID("/v1/admin/settings"))
	assert.Equal(t, "", extractResourceID("/v1/admin/countries/US"))
}
