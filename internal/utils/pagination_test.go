// internal/utils/pagination_test.go
package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(rawURL string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, rawURL, nil)
	return c
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := GetPaginationParams(paginationContext("/products"))

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "desc", params.Order)
	assert.Equal(t, "", params.Search)
}

func TestGetPaginationParamsExplicit(t *testing.T) {
	params := GetPaginationParams(paginationContext("/products?page=3&limit=50&sort=price&order=asc&search=lamp"))

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.Limit)
	assert.Equal(t, "price", params.Sort)
	assert.Equal(t, "asc", params.Order)
	assert.Equal(t, "lamp", params.Search)
}

func TestGetPaginationParamsClampsBadInput(t *testing.T) {
	params := GetPaginationParams(paginationContext("/products?page=0&limit=500&order=sideways"))

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)

	params = GetPaginationParams(paginationContext("/products?page=-2&limit=-1"))
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
}

func TestCreatePaginationResult(t *testing.T) {
	params := PaginationParams{Page: 2, Limit: 20}
	data := []string{"a", "b"}

	result := CreatePaginationResult(data, 45, params)

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 20, result.Limit)
	assert.Equal(t, int64(45), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, data, result.Data)
}

func TestCreatePaginationResultEmpty(t *testing.T) {
	result := CreatePaginationResult([]string{}, 0, PaginationParams{Page: 1, Limit: 20})

	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, 0, result.TotalPages)
}
