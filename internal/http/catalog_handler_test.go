package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Categories(context.Context) ([]domain.Category, error) {
	return nil, errors.New("database is locked")
}

func (failingRepo) ProductsByCategory(context.Context) (map[string][]domain.Product, error) {
	return nil, errors.New("database is locked")
}

func TestCatalogHandler_Products(t *testing.T) {
	router := NewCatalogRouter(NewCatalogHandler(testCatalog(), time.Second, nil), time.Second)

	recorder := doRequest(router, http.MethodGet, "/products", "", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var products map[string][]domain.Product
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&products))
	require.Len(t, products["bakery"], 1)
	assert.Equal(t, "Rye loaf", products["bakery"][0].Name)
	assert.Equal(t, "10.5", products["bakery"][0].Price.String())
}

func TestCatalogHandler_Categories(t *testing.T) {
	router := NewCatalogRouter(NewCatalogHandler(testCatalog(), time.Second, nil), time.Second)

	recorder := doRequest(router, http.MethodGet, "/categories", "", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var categories []domain.Category
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&categories))
	assert.Equal(t, []domain.Category{{Key: "bakery", Name: "Bakery"}}, categories)
}

func TestCatalogHandler_RepositoryError(t *testing.T) {
	router := NewCatalogRouter(NewCatalogHandler(failingRepo{}, time.Second, nil), time.Second)

	for _, path := range []string{"/products", "/categories"} {
		recorder := doRequest(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusInternalServerError, recorder.Code, path)

		var response ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
		assert.Equal(t, "internal_error", response.Code)
	}
}
