package catalogdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fjod/go_storefront/internal/catalogdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *catalogdb.Repository {
	repo, err := catalogdb.NewRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.RunMigrations("./migrations"))
	return repo
}

func TestCategories_SeededInOrder(t *testing.T) {
	repo := setupTestDB(t)

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 4)
	assert.Equal(t, "bakery", categories[0].Key)
	assert.Equal(t, "Bakery", categories[0].Name)
	assert.Equal(t, "seasonal", categories[3].Key)
	assert.Empty(t, categories[3].Name)
}

func TestProductsByCategory(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ProductsByCategory(context.Background())
	require.NoError(t, err)

	require.Len(t, products["bakery"], 3)
	rye := products["bakery"][0]
	assert.Equal(t, "bkr-rye", rye.ID)
	assert.Equal(t, "bakery", rye.CategoryKey)
	assert.True(t, decimal.RequireFromString("10.50").Equal(rye.Price))

	baguette := products["bakery"][2]
	assert.Equal(t, "N/A", baguette.AvailabilityDays)
	assert.Empty(t, baguette.DisplayAvailability())
	assert.Empty(t, baguette.DetailURL)

	assert.Len(t, products["cakes"], 2)
	assert.Len(t, products["drinks"], 2)
	assert.Len(t, products["seasonal"], 1)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.RunMigrations("./migrations"))
	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}
