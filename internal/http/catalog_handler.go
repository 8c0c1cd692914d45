package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"go.uber.org/zap"
)

type CatalogRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	ProductsByCategory(ctx context.Context) (map[string][]domain.Product, error)
}

// CatalogHandler serves the catalog backend read by storefront sessions.
type CatalogHandler struct {
	repo    CatalogRepository
	timeout time.Duration
	logger  *zap.Logger
}

func NewCatalogHandler(repo CatalogRepository, timeout time.Duration, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{repo: repo, timeout: timeout, logger: logger}
}

// GET /products
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.ProductsByCategory(ctx)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.repo.Categories(ctx)
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
