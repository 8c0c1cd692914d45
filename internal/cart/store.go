package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// StorageKey is the key under which the cart is persisted.
	StorageKey = "cart"

	// MaxQuantity caps a single cart line.
	MaxQuantity = 999
)

var ErrUnknownProduct = errors.New("product not found in catalog")

// ProductLookup resolves products from the catalog cache.
type ProductLookup interface {
	Product(productID string) (domain.Product, bool)
}

type Policy struct {
	TTL           time.Duration
	SchemaVersion string
}

// Store owns the session cart. Every mutation is persisted before it becomes
// visible in memory.
type Store struct {
	kv      kv.Store
	catalog ProductLookup
	policy  Policy
	logger  *zap.Logger
	now     func() time.Time

	cart *domain.Cart
}

func NewStore(store kv.Store, catalog ProductLookup, policy Policy, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:      store,
		catalog: catalog,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
		cart:    domain.NewCart(),
	}
}

// LoadWithExpiration rehydrates the persisted cart. A cart that is stale, from
// another schema version or unreadable is discarded and the session starts empty.
func (s *Store) LoadWithExpiration(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.cart = domain.NewCart()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	var persisted domain.PersistedCart
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.logger.Warn("discarding unreadable cart", zap.Error(err))
		return s.discard(ctx)
	}

	if persisted.SchemaVersion != s.policy.SchemaVersion {
		s.logger.Warn("discarding cart with mismatched schema version",
			zap.String("stored", persisted.SchemaVersion),
			zap.String("expected", s.policy.SchemaVersion))
		return s.discard(ctx)
	}

	age := s.now().Sub(persisted.Timestamp)
	if age > s.policy.TTL || age < 0 {
		s.logger.Warn("discarding expired cart",
			zap.Time("timestamp", persisted.Timestamp),
			zap.Duration("age", age))
		return s.discard(ctx)
	}

	s.cart = &domain.Cart{Items: sanitize(persisted.Items, s.logger)}
	return nil
}

// sanitize drops entries that could not have been written by this store.
func sanitize(items []domain.CartEntry, logger *zap.Logger) []domain.CartEntry {
	out := make([]domain.CartEntry, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Quantity > MaxQuantity || item.Price.IsNegative() || seen[item.ProductID] {
			logger.Warn("dropping malformed cart entry",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity))
			continue
		}
		seen[item.ProductID] = true
		out = append(out, item)
	}
	return out
}

func (s *Store) discard(ctx context.Context) error {
	s.cart = domain.NewCart()
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to discard cart: %w", err)
	}
	return nil
}

// ChangeQuantity applies delta to the product's quantity and returns the new
// quantity. An entry that drops to zero or below is removed; one that would
// exceed MaxQuantity is clamped.
func (s *Store) ChangeQuantity(ctx context.Context, productID string, delta int) (int, error) {
	product, ok := s.catalog.Product(productID)
	if !ok {
		s.logger.Warn("quantity change for unknown product", zap.String("product_id", productID))
		return s.cart.Quantity(productID), fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	next := s.cart.Clone()
	i := next.Index(productID)
	if i < 0 && delta > 0 {
		next.Items = append(next.Items, domain.CartEntry{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
		})
		i = len(next.Items) - 1
	}

	quantity := 0
	if i >= 0 {
		quantity = next.Items[i].Quantity + delta
		if delta > MaxQuantity || quantity > MaxQuantity {
			s.logger.Warn("clamping cart line quantity",
				zap.String("product_id", productID),
				zap.Int("delta", delta))
			quantity = MaxQuantity
		}
		if quantity <= 0 {
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
			quantity = 0
		} else {
			next.Items[i].Quantity = quantity
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return s.cart.Quantity(productID), err
	}
	return quantity, nil
}

func (s *Store) Remove(ctx context.Context, productID string) error {
	next := s.cart.Clone()
	i := next.Index(productID)
	if i < 0 {
		return nil
	}
	next.Items = append(next.Items[:i], next.Items[i+1:]...)
	return s.commit(ctx, next)
}

// Clear drops the cart together with its persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.cart = domain.NewCart()
	return nil
}

func (s *Store) Totals() (int, decimal.Decimal) {
	return s.cart.Totals()
}

func (s *Store) Quantity(productID string) int {
	return s.cart.Quantity(productID)
}

func (s *Store) IsEmpty() bool {
	return s.cart.IsEmpty()
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() *domain.Cart {
	return s.cart.Clone()
}

func (s *Store) commit(ctx context.Context, next *domain.Cart) error {
	data, err := json.Marshal(domain.PersistedCart{
		Items:         next.Items,
		SchemaVersion: s.policy.SchemaVersion,
		Timestamp:     s.now(),
	})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.cart = next
	return nil
}
