package view

import (
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type WelcomeScreen struct {
	CartItemCount int `json:"cart_item_count"`
}

type CategoryItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type CategoriesScreen struct {
	Categories []CategoryItem `json:"categories"`
}

type ProductItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Weight       string          `json:"weight,omitempty"`
	Availability string          `json:"availability,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	DetailURL    string          `json:"detail_url,omitempty"`
	Quantity     int             `json:"quantity"`
}

type ProductsScreen struct {
	Category CategoryItem  `json:"category"`
	Products []ProductItem `json:"products"`
}

type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartScreen struct {
	Lines       []CartLine      `json:"lines"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type CheckoutScreen struct {
	Summary        CartScreen          `json:"summary"`
	Form           domain.OrderDetails `json:"form"`
	RequiredFields []string            `json:"required_fields"`
}

// Patch updates a single quantity indicator on the products screen.
type Patch struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func presentCategories(categories []domain.Category) CategoriesScreen {
	items := make([]CategoryItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryItem{Key: c.Key, Label: catalog.DisplayName(c)})
	}
	return CategoriesScreen{Categories: items}
}

func presentProducts(category domain.Category, products []domain.Product, quantity func(string) int) ProductsScreen {
	items := make([]ProductItem, 0, len(products))
	for _, p := range products {
		items = append(items, ProductItem{
			ID:           p.ID,
			Name:         p.Name,
			Price:        p.Price,
			Weight:       p.DisplayWeight(),
			Availability: p.DisplayAvailability(),
			ImageURL:     p.ImageURL,
			DetailURL:    p.DetailURL,
			Quantity:     quantity(p.ID),
		})
	}
	return ProductsScreen{
		Category: CategoryItem{Key: category.Key, Label: catalog.DisplayName(category)},
		Products: items,
	}
}

func presentCart(cart *domain.Cart) CartScreen {
	lines := make([]CartLine, 0, len(cart.Items))
	for _, e := range cart.Items {
		lines = append(lines, CartLine{
			ProductID: e.ProductID,
			Name:      e.Name,
			ImageURL:  e.ImageURL,
			Price:     e.Price,
			Quantity:  e.Quantity,
			Subtotal:  e.Subtotal(),
		})
	}
	count, total := cart.Totals()
	return CartScreen{Lines: lines, ItemCount: count, TotalAmount: total}
}

func presentCheckout(cart *domain.Cart, form domain.OrderDetails) CheckoutScreen {
	return CheckoutScreen{
		Summary:        presentCart(cart),
		Form:           form,
		RequiredFields: checkout.RequiredFields(form.DeliveryMethod),
	}
}
