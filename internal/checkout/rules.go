package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	MsgEmptyCart    = "Your cart is empty. Add some products before placing an order."
	MsgMinimumOrder = "The minimum order for %s delivery is %s. Your order total is %s."
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrBelowMinimum = errors.New("order total is below the minimum")
)

// MinimumOrderError reports a total below the minimum for its delivery method.
type MinimumOrderError struct {
	Method  domain.DeliveryMethod
	Minimum decimal.Decimal
	Total   decimal.Decimal
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("%s: %s delivery requires %s, got %s",
		ErrBelowMinimum, e.Method, e.Minimum.StringFixed(2), e.Total.StringFixed(2))
}

func (e *MinimumOrderError) Is(target error) bool {
	return target == ErrBelowMinimum
}

// CartRules are the order-level rules checked at submission time. Delivery
// methods without an entry in MinimumOrder have no minimum.
type CartRules struct {
	MinimumOrder map[domain.DeliveryMethod]decimal.Decimal
}

func NewCartRules(courierMinimum decimal.Decimal) CartRules {
	return CartRules{MinimumOrder: map[domain.DeliveryMethod]decimal.Decimal{
		domain.DeliveryCourier: courierMinimum,
	}}
}

func (r CartRules) Check(method domain.DeliveryMethod, cart *domain.Cart) error {
	if cart == nil || cart.IsEmpty() {
		return ErrEmptyCart
	}
	minimum, ok := r.MinimumOrder[method]
	if !ok {
		return nil
	}
	if _, total := cart.Totals(); total.LessThan(minimum) {
		return &MinimumOrderError{Method: method, Minimum: minimum, Total: total}
	}
	return nil
}

// UserMessage converts a rule violation into the message shown to the customer.
func UserMessage(err error) string {
	var minErr *MinimumOrderError
	switch {
	case errors.As(err, &minErr):
		return fmt.Sprintf(MsgMinimumOrder, minErr.Method, minErr.Minimum.StringFixed(2), minErr.Total.StringFixed(2))
	case errors.Is(err, ErrEmptyCart):
		return MsgEmptyCart
	default:
		return err.Error()
	}
}
