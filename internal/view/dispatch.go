package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"go.uber.org/zap"
)

const (
	ActionBack             = "back"
	ActionMainButton       = "main_button"
	ActionOpenCatalog      = "open_catalog"
	ActionOpenCart         = "open_cart"
	ActionSelectCategory   = "select_category"
	ActionIncrease         = "increase"
	ActionDecrease         = "decrease"
	ActionRemove           = "remove"
	ActionClear            = "clear"
	ActionCheckout         = "checkout"
	ActionContinueShopping = "continue_shopping"
	ActionSetField         = "set_field"
	ActionSetDelivery      = "set_delivery_method"
	ActionSubmit           = "submit"
)

var (
	ErrStaleScreen   = errors.New("event does not belong to the visible screen")
	ErrUnknownAction = errors.New("unknown action")
)

// Event is a user input or host chrome click posted by the page.
type Event struct {
	Screen string            `json:"screen"`
	Action string            `json:"action"`
	Params map[string]string `json:"params,omitempty"`
}

type route struct {
	screen Name
	action string
}

type handler func(ctx context.Context, params map[string]string) error

func (c *Controller) routes() map[route]handler {
	open := func(view Name) handler {
		return func(ctx context.Context, _ map[string]string) error {
			return c.show(ctx, State{View: view})
		}
	}

	table := map[route]handler{
		{Welcome, ActionOpenCatalog}: open(Categories),
		{Welcome, ActionOpenCart}:    open(Cart),

		{Categories, ActionSelectCategory}: c.selectCategory,
		{Categories, ActionOpenCart}:       open(Cart),

		{Products, ActionIncrease}: c.changeQuantity(1),
		{Products, ActionDecrease}: c.changeQuantity(-1),
		{Products, ActionOpenCart}: open(Cart),

		{Cart, ActionIncrease}:         c.changeQuantity(1),
		{Cart, ActionDecrease}:         c.changeQuantity(-1),
		{Cart, ActionRemove}:           c.removeItem,
		{Cart, ActionClear}:            c.clearCart,
		{Cart, ActionCheckout}:         c.goToCheckout,
		{Cart, ActionContinueShopping}: open(Categories),

		{Checkout, ActionSetField}:    c.setField,
		{Checkout, ActionSetDelivery}: c.setDeliveryMethod,
		{Checkout, ActionSubmit}:      c.submit,
	}

	mainButton := map[Name]handler{
		Products: open(Cart),
		Cart:     c.goToCheckout,
		Checkout: c.submit,
	}
	for _, view := range []Name{Welcome, Categories, Products, Cart, Checkout} {
		table[route{view, ActionBack}] = func(ctx context.Context, _ map[string]string) error {
			return c.Back(ctx)
		}
		if h, ok := mainButton[view]; ok {
			table[route{view, ActionMainButton}] = h
		}
	}
	return table
}

// Handle runs the handler registered for the event's screen and action.
func (c *Controller) Handle(ctx context.Context, event Event) error {
	screen, err := ParseName(event.Screen)
	if err != nil {
		c.logger.Warn("event for unknown screen", zap.String("screen", event.Screen))
		return fmt.Errorf("%w: %q", err, event.Screen)
	}
	if screen != c.state.View {
		c.logger.Warn("rejecting stale event",
			zap.String("screen", event.Screen),
			zap.String("visible", c.state.View.String()),
			zap.String("action", event.Action))
		return fmt.Errorf("%w: %s is showing", ErrStaleScreen, c.state.View)
	}

	h, ok := c.handlers[route{screen, event.Action}]
	if !ok {
		c.logger.Warn("no handler for event",
			zap.String("screen", event.Screen),
			zap.String("action", event.Action))
		return fmt.Errorf("%w: %s on %s", ErrUnknownAction, event.Action, screen)
	}
	return h(ctx, event.Params)
}

// param reads a required event parameter. A missing one is logged and the
// operation skipped.
func (c *Controller) param(params map[string]string, name string) (string, bool) {
	value, ok := params[name]
	if !ok || value == "" {
		c.logger.Warn("event is missing a parameter",
			zap.String("view", c.state.View.String()),
			zap.String("param", name))
		return "", false
	}
	return value, true
}

func (c *Controller) selectCategory(ctx context.Context, params map[string]string) error {
	key, ok := c.param(params, "category")
	if !ok {
		return nil
	}
	return c.show(ctx, State{View: Products, CategoryKey: key})
}

func (c *Controller) changeQuantity(delta int) handler {
	return func(ctx context.Context, params map[string]string) error {
		productID, ok := c.param(params, "product_id")
		if !ok {
			return nil
		}
		quantity, err := c.cart.ChangeQuantity(ctx, productID, delta)
		if err != nil {
			if errors.Is(err, cart.ErrUnknownProduct) {
				return nil
			}
			c.logger.Error("failed to change quantity", zap.String("product_id", productID), zap.Error(err))
			c.host.ShowAlert(MsgCartNotSaved)
			return nil
		}
		c.afterCartChange(productID, quantity)
		return nil
	}
}

// afterCartChange refreshes what the visible screen shows of the cart.
func (c *Controller) afterCartChange(productID string, quantity int) {
	switch c.state.View {
	case Products:
		c.patches = append(c.patches, Patch{ProductID: productID, Quantity: quantity})
		if screen, ok := c.screen.(ProductsScreen); ok {
			for i := range screen.Products {
				if screen.Products[i].ID == productID {
					screen.Products[i].Quantity = quantity
				}
			}
		}
	case Cart:
		c.screen = presentCart(c.cart.Snapshot())
	}
	c.updateChrome()
}

func (c *Controller) removeItem(ctx context.Context, params map[string]string) error {
	productID, ok := c.param(params, "product_id")
	if !ok {
		return nil
	}
	if err := c.cart.Remove(ctx, productID); err != nil {
		c.logger.Error("failed to remove cart item", zap.String("product_id", productID), zap.Error(err))
		c.host.ShowAlert(MsgCartNotSaved)
		return nil
	}
	c.afterCartChange(productID, 0)
	return nil
}

func (c *Controller) clearCart(ctx context.Context, _ map[string]string) error {
	if err := c.cart.Clear(ctx); err != nil {
		c.logger.Error("failed to clear cart", zap.Error(err))
		c.host.ShowAlert(MsgCartNotSaved)
		return nil
	}
	c.afterCartChange("", 0)
	return nil
}

func (c *Controller) goToCheckout(ctx context.Context, _ map[string]string) error {
	if c.cart.IsEmpty() {
		c.host.ShowAlert(checkout.MsgEmptyCart)
		return nil
	}
	return c.show(ctx, State{View: Checkout})
}

func (c *Controller) setField(ctx context.Context, params map[string]string) error {
	field, ok := c.param(params, "field")
	if !ok {
		return nil
	}
	next, known := checkout.SetField(c.form, field, params["value"])
	if !known {
		c.logger.Warn("unknown checkout field", zap.String("field", field))
		return nil
	}
	c.updateForm(ctx, next)
	return nil
}

func (c *Controller) setDeliveryMethod(ctx context.Context, params map[string]string) error {
	method, ok := c.param(params, "method")
	if !ok {
		return nil
	}
	c.updateForm(ctx, checkout.SwitchDeliveryMethod(c.form, domain.DeliveryMethod(method)))
	return nil
}

func (c *Controller) updateForm(ctx context.Context, next domain.OrderDetails) {
	c.form = next
	if err := c.drafts.Save(ctx, next); err != nil {
		c.logger.Warn("failed to save customer draft", zap.Error(err))
	}
	c.screen = presentCheckout(c.cart.Snapshot(), c.form)
}

// submit sends the order. Fields posted with the event replace the form.
func (c *Controller) submit(ctx context.Context, params map[string]string) error {
	if len(params) > 0 {
		c.updateForm(ctx, checkout.ExtractOrderDetails(params))
	}
	outcome := c.submitter.Submit(ctx, c.form)
	c.logger.Info("order submission finished", zap.String("outcome", string(outcome)))
	c.screen = presentCheckout(c.cart.Snapshot(), c.form)
	c.updateChrome()
	return nil
}
