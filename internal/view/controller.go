package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/host"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LastCategoryKey remembers the category the customer browsed before opening the cart.
const LastCategoryKey = "lastProductCategory"

const (
	MsgCatalogUnavailable = "Could not load the catalog. Please check your connection and try again."
	MsgCategoryNotFound   = "This category is not available any more."
	MsgCartNotSaved       = "Could not save your cart. Please try again."
)

type Catalog interface {
	// Load refetches the whole catalog, keeping the previous data on failure.
	Load(ctx context.Context) error
	Categories(ctx context.Context) ([]domain.Category, error)
	Products(ctx context.Context, categoryKey string) ([]domain.Product, error)
}

type CartStore interface {
	LoadWithExpiration(ctx context.Context) error
	ChangeQuantity(ctx context.Context, productID string, delta int) (int, error)
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	Totals() (int, decimal.Decimal)
	Quantity(productID string) int
	IsEmpty() bool
	Snapshot() *domain.Cart
}

type Drafts interface {
	Load(ctx context.Context) (domain.OrderDetails, bool, error)
	Save(ctx context.Context, details domain.OrderDetails) error
}

type Submitter interface {
	Submit(ctx context.Context, details domain.OrderDetails) order.Outcome
}

type Deps struct {
	Catalog   Catalog
	Cart      CartStore
	Drafts    Drafts
	Submitter Submitter
	Host      host.Platform
	Store     kv.Store
	Logger    *zap.Logger
}

// Controller owns the visible screen of one storefront session and the
// transitions between screens. It is not safe for concurrent use.
type Controller struct {
	catalog   Catalog
	cart      CartStore
	drafts    Drafts
	submitter Submitter
	host      host.Platform
	store     kv.Store
	logger    *zap.Logger

	handlers map[route]handler

	state        State
	screen       any
	form         domain.OrderDetails
	formLoaded   bool
	welcomeShown bool
	patches      []Patch

	// set while the start-up fetch failure is already on screen
	catalogAlerted bool
}

func NewController(deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		catalog:   deps.Catalog,
		cart:      deps.Cart,
		drafts:    deps.Drafts,
		submitter: deps.Submitter,
		host:      deps.Host,
		store:     deps.Store,
		logger:    logger,
	}
	c.handlers = c.routes()
	return c
}

// Start restores persisted state and shows the screen selected by the launch parameters.
func (c *Controller) Start(ctx context.Context, params LaunchParams) error {
	c.host.Ready()
	c.host.Expand()

	if err := c.cart.LoadWithExpiration(ctx); err != nil {
		c.logger.Error("failed to restore cart", zap.Error(err))
	}
	if err := c.catalog.Load(ctx); err != nil {
		c.logger.Error("initial catalog fetch failed", zap.Error(err))
		c.host.ShowAlert(MsgCatalogUnavailable)
		c.catalogAlerted = true
	}
	defer func() { c.catalogAlerted = false }()

	initial := InitialState(params)
	c.logger.Info("storefront started",
		zap.String("view", initial.View.String()),
		zap.String("category", initial.CategoryKey))
	return c.show(ctx, initial)
}

func (c *Controller) alertCatalogUnavailable() {
	if !c.catalogAlerted {
		c.host.ShowAlert(MsgCatalogUnavailable)
	}
}

func (c *Controller) State() State {
	return c.state
}

// Screen returns the model of the visible screen.
func (c *Controller) Screen() any {
	return c.screen
}

// DrainPatches returns the quantity indicator updates since the last call.
func (c *Controller) DrainPatches() []Patch {
	patches := c.patches
	c.patches = nil
	if patches == nil {
		patches = []Patch{}
	}
	return patches
}

// ShowView switches to the named view. Unknown names are rejected without a state change.
func (c *Controller) ShowView(ctx context.Context, name string, categoryKey string) error {
	view, err := ParseName(name)
	if err != nil {
		c.logger.Warn("rejecting unknown view", zap.String("view", name))
		return fmt.Errorf("%w: %q", err, name)
	}
	return c.show(ctx, State{View: view, CategoryKey: categoryKey})
}

func (c *Controller) show(ctx context.Context, next State) error {
	previous := c.state.View
	if next.View != Products {
		next.CategoryKey = ""
	}
	c.state = next
	c.screen = nil

	switch next.View {
	case Welcome:
		c.welcomeShown = true
		c.screen = WelcomeScreen{CartItemCount: c.itemCount()}
	case Categories:
		c.renderCategories(ctx)
	case Products:
		if !c.renderProducts(ctx, next.CategoryKey) {
			return c.show(ctx, State{View: Categories})
		}
		if previous == Categories {
			c.rememberCategory(ctx, next.CategoryKey)
		}
	case Cart:
		c.screen = presentCart(c.cart.Snapshot())
	case Checkout:
		c.renderCheckout(ctx)
	}

	c.updateChrome()
	return nil
}

func (c *Controller) renderCategories(ctx context.Context) {
	categories, err := c.catalog.Categories(ctx)
	if err != nil {
		c.logger.Error("failed to render categories", zap.Error(err))
		c.alertCatalogUnavailable()
		c.screen = CategoriesScreen{Categories: []CategoryItem{}}
		return
	}
	c.screen = presentCategories(categories)
}

// renderProducts reports false when the category does not exist and the view
// has to fall back to the category list.
func (c *Controller) renderProducts(ctx context.Context, categoryKey string) bool {
	category := domain.Category{Key: categoryKey}
	empty := ProductsScreen{Category: CategoryItem{Key: categoryKey, Label: catalog.DisplayName(category)}, Products: []ProductItem{}}

	products, err := c.catalog.Products(ctx, categoryKey)
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound):
		c.logger.Warn("category not found", zap.String("category", categoryKey))
		c.host.ShowAlert(MsgCategoryNotFound)
		return false
	case err != nil:
		c.logger.Error("failed to render products", zap.String("category", categoryKey), zap.Error(err))
		c.alertCatalogUnavailable()
		c.screen = empty
		return true
	}

	if categories, err := c.catalog.Categories(ctx); err == nil {
		for _, cat := range categories {
			if cat.Key == categoryKey {
				category = cat
				break
			}
		}
	}
	c.screen = presentProducts(category, products, c.cart.Quantity)
	return true
}

func (c *Controller) renderCheckout(ctx context.Context) {
	if !c.formLoaded {
		draft, ok, err := c.drafts.Load(ctx)
		if err != nil {
			c.logger.Error("failed to load customer draft", zap.Error(err))
		}
		if ok {
			c.form = draft
		}
		if c.form.DeliveryMethod == "" {
			c.form.DeliveryMethod = domain.DeliveryCourier
		}
		c.formLoaded = true
	}
	c.screen = presentCheckout(c.cart.Snapshot(), c.form)
}

func (c *Controller) updateChrome() {
	switch c.state.View {
	case Welcome, Categories:
		c.host.HideBackButton()
	default:
		c.host.ShowBackButton()
	}

	count, total := c.cart.Totals()
	switch c.state.View {
	case Products:
		c.host.SetMainButtonText(fmt.Sprintf("View cart (%d) %s", count, total.StringFixed(2)))
		c.host.ShowMainButton()
	case Cart:
		c.host.SetMainButtonText(fmt.Sprintf("Checkout (%d) %s", count, total.StringFixed(2)))
		c.host.ShowMainButton()
	case Checkout:
		c.host.SetMainButtonText(fmt.Sprintf("Place order %s", total.StringFixed(2)))
		c.host.ShowMainButton()
	default:
		c.host.HideMainButton()
	}
}

func (c *Controller) itemCount() int {
	count, _ := c.cart.Totals()
	return count
}

func (c *Controller) rememberCategory(ctx context.Context, categoryKey string) {
	if err := c.store.Set(ctx, LastCategoryKey, categoryKey); err != nil {
		c.logger.Warn("failed to remember last category", zap.Error(err))
	}
}

// takeLastCategory returns and forgets the remembered category.
func (c *Controller) takeLastCategory(ctx context.Context) string {
	key, err := c.store.Get(ctx, LastCategoryKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.logger.Warn("failed to read last category", zap.Error(err))
		}
		return ""
	}
	if err := c.store.Delete(ctx, LastCategoryKey); err != nil {
		c.logger.Warn("failed to forget last category", zap.Error(err))
	}
	return key
}

// Back applies the host back control to the current view.
func (c *Controller) Back(ctx context.Context) error {
	switch backTransition(c.state.View, c.welcomeShown) {
	case backToCategories:
		return c.show(ctx, State{View: Categories})
	case backToWelcome:
		return c.show(ctx, State{View: Welcome})
	case backToCart:
		return c.show(ctx, State{View: Cart})
	case backToLastCategory:
		if key := c.takeLastCategory(ctx); key != "" {
			return c.show(ctx, State{View: Products, CategoryKey: key})
		}
		return c.show(ctx, State{View: Categories})
	default:
		c.logger.Info("closing storefront", zap.String("view", c.state.View.String()))
		c.host.Close()
		return nil
	}
}
