package domain

import "github.com/shopspring/decimal"

const ActionCheckoutOrder = "checkout_order"

type DeliveryMethod string

const (
	DeliveryCourier DeliveryMethod = "courier"
	DeliveryPickup  DeliveryMethod = "pickup"
)

func (m DeliveryMethod) IsValid() bool {
	return m == DeliveryCourier || m == DeliveryPickup
}

func (m DeliveryMethod) String() string {
	return string(m)
}

// OrderDetails is the typed checkout form. Only the address variant matching
// DeliveryMethod is populated.
type OrderDetails struct {
	LastName       string         `json:"last_name"`
	FirstName      string         `json:"first_name"`
	MiddleName     string         `json:"middle_name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	DeliveryDate   string         `json:"delivery_date"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`

	City           string `json:"city,omitempty"`
	AddressLine    string `json:"address_line,omitempty"`
	CourierComment string `json:"courier_comment,omitempty"`

	PickupAddress string `json:"pickup_address,omitempty"`
	PickupComment string `json:"pickup_comment,omitempty"`

	PaymentMethod string `json:"payment_method"`
}

type PayloadItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderPayload is the message handed to the host conversation on checkout.
type OrderPayload struct {
	Action       string          `json:"action"`
	OrderDetails OrderDetails    `json:"order_details"`
	CartItems    []PayloadItem   `json:"cart_items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewOrderPayload builds a payload whose total is folded from the items it carries.
func NewOrderPayload(details OrderDetails, cart *Cart) OrderPayload {
	items := make([]PayloadItem, 0, len(cart.Items))
	total := decimal.Zero
	for _, entry := range cart.Items {
		items = append(items, PayloadItem{
			ID:       entry.ProductID,
			Name:     entry.Name,
			Quantity: entry.Quantity,
			Price:    entry.Price,
		})
		total = total.Add(entry.Subtotal())
	}
	return OrderPayload{
		Action:       ActionCheckoutOrder,
		OrderDetails: details,
		CartItems:    items,
		TotalAmount:  total,
	}
}
