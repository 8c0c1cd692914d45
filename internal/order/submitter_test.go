package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/host"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCart struct {
	cart    *domain.Cart
	cleared bool
}

func (f *fakeCart) Snapshot() *domain.Cart { return f.cart.Clone() }

func (f *fakeCart) Clear(context.Context) error {
	f.cleared = true
	f.cart = domain.NewCart()
	return nil
}

func cartOf(price string, qty int) *fakeCart {
	return &fakeCart{cart: &domain.Cart{Items: []domain.CartEntry{
		{ProductID: "A", Name: "Rye loaf", Price: decimal.RequireFromString(price), Quantity: qty},
	}}}
}

func validDetails(method domain.DeliveryMethod) domain.OrderDetails {
	details := domain.OrderDetails{
		LastName:       "Smith",
		FirstName:      "Anna",
		MiddleName:     "Marie",
		Phone:          "+1 555 123 4567",
		Email:          "anna@example.com",
		DeliveryDate:   "2026-10-20",
		DeliveryMethod: method,
		PaymentMethod:  "cash",
	}
	if method == domain.DeliveryCourier {
		details.City = "Springfield"
		details.AddressLine = "12 Baker Street"
	} else {
		details.PickupAddress = "Main square kiosk"
	}
	return details
}

type sink struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (s *sink) send(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, data)
	return nil
}

var rules = checkout.NewCartRules(decimal.RequireFromString("70.00"))

func TestSubmit_Success(t *testing.T) {
	out := &sink{}
	platform := host.NewRecorder(out.send)
	cart := cartOf("10.50", 8)
	s := NewSubmitter(platform, cart, rules, nil)

	outcome := s.Submit(context.Background(), validDetails(domain.DeliveryCourier))

	assert.Equal(t, OutcomeSubmitted, outcome)
	require.Len(t, out.payloads, 1)

	var payload domain.OrderPayload
	require.NoError(t, json.Unmarshal(out.payloads[0], &payload))
	assert.Equal(t, domain.ActionCheckoutOrder, payload.Action)
	assert.True(t, decimal.RequireFromString("84.00").Equal(payload.TotalAmount))
	require.Len(t, payload.CartItems, 1)
	assert.Equal(t, 8, payload.CartItems[0].Quantity)

	assert.True(t, cart.cleared)
	assert.True(t, platform.Closed())
	assert.Equal(t, []string{MsgOrderPlaced}, platform.DrainAlerts())
	assert.True(t, s.InFlight())
}

func TestSubmit_SecondCallAfterSuccessIsNoop(t *testing.T) {
	out := &sink{}
	s := NewSubmitter(host.NewRecorder(out.send), cartOf("10.50", 8), rules, nil)

	assert.Equal(t, OutcomeSubmitted, s.Submit(context.Background(), validDetails(domain.DeliveryCourier)))
	assert.Equal(t, OutcomeInFlight, s.Submit(context.Background(), validDetails(domain.DeliveryCourier)))
	assert.Len(t, out.payloads, 1)
}

func TestSubmit_InvalidFormSurfacesAllErrors(t *testing.T) {
	out := &sink{}
	platform := host.NewRecorder(out.send)
	cart := cartOf("10.50", 8)
	s := NewSubmitter(platform, cart, rules, nil)

	outcome := s.Submit(context.Background(), domain.OrderDetails{DeliveryMethod: domain.DeliveryPickup})

	assert.Equal(t, OutcomeInvalid, outcome)
	assert.Empty(t, out.payloads)
	assert.False(t, cart.cleared)
	assert.False(t, s.InFlight())

	alerts := platform.DrainAlerts()
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], checkout.MsgLastName)
	assert.Contains(t, alerts[0], checkout.MsgPickupAddress)
	assert.Contains(t, alerts[0], checkout.MsgPaymentMethod)
}

func TestSubmit_EmptyCart(t *testing.T) {
	out := &sink{}
	platform := host.NewRecorder(out.send)
	s := NewSubmitter(platform, &fakeCart{cart: domain.NewCart()}, rules, nil)

	assert.Equal(t, OutcomeRejected, s.Submit(context.Background(), validDetails(domain.DeliveryPickup)))
	assert.Equal(t, []string{checkout.MsgEmptyCart}, platform.DrainAlerts())
	assert.False(t, s.InFlight())
	assert.Empty(t, out.payloads)
}

func TestSubmit_MinimumOrderDependsOnDeliveryMethod(t *testing.T) {
	out := &sink{}
	platform := host.NewRecorder(out.send)
	s := NewSubmitter(platform, cartOf("25.00", 2), rules, nil)

	assert.Equal(t, OutcomeRejected, s.Submit(context.Background(), validDetails(domain.DeliveryCourier)))
	alerts := platform.DrainAlerts()
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "minimum order for courier delivery is 70.00")
	assert.Empty(t, out.payloads)

	assert.Equal(t, OutcomeSubmitted, s.Submit(context.Background(), validDetails(domain.DeliveryPickup)))
	assert.Len(t, out.payloads, 1)
}

func TestSubmit_DispatchFailureKeepsCart(t *testing.T) {
	out := &sink{err: errors.New("broker unavailable")}
	platform := host.NewRecorder(out.send)
	cart := cartOf("10.50", 8)
	s := NewSubmitter(platform, cart, rules, nil)

	assert.Equal(t, OutcomeDispatchFailed, s.Submit(context.Background(), validDetails(domain.DeliveryCourier)))
	assert.Equal(t, []string{MsgDispatchFailed}, platform.DrainAlerts())
	assert.False(t, cart.cleared)
	assert.False(t, platform.Closed())
	assert.False(t, s.InFlight())

	out.err = nil
	assert.Equal(t, OutcomeSubmitted, s.Submit(context.Background(), validDetails(domain.DeliveryCourier)))
}

func TestSubmit_ConcurrentCallsDispatchOnce(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var sends atomic.Int32

	platform := host.NewRecorder(func(context.Context, []byte) error {
		sends.Add(1)
		close(entered)
		<-release
		return nil
	})
	s := NewSubmitter(platform, cartOf("10.50", 8), rules, nil)

	first := make(chan Outcome, 1)
	go func() {
		first <- s.Submit(context.Background(), validDetails(domain.DeliveryCourier))
	}()

	<-entered
	assert.Equal(t, OutcomeInFlight, s.Submit(context.Background(), validDetails(domain.DeliveryCourier)))
	close(release)

	assert.Equal(t, OutcomeSubmitted, <-first)
	assert.Equal(t, int32(1), sends.Load())
}
