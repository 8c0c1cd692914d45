package order

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/host"
	"go.uber.org/zap"
)

const (
	MsgOrderPlaced    = "Thank you! Your order has been placed. We will contact you shortly to confirm it."
	MsgDispatchFailed = "We could not send your order. Please try again in a moment."
)

type Outcome string

const (
	OutcomeInFlight       Outcome = "in_flight"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeRejected       Outcome = "rejected"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
	OutcomeSubmitted      Outcome = "submitted"
)

// Cart is the part of the cart store the submitter needs.
type Cart interface {
	Snapshot() *domain.Cart
	Clear(ctx context.Context) error
}

// Submitter sends at most one order per checkout attempt.
type Submitter struct {
	host   host.Platform
	cart   Cart
	rules  checkout.CartRules
	logger *zap.Logger

	inFlight atomic.Bool
}

func NewSubmitter(platform host.Platform, cart Cart, rules checkout.CartRules, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{host: platform, cart: cart, rules: rules, logger: logger}
}

// InFlight reports whether a submission holds the guard.
func (s *Submitter) InFlight() bool {
	return s.inFlight.Load()
}

// Submit validates the form and the cart and dispatches the order to the host.
// On success the cart is cleared and the host is asked to close; the guard
// stays taken because the session is ending.
func (s *Submitter) Submit(ctx context.Context, details domain.OrderDetails) Outcome {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Info("order submission already in progress")
		return OutcomeInFlight
	}

	if result := checkout.ValidateOrderForm(details); !result.IsValid {
		s.host.ShowAlert(strings.Join(result.Messages(), "\n"))
		s.inFlight.Store(false)
		return OutcomeInvalid
	}

	cart := s.cart.Snapshot()
	if err := s.rules.Check(details.DeliveryMethod, cart); err != nil {
		s.host.ShowAlert(checkout.UserMessage(err))
		s.inFlight.Store(false)
		return OutcomeRejected
	}

	payload := domain.NewOrderPayload(details, cart)
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal order payload", zap.Error(err))
		s.host.ShowAlert(MsgDispatchFailed)
		s.inFlight.Store(false)
		return OutcomeDispatchFailed
	}

	if err := s.host.SendData(ctx, data); err != nil {
		s.logger.Error("failed to dispatch order", zap.Error(err))
		s.host.ShowAlert(MsgDispatchFailed)
		s.inFlight.Store(false)
		return OutcomeDispatchFailed
	}

	s.logger.Info("order dispatched",
		zap.Int("items", len(payload.CartItems)),
		zap.String("total_amount", payload.TotalAmount.StringFixed(2)),
		zap.String("delivery_method", details.DeliveryMethod.String()))

	s.host.ShowAlert(MsgOrderPlaced)
	if err := s.cart.Clear(ctx); err != nil {
		s.logger.Error("failed to clear cart after order", zap.Error(err))
	}
	s.host.Close()
	return OutcomeSubmitted
}
