package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/kv"
	"go.uber.org/zap"
)

// DraftKey is the key under which the customer details draft is stored.
const DraftKey = "customerDetails"

type persistedDraft struct {
	Version   string              `json:"version"`
	Timestamp time.Time           `json:"timestamp"`
	Details   domain.OrderDetails `json:"details"`
}

// DraftStore keeps the last entered customer details to prefill the checkout form.
type DraftStore struct {
	kv      kv.Store
	version string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewDraftStore(store kv.Store, version string, ttl time.Duration, logger *zap.Logger) *DraftStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftStore{kv: store, version: version, ttl: ttl, logger: logger, now: time.Now}
}

// Load returns the stored draft. ok is false when there is no usable draft;
// an outdated or unreadable one is deleted.
func (s *DraftStore) Load(ctx context.Context) (details domain.OrderDetails, ok bool, err error) {
	raw, err := s.kv.Get(ctx, DraftKey)
	if errors.Is(err, kv.ErrNotFound) {
		return domain.OrderDetails{}, false, nil
	}
	if err != nil {
		return domain.OrderDetails{}, false, fmt.Errorf("failed to load draft: %w", err)
	}

	var draft persistedDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		s.logger.Warn("discarding unreadable customer draft", zap.Error(err))
		return domain.OrderDetails{}, false, s.Clear(ctx)
	}
	age := s.now().Sub(draft.Timestamp)
	if draft.Version != s.version || age > s.ttl || age < 0 {
		s.logger.Warn("discarding outdated customer draft",
			zap.String("version", draft.Version),
			zap.Duration("age", age))
		return domain.OrderDetails{}, false, s.Clear(ctx)
	}

	return SwitchDeliveryMethod(draft.Details, draft.Details.DeliveryMethod), true, nil
}

func (s *DraftStore) Save(ctx context.Context, details domain.OrderDetails) error {
	data, err := json.Marshal(persistedDraft{
		Version:   s.version,
		Timestamp: s.now(),
		Details:   details,
	})
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}
	if err := s.kv.Set(ctx, DraftKey, string(data)); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, DraftKey); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
