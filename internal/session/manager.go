package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/host"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/view"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CleanupInterval is how often idle sessions are looked for.
const CleanupInterval = 30 * time.Second

var ErrSessionNotFound = errors.New("session not found")

// Catalog is the shared catalog cache as seen by a session.
type Catalog interface {
	view.Catalog
	cart.ProductLookup
}

// Publisher delivers order payloads sent by the host boundary.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, payload []byte) error
}

type Options struct {
	Store        kv.Store
	Catalog      Catalog
	Publisher    Publisher
	CartPolicy   cart.Policy
	DraftVersion string
	DraftTTL     time.Duration
	Rules        checkout.CartRules
	IdleTimeout  time.Duration
	Logger       *zap.Logger
}

// Manager owns the live storefront sessions.
type Manager struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Start opens a session for a client. Persisted state is scoped by client so
// it survives across sessions of the same device.
func (m *Manager) Start(ctx context.Context, clientID string, params view.LaunchParams) (Frame, error) {
	id := uuid.NewString()
	logger := m.logger.With(zap.String("session_id", id), zap.String("client_id", clientID))
	store := kv.Scoped(m.opts.Store, clientID)

	recorder := host.NewRecorder(func(ctx context.Context, data []byte) error {
		return m.opts.Publisher.Publish(ctx, id, data)
	})
	cartStore := cart.NewStore(store, m.opts.Catalog, m.opts.CartPolicy, logger)
	ctrl := view.NewController(view.Deps{
		Catalog:   m.opts.Catalog,
		Cart:      cartStore,
		Drafts:    checkout.NewDraftStore(store, m.opts.DraftVersion, m.opts.DraftTTL, logger),
		Submitter: order.NewSubmitter(recorder, cartStore, m.opts.Rules, logger),
		Host:      recorder,
		Store:     store,
		Logger:    logger,
	})

	s := &Session{ID: id, ClientID: clientID, host: recorder, ctrl: ctrl, lastSeen: m.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctrl.Start(ctx, params); err != nil {
		return Frame{}, err
	}
	frame := s.frameLocked()
	if !frame.Closed {
		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
	}
	return frame, nil
}

func (m *Manager) get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Frame returns the current frame of a session. Pending alerts are drained.
func (m *Manager) Frame(id string) (Frame, error) {
	s, err := m.get(id)
	if err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.now()
	return s.frameLocked(), nil
}

// Dispatch runs an event through the session's view controller. The frame is
// returned even when the event is rejected so the page can resync.
func (m *Manager) Dispatch(ctx context.Context, id string, event view.Event) (Frame, error) {
	s, err := m.get(id)
	if err != nil {
		return Frame{}, err
	}

	s.mu.Lock()
	s.lastSeen = m.now()
	handleErr := s.ctrl.Handle(ctx, event)
	frame := s.frameLocked()
	s.mu.Unlock()

	if frame.Closed {
		m.remove(id)
		m.logger.Info("session closed", zap.String("session_id", id))
	}
	return frame, handleErr
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run evicts idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := m.now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			m.logger.Info("evicted idle session", zap.String("session_id", id))
		}
	}
}
