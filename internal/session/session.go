package session

import (
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/host"
	"github.com/fjod/go_storefront/internal/view"
)

// Frame is everything the page needs to draw after an event.
type Frame struct {
	SessionID   string          `json:"session_id"`
	View        view.Name       `json:"view"`
	CategoryKey string          `json:"category_key,omitempty"`
	Screen      any             `json:"screen"`
	BackButton  bool            `json:"back_button"`
	MainButton  host.MainButton `json:"main_button"`
	Alerts      []string        `json:"alerts"`
	Patches     []view.Patch    `json:"patches"`
	Closed      bool            `json:"closed"`
}

// Session is the explicit context of one storefront run. Events of a session
// are handled one at a time.
type Session struct {
	ID       string
	ClientID string

	mu       sync.Mutex
	host     *host.Recorder
	ctrl     *view.Controller
	lastSeen time.Time
}

func (s *Session) frameLocked() Frame {
	state := s.ctrl.State()
	chrome := s.host.Chrome()
	return Frame{
		SessionID:   s.ID,
		View:        state.View,
		CategoryKey: state.CategoryKey,
		Screen:      s.ctrl.Screen(),
		BackButton:  chrome.BackButton,
		MainButton:  chrome.MainButton,
		Alerts:      s.host.DrainAlerts(),
		Patches:     s.ctrl.DrainPatches(),
		Closed:      s.host.Closed(),
	}
}
