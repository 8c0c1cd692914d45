package host

import (
	"context"
	"sync"
)

// Platform is the host messaging application surrounding the storefront.
type Platform interface {
	Ready()
	Expand()
	Close()

	ShowBackButton()
	HideBackButton()

	ShowMainButton()
	HideMainButton()
	SetMainButtonText(text string)

	ShowAlert(message string)

	// SendData hands a serialized payload to the host conversation.
	SendData(ctx context.Context, data []byte) error
}

type MainButton struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
}

// Chrome is the host-controlled UI state around the storefront page.
type Chrome struct {
	BackButton bool       `json:"back_button"`
	MainButton MainButton `json:"main_button"`
}

// SendFunc delivers outbound payloads for a Recorder.
type SendFunc func(ctx context.Context, data []byte) error

// Recorder is the server-side Platform: chrome calls are recorded and shipped
// to the page with the next frame, outbound data goes through send.
type Recorder struct {
	mu       sync.Mutex
	send     SendFunc
	chrome   Chrome
	alerts   []string
	ready    bool
	expanded bool
	closed   bool
}

func NewRecorder(send SendFunc) *Recorder {
	return &Recorder{send: send}
}

func (r *Recorder) Ready() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = true
}

func (r *Recorder) Expand() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expanded = true
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *Recorder) ShowBackButton() { r.setBack(true) }

func (r *Recorder) HideBackButton() { r.setBack(false) }

func (r *Recorder) setBack(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chrome.BackButton = visible
}

func (r *Recorder) ShowMainButton() { r.setMain(true) }

func (r *Recorder) HideMainButton() { r.setMain(false) }

func (r *Recorder) setMain(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chrome.MainButton.Visible = visible
}

func (r *Recorder) SetMainButtonText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chrome.MainButton.Text = text
}

func (r *Recorder) ShowAlert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
}

func (r *Recorder) SendData(ctx context.Context, data []byte) error {
	return r.send(ctx, data)
}

func (r *Recorder) Chrome() Chrome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chrome
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// IsReady reports whether Ready was called.
func (r *Recorder) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func (r *Recorder) Expanded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expanded
}

// DrainAlerts returns the alerts raised since the last call.
func (r *Recorder) DrainAlerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	alerts := r.alerts
	r.alerts = nil
	if alerts == nil {
		alerts = []string{}
	}
	return alerts
}
