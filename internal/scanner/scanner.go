// Package scanner drives the detection pipeline for a single page lifetime.
// It owns two behaviors the pipeline itself must not know about: debouncing
// mutation bursts so a re-rendering page is scanned once per quiet window,
// and the scan latch, the one-shot gate that permanently suppresses further
// scans after the first successful emission. The latch is a correctness
// requirement: without it every DOM re-render would re-emit the same
// purchase.
package scanner

import (
	"sync"
	"time"
)

// DefaultQuietWindow is how long the page must stay still after a mutation
// burst before a rescan fires.
const DefaultQuietWindow = 1500 * time.Millisecond

// ScanFunc runs the classify-extract-emit pipeline once. It returns true
// when a candidate was successfully emitted, which engages the latch.
type ScanFunc func() bool

// Session is the per-page scan controller. Create one per page lifetime and
// discard it with the page.
type Session struct {
	scan  ScanFunc
	quiet time.Duration

	mu       sync.Mutex
	latched  bool
	scanning bool
	timer    *time.Timer
}

// NewSession builds a session around a scan function. A non-positive quiet
// window falls back to DefaultQuietWindow.
func NewSession(scan ScanFunc, quiet time.Duration) *Session {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &Session{scan: scan, quiet: quiet}
}

// ScanNow runs the pipeline immediately, as on initial page load. It is a
// no-op once the latch is engaged. Only one scan runs at a time: a call
// that arrives while a scan is in flight returns without scanning, so a
// timer fire racing a direct call cannot emit twice.
func (s *Session) ScanNow() {
	s.mu.Lock()
	if s.latched || s.scanning {
		s.mu.Unlock()
		return
	}
	s.scanning = true
	s.mu.Unlock()

	emitted := s.scan()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	if emitted {
		s.latched = true
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
	}
}

// Mutated records a DOM mutation. Bursts collapse into a single rescan that
// fires after the quiet window; each new mutation restarts the window.
// Mutations after the latch engages are ignored forever.
func (s *Session) Mutated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latched {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.ScanNow)
}

// Latched reports whether a candidate has already been emitted for this
// page lifetime.
func (s *Session) Latched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latched
}

// Close stops any pending rescan without engaging the latch. Call when the
// page goes away.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
