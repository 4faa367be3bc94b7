// Package session holds the per-page-visit extraction context: the
// intercepted API calls delivered by the host, the first qualifying
// cartography payload, and the API token harvested along the way.
//
// A Session is created when a page visit starts and discarded once the
// record is returned. It replaces cross-call globals with an explicit
// lifecycle while keeping the "accumulate across many intercepted calls"
// behavior.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/osintlab/papex/internal/model"
	"github.com/osintlab/papex/pkg/cartography"
)

// Session accumulates interception state for one page visit.
type Session struct {
	mu sync.Mutex

	calls     []model.InterceptedCall
	carto     json.RawMessage
	cartoURL  string
	cartoAt   time.Time
	apiToken  string
	startedAt time.Time

	replayed bool
}

// New creates an empty session.
func New() *Session {
	return &Session{startedAt: time.Now().UTC()}
}

// Calls returns a copy of the intercepted-call trail in arrival order.
func (s *Session) Calls() []model.InterceptedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.InterceptedCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Cartography returns the stored payload, its source URL and capture time.
// ok is false when no qualifying payload has been observed.
func (s *Session) Cartography() (payload json.RawMessage, sourceURL string, at time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carto == nil {
		return nil, "", time.Time{}, false
	}
	return s.carto, s.cartoURL, s.cartoAt, true
}

// Token returns the API token harvested from intercepted URLs, if any.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiToken
}

func (s *Session) hasCartography() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carto != nil
}

func (s *Session) setCartography(payload json.RawMessage, sourceURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// First qualifying payload wins.
	if s.carto != nil {
		return
	}
	s.carto = payload
	s.cartoURL = sourceURL
	s.cartoAt = time.Now().UTC()
}

// AwaitCartography polls until a cartography payload is available or the
// ceiling elapses. It completes early the moment the payload arrives and
// reports whether one is now present.
func (s *Session) AwaitCartography(ctx context.Context, ceiling, poll time.Duration) bool {
	if s.hasCartography() {
		return true
	}
	if poll <= 0 {
		poll = 200 * time.Millisecond
	}

	deadline := time.NewTimer(ceiling)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.hasCartography()
		case <-deadline.C:
			return s.hasCartography()
		case <-ticker.C:
			if s.hasCartography() {
				return true
			}
		}
	}
}

// EnsureCartography waits for an intercepted payload and, when the ceiling
// elapses without one, performs exactly one manual replay of the cartography
// request. Replay failure is logged and swallowed; whatever payload state the
// session had is left untouched. Reports whether a payload is present after
// the attempt.
func (s *Session) EnsureCartography(ctx context.Context, client cartography.Client, siren string, ceiling, poll time.Duration) bool {
	if s.AwaitCartography(ctx, ceiling, poll) {
		return true
	}
	if client == nil || siren == "" {
		return false
	}

	s.mu.Lock()
	if s.replayed {
		s.mu.Unlock()
		return false
	}
	s.replayed = true
	token := s.apiToken
	s.mu.Unlock()

	if token != "" {
		client = client.WithToken(token)
	}

	zap.L().Info("session: cartography payload not intercepted, replaying request",
		zap.String("siren", siren),
	)
	payload, err := client.Fetch(ctx, siren)
	if err != nil {
		zap.L().Warn("session: cartography replay failed", zap.Error(err))
		return s.hasCartography()
	}

	s.setCartography(payload, "replay")
	return true
}
