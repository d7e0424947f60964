// Package quota caches the server-side usage balance. The server is the
// sole source of truth: the snapshot is only ever replaced wholesale by a
// successful fetch, never decremented locally.
package quota

import (
	"context"
	"sync"
	"time"

	"nativo/log"
)

// Snapshot is the balance as last reported by the backend.
type Snapshot struct {
	CreditsLeft        int
	SecondsAccumulated int
	SecsPerCredit      int
	RemainingScans     int
	Plan               string
	ExpiresAt          *time.Time
}

// SecondsLeft derives the spendable seconds, clamped at zero for display.
func (s Snapshot) SecondsLeft() int {
	if s.SecsPerCredit <= 0 {
		return 0
	}
	left := s.CreditsLeft*s.SecsPerCredit - s.SecondsAccumulated
	if left < 0 {
		return 0
	}
	return left
}

func (s Snapshot) OutOfQuota() bool {
	return s.CreditsLeft <= 0 && s.SecondsLeft() <= 0
}

// Fetcher is the backend collaborator that reads the balance.
type Fetcher interface {
	FetchQuota(ctx context.Context) (Snapshot, error)
}

const cacheTTL = 30 * time.Second

// Store serializes refreshes so readers never observe a half-updated
// snapshot. All spend-triggering flows go through ForceRefresh.
type Store struct {
	fetcher Fetcher
	now     func() time.Time

	mu        sync.Mutex
	snap      Snapshot
	loading   bool
	lastFetch time.Time
}

func NewStore(fetcher Fetcher) *Store {
	return &Store{fetcher: fetcher, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) OutOfQuota() bool {
	return s.Get().OutOfQuota()
}

// Fetched reports whether at least one refresh has succeeded. Local
// zero-balance pre-checks only apply once a real balance is known.
func (s *Store) Fetched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.lastFetch.IsZero()
}

// Refresh fetches the balance, serving a cached snapshot when the last
// successful fetch is fresh enough.
func (s *Store) Refresh(ctx context.Context) (Snapshot, error) {
	return s.refresh(ctx, false)
}

// ForceRefresh always hits the network. Required after any spend or
// purchase, which must never be served stale.
func (s *Store) ForceRefresh(ctx context.Context) (Snapshot, error) {
	return s.refresh(ctx, true)
}

func (s *Store) refresh(ctx context.Context, force bool) (Snapshot, error) {
	s.mu.Lock()
	if !force && !s.lastFetch.IsZero() && s.now().Sub(s.lastFetch) < cacheTTL {
		snap := s.snap
		s.mu.Unlock()
		log.QuotaRefresh(snap.CreditsLeft, snap.SecondsLeft(), snap.RemainingScans, true)
		return snap, nil
	}
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	snap, err := s.fetcher.FetchQuota(ctx)
	if err != nil {
		// Keep the previous snapshot; zeroing it here would lock the UI
		// out of quota on a transient network failure.
		log.Warnf("quota fetch failed: %v", err)
		return s.Get(), err
	}

	s.mu.Lock()
	s.snap = snap
	s.lastFetch = s.now()
	s.mu.Unlock()

	log.QuotaRefresh(snap.CreditsLeft, snap.SecondsLeft(), snap.RemainingScans, false)
	return snap, nil
}
