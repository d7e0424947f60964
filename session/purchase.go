package session

import (
	"context"
	"fmt"

	"nativo/log"
)

// Bundle is a purchasable top-up pack.
type Bundle struct {
	Plan     string
	Label    string
	Credits  int
	Scans    int
	PriceUSD float64
}

// Bundles is the store catalog. Plan identifiers are opaque to the
// client and resolved by the backend.
func Bundles() []Bundle {
	return []Bundle{
		{Plan: "starter", Label: "Starter", Credits: 20, Scans: 2, PriceUSD: 1.99},
		{Plan: "casual", Label: "Casual", Credits: 60, Scans: 6, PriceUSD: 4.99},
		{Plan: "standard", Label: "Standard", Credits: 150, Scans: 15, PriceUSD: 9.99},
		{Plan: "pro", Label: "Pro", Credits: 400, Scans: 40, PriceUSD: 19.99},
	}
}

// Balances are the post-purchase totals returned for display.
type Balances struct {
	Credits int
	Scans   int
}

// Buy spends real money on a pack. Double submission is guarded; the
// quota cache is force-refreshed before the call returns.
func (s *Session) Buy(ctx context.Context, plan string) (Balances, error) {
	s.mu.Lock()
	if s.buying {
		s.mu.Unlock()
		return Balances{}, ErrBusy
	}
	s.buying = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.buying = false
		s.mu.Unlock()
	}()

	res, err := s.backend.BuyPack(ctx, plan)
	if err != nil {
		log.Purchase(plan, false)
		s.sink.Error("purchase failed, you were not charged")
		return Balances{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if !res.Success {
		log.Purchase(plan, false)
		s.sink.Error("purchase failed, you were not charged")
		return Balances{}, ErrPurchaseFailed
	}

	log.Purchase(plan, true)
	s.refreshQuota(ctx, true)
	return Balances{Credits: res.Quotas.Credits, Scans: res.Quotas.Scans}, nil
}

// Buying reports whether a purchase is in flight, to disable the
// trigger in the store view.
func (s *Session) Buying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buying
}
