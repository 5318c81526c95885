package cartconfig

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Names of the config entries the pricing resolver depends on.
const (
	NameShipping     = "shipping"
	NameFreeShipping = "free_shipping"
)

// Defaults applied when a config row is missing or unparseable.
var (
	DefaultShippingFee           = decimal.NewFromInt(50)
	DefaultFreeShippingThreshold = decimal.NewFromInt(500)
)

// Provider serves pricing config with a short-lived in-process cache so the
// hot checkout path does not hit the database on every totals computation.
type Provider struct {
	repo   Repository
	ttl    time.Duration
	logger *log.Logger

	mu        sync.Mutex
	cached    Values
	expiresAt time.Time
}

// Values is the resolved pricing configuration.
type Values struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func NewProvider(repo Repository, ttl time.Duration, logger *log.Logger) *Provider {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Provider{repo: repo, ttl: ttl, logger: logger}
}

// Values returns the current pricing config, serving from cache inside the
// TTL window. A failed refresh falls back to the previous cached values, or
// the defaults when nothing was cached yet.
func (p *Provider) Values(ctx context.Context) Values {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Before(p.expiresAt) {
		return p.cached
	}

	vals, err := p.load(ctx)
	if err != nil {
		p.logger.Printf("config refresh failed, keeping previous values: %v", err)
		if p.expiresAt.IsZero() {
			p.cached = Values{
				ShippingFee:           DefaultShippingFee,
				FreeShippingThreshold: DefaultFreeShippingThreshold,
			}
		}
		p.expiresAt = now.Add(p.ttl)
		return p.cached
	}

	p.cached = vals
	p.expiresAt = now.Add(p.ttl)
	return p.cached
}

// Invalidate drops the cache so the next read reloads from the database.
// Called after an admin config update.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.expiresAt = time.Time{}
	p.mu.Unlock()
}

func (p *Provider) load(ctx context.Context) (Values, error) {
	vals := Values{
		ShippingFee:           DefaultShippingFee,
		FreeShippingThreshold: DefaultFreeShippingThreshold,
	}

	entries, err := p.repo.List(ctx)
	if err != nil {
		return Values{}, err
	}

	for _, e := range entries {
		d, err := decimal.NewFromString(e.Value)
		if err != nil || d.IsNegative() {
			p.logger.Printf("ignoring bad config value %s=%q", e.Name, e.Value)
			continue
		}
		switch e.Name {
		case NameShipping:
			vals.ShippingFee = d
		case NameFreeShipping:
			vals.FreeShippingThreshold = d
		}
	}

	return vals, nil
}
