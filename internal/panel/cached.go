package panel

import (
	"context"
	"time"

	"github.com/DigneZzZ/remnabot/internal/cache"
	"github.com/DigneZzZ/remnabot/internal/models"
)

const (
	inboundsCacheKey = "panel:inbounds"
	statsCacheKey    = "panel:system_stats"

	InboundsTTL = 5 * time.Minute
	StatsTTL    = 30 * time.Second
)

// Cached serves slow-changing reads from a cache and passes everything else
// through to the wrapped gateway.
type Cached struct {
	Gateway
	cache cache.Cache
}

// NewCached wraps g. A nil cache disables caching.
func NewCached(g Gateway, c cache.Cache) *Cached {
	if c == nil {
		c = cache.Nop{}
	}
	return &Cached{Gateway: g, cache: c}
}

// ListInbounds implements Gateway
func (c *Cached) ListInbounds(ctx context.Context) ([]models.Inbound, error) {
	var inbounds []models.Inbound
	if c.cache.Get(inboundsCacheKey, &inbounds) {
		return inbounds, nil
	}
	inbounds, err := c.Gateway.ListInbounds(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(inboundsCacheKey, inbounds, InboundsTTL)
	return inbounds, nil
}

// SystemStats implements Gateway
func (c *Cached) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	var stats models.SystemStats
	if c.cache.Get(statsCacheKey, &stats) {
		return &stats, nil
	}
	fresh, err := c.Gateway.SystemStats(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(statsCacheKey, fresh, StatsTTL)
	return fresh, nil
}
