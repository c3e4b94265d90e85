package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airscheduling/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

type routeSource interface {
	Route(ctx context.Context, origin, destination string) (*domain.Route, error)
}

// RouteCache memoizes route lookups in-process. The route table is static
// reference data (durations never change), so unlike the flight timelines
// it is safe to cache across requests.
type RouteCache struct {
	source routeSource
	cache  *gocache.Cache
}

func NewRouteCache(source routeSource) *RouteCache {
	return &RouteCache{
		source: source,
		cache:  gocache.New(time.Hour, 2*time.Hour),
	}
}

func (c *RouteCache) Route(ctx context.Context, origin, destination string) (*domain.Route, error) {
	key := fmt.Sprintf("%s|%s", origin, destination)
	if cached, ok := c.cache.Get(key); ok {
		rt := cached.(domain.Route)
		return &rt, nil
	}

	rt, err := c.source.Route(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, *rt, gocache.DefaultExpiration)
	return rt, nil
}
