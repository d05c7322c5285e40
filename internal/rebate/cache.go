package rebate

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/spinworks/draw10/internal/domain"
)

// chainCache is an in-memory LRU for materialized agent chains. The directory
// changes rarely relative to settlement volume; a short TTL bounds staleness
// when caps are retuned mid-day.
type chainCache struct {
	lru *expirable.LRU[string, domain.AgentChain]
}

func newChainCache(size int, ttl time.Duration) *chainCache {
	return &chainCache{
		lru: expirable.NewLRU[string, domain.AgentChain](size, nil, ttl),
	}
}

func (c *chainCache) Get(memberID string) (domain.AgentChain, bool) {
	return c.lru.Get(memberID)
}

func (c *chainCache) Set(memberID string, chain domain.AgentChain) {
	c.lru.Add(memberID, chain)
}

func (c *chainCache) Remove(memberID string) {
	c.lru.Remove(memberID)
}
