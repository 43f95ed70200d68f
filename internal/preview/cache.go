// Package preview orchestrates route discovery into live swap previews: it
// decides which source to query, merges results, and enforces the
// last-input-wins and staleness policies.
package preview

import (
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meridianswap/preview-engine/internal/domain"
	"github.com/meridianswap/preview-engine/internal/metrics"
)

const (
	cacheMaxSize = 1024 // Power of 2 for efficient modulo
	cacheShards  = 16   // Number of shards for reduced lock contention
)

// FNV-1a constants for zero-allocation hashing
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// cacheEntry holds one cached preview in contiguous memory
type cacheEntry struct {
	key     uint64
	preview *domain.SwapPreview
	expiry  int64  // Unix nano for faster comparison
	used    uint32 // Clock bit for eviction
}

type cacheShard struct {
	mu      sync.RWMutex
	entries []cacheEntry
	size    int
	hand    int // Clock hand for eviction
}

// Cache is a sharded clock-eviction cache keyed by the full request tuple
// (sell, buy, amount, trade type). Its TTL is the preview refresh window, so
// a hit is by definition still fresh.
type Cache struct {
	shards   [cacheShards]cacheShard
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	entriesPerShard := cacheMaxSize / cacheShards
	for i := 0; i < cacheShards; i++ {
		c.shards[i].entries = make([]cacheEntry, entriesPerShard)
	}
	go c.cleanupLoop()
	return c
}

func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// hashKey generates a cache key with inline FNV-1a (zero allocation).
func hashKey(sell, buy domain.AssetID, amount *big.Int, tradeType domain.TradeType) uint64 {
	h := uint64(fnvOffset64)
	for _, b := range sell {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	for _, b := range buy {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	if amount != nil && amount.IsUint64() {
		v := amount.Uint64()
		for i := 0; i < 8; i++ {
			h ^= (v >> (i * 8)) & 0xFF
			h *= fnvPrime64
		}
	} else if amount != nil {
		for _, b := range amount.Bytes() {
			h ^= uint64(b)
			h *= fnvPrime64
		}
	}
	h ^= uint64(tradeType)
	h *= fnvPrime64
	return h
}

func (c *Cache) getShard(key uint64) *cacheShard {
	return &c.shards[key%cacheShards]
}

func (c *Cache) Get(sell, buy domain.AssetID, amount *big.Int, tradeType domain.TradeType) *domain.SwapPreview {
	key := hashKey(sell, buy, amount, tradeType)
	now := time.Now().UnixNano()

	shard := c.getShard(key)
	shard.mu.RLock()
	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && now <= entry.expiry {
			atomic.StoreUint32(&entry.used, 1)
			p := entry.preview
			shard.mu.RUnlock()
			return p
		}
	}
	shard.mu.RUnlock()
	return nil
}

func (c *Cache) Set(sell, buy domain.AssetID, amount *big.Int, tradeType domain.TradeType, preview *domain.SwapPreview) {
	key := hashKey(sell, buy, amount, tradeType)
	expiry := time.Now().Add(c.ttl).UnixNano()

	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key {
			entry.preview = preview
			entry.expiry = expiry
			atomic.StoreUint32(&entry.used, 1)
			return
		}
	}

	entriesPerShard := len(shard.entries)
	if shard.size < entriesPerShard {
		entry := &shard.entries[shard.size]
		entry.key = key
		entry.preview = preview
		entry.expiry = expiry
		entry.used = 1
		shard.size++
		return
	}

	// Clock eviction with a second chance for recently used entries.
	now := time.Now().UnixNano()
	for attempts := 0; attempts < entriesPerShard*2; attempts++ {
		entry := &shard.entries[shard.hand]
		shard.hand = (shard.hand + 1) % entriesPerShard

		if atomic.LoadUint32(&entry.used) == 0 || now > entry.expiry {
			entry.key = key
			entry.preview = preview
			entry.expiry = expiry
			entry.used = 1
			return
		}
		atomic.StoreUint32(&entry.used, 0)
	}

	// Fallback: overwrite at the current hand position.
	entry := &shard.entries[shard.hand]
	entry.key = key
	entry.preview = preview
	entry.expiry = expiry
	entry.used = 1
	shard.hand = (shard.hand + 1) % entriesPerShard
}

// evictExpired marks expired entries unused so the clock hand reclaims them.
func (c *Cache) evictExpired() {
	now := time.Now().UnixNano()
	for i := 0; i < cacheShards; i++ {
		shard := &c.shards[i]
		shard.mu.Lock()
		for j := 0; j < shard.size; j++ {
			entry := &shard.entries[j]
			if now > entry.expiry {
				atomic.StoreUint32(&entry.used, 0)
			}
		}
		shard.mu.Unlock()
	}
}

// Size returns the current entry count across all shards.
func (c *Cache) Size() int {
	total := 0
	for i := 0; i < cacheShards; i++ {
		shard := &c.shards[i]
		shard.mu.RLock()
		total += shard.size
		shard.mu.RUnlock()
	}
	return total
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.evictExpired()
			metrics.PreviewCacheSize.Set(float64(c.Size()))
		}
	}
}
