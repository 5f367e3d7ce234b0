// Package recipecache 保存最近擷取的食譜，以短 token 取回
package recipecache

import (
	"container/list"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/pkg/common"
)

// TokenLength token 長度（十六進位字元），加上前綴仍在 64 bytes 的 callback 限制內
const TokenLength = 12

// Entry 快取條目
type Entry struct {
	Token      string
	Recipe     *recipe.Recipe
	InsertedAt time.Time
	LastAccess time.Time
}

// Stats 快取統計
type Stats struct {
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Cache 容量固定的 LRU 快取
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // 最前面為最近使用
	items    map[string]*list.Element
	stats    Stats

	newToken func() string
	now      func() time.Time
	onEvict  func(token string)
}

// Option 建構選項
type Option func(*Cache)

// WithEvictHook 每次淘汰時呼叫，不可在 hook 內呼叫快取方法
func WithEvictHook(fn func(token string)) Option {
	return func(c *Cache) { c.onEvict = fn }
}

// New 建立快取，capacity 小於 1 時視為 1
func New(capacity int, opts ...Option) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
		newToken: func() string { return common.ShortHexID(TokenLength) },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put 存入食譜並回傳新 token；超過容量時淘汰最久未使用的條目
func (c *Cache) Put(r *recipe.Recipe) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.newToken()
	for {
		if _, exists := c.items[token]; !exists {
			break
		}
		token = c.newToken()
	}

	now := c.now()
	c.items[token] = c.order.PushFront(&Entry{
		Token:      token,
		Recipe:     r,
		InsertedAt: now,
		LastAccess: now,
	})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		entry := oldest.Value.(*Entry)
		c.order.Remove(oldest)
		delete(c.items, entry.Token)
		c.stats.Evictions++
		if c.onEvict != nil {
			c.onEvict(entry.Token)
		}
		common.LogDebug("食譜快取已淘汰", zap.String("token", entry.Token))
	}

	return token
}

// Get 取回食譜，命中時視為一次存取
func (c *Cache) Get(token string) (*recipe.Recipe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[token]
	if !ok {
		c.stats.Misses++
		common.LogCacheMiss("recipe")
		return nil, false
	}
	c.order.MoveToFront(elem)
	entry := elem.Value.(*Entry)
	entry.LastAccess = c.now()
	c.stats.Hits++
	common.LogCacheHit("recipe")
	return entry.Recipe, true
}

// Len 目前條目數
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats 回傳統計快照
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	s.Capacity = c.capacity
	return s
}
