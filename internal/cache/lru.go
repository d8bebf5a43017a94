// internal/cache/lru.go
//
// Small LRU cache used by the validator to keep compiled schemas.  Keys are
// strings (absolute schema paths or document digests).  All methods are safe
// for concurrent use; a single mutex is enough for a few thousand entries.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a least-recently-used cache of string keys to arbitrary values.
type LRU struct {
	mu   sync.Mutex
	cap  int
	ll   *list.List
	dict map[string]*list.Element

	// OnEvict, when set, is called with the key of every entry pushed out
	// by capacity pressure.  It is not called for Remove or Purge.
	OnEvict func(key string)
}

type pair struct {
	key string
	val any
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New(capacity int) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a value and marks it MRU.
func (c *LRU) Get(key string) (val any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, hit := c.dict[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(pair).val, true
	}
	return nil, false
}

// Add inserts or updates a value.
func (c *LRU) Add(key string, val any) {
	c.mu.Lock()
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair{key, val}
		c.ll.MoveToFront(ele)
		c.mu.Unlock()
		return
	}
	ele := c.ll.PushFront(pair{key, val})
	c.dict[key] = ele

	var evicted string
	var didEvict bool
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		evicted = last.Value.(pair).key
		delete(c.dict, evicted)
		didEvict = true
	}
	onEvict := c.OnEvict
	c.mu.Unlock()

	// Callback runs outside the lock so it may call back into the cache.
	if didEvict && onEvict != nil {
		onEvict(evicted)
	}
}

// Remove drops key if present and reports whether it was.
func (c *LRU) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, hit := c.dict[key]
	if !hit {
		return false
	}
	c.ll.Remove(ele)
	delete(c.dict, key)
	return true
}

// Purge empties the cache.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.dict = make(map[string]*list.Element, c.cap)
}

// Len reports current size.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
