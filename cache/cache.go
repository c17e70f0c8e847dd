// Package cache keeps compiled callables for reuse across compilations of
// the same expression. Identity is the blake2b digest of the canonical tree
// encoding together with the ordered binding names: the same tree under a
// different slot order is a different function. Bounded LRU, safe for
// concurrent use
package cache

import (
	"container/list"
	"sync"

	"github.com/easyjit/easyjit/codegen"
	"github.com/easyjit/easyjit/expr"
	"golang.org/x/crypto/blake2b"
)

const DefaultCapacity = 256

// Key identifies a (tree, binding) pair
type Key [blake2b.Size256]byte

// KeyOf computes the cache identity of a compilation
func KeyOf(root expr.Expr, vars *expr.Vars) Key {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(expr.Bytes(root))
	for _, name := range vars.Names() {
		h.Write([]byte{byte(len(name))})
		h.Write([]byte(name))
	}
	var ret Key
	copy(ret[:], h.Sum(nil))
	return ret
}

type entry struct {
	key Key
	fun codegen.Callable
}

type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[Key]*list.Element
}

// New creates an LRU cache. capacity <= 0 means DefaultCapacity
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[Key]*list.Element, capacity),
	}
}

// Get returns the cached callable and promotes it to most recently used
func (c *Cache) Get(key Key) (codegen.Callable, bool) {
	c.mu.RLock()
	_, found := c.items[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	c.mu.Lock()
	// re-check, the entry may have been evicted or replaced meanwhile.
	// entry.fun must be read under the lock: Set overwrites it in place
	var fun codegen.Callable
	el, found := c.items[key]
	if found {
		c.ll.MoveToFront(el)
		fun = el.Value.(*entry).fun
	}
	c.mu.Unlock()
	return fun, found
}

// Set inserts or replaces a callable, evicting the least recently used
// entry when over capacity
func (c *Cache) Set(key Key, fun codegen.Callable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, found := c.items[key]; found {
		el.Value.(*entry).fun = fun
		c.ll.MoveToFront(el)
		return
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, fun: fun})
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ll.Len()
}

// GetOrCompile returns the cached callable for (root, vars) or compiles it
// on the given backend and caches the result. Concurrent callers may
// duplicate a compilation, the last one wins, results are equivalent
func (c *Cache) GetOrCompile(root expr.Expr, vars *expr.Vars, b codegen.Backend, opt ...codegen.Option) (codegen.Callable, error) {
	key := KeyOf(root, vars)
	if fun, found := c.Get(key); found {
		return fun, nil
	}
	fun, err := codegen.Compile(root, vars, b, opt...)
	if err != nil {
		return nil, err
	}
	c.Set(key, fun)
	return fun, nil
}
