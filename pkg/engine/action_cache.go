package engine

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// actionCache is a thread-safe LRU cache of compiled expr-lang programs,
// keyed by the raw expression string from an ACTION node's
// `configuration.action`. Compiling is the expensive part of evaluating
// an expression; a workflow's ACTION nodes are visited repeatedly across
// many executions, so caching the compiled form pays for itself quickly.
type actionCache struct {
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.RWMutex
}

type actionCacheEntry struct {
	key     string
	program *vm.Program
}

func newActionCache(capacity int) *actionCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &actionCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *actionCache) get(expression string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[expression]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*actionCacheEntry).program, true
	}
	return nil, false
}

func (c *actionCache) put(expression string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[expression]; ok {
		c.lru.MoveToFront(el)
		el.Value.(*actionCacheEntry).program = program
		return
	}
	el := c.lru.PushFront(&actionCacheEntry{key: expression, program: program})
	c.entries[expression] = el
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*actionCacheEntry).key)
		}
	}
}

// compileAndCache compiles expression against env's shape, returning the
// cached program on a repeat call with the same expression string.
func (c *actionCache) compileAndCache(expression string, env interface{}) (*vm.Program, error) {
	if program, ok := c.get(expression); ok {
		return program, nil
	}
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("failed to compile action expression: %w", err)
	}
	c.put(expression, program)
	return program, nil
}
