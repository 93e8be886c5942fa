package fsm

import "sync"

// Context is an optional key/value store for machines whose hooks are bound
// by name (for example, machines built from chart files) and therefore cannot
// share data through closure capture. Pass it as the caller context to New;
// the machine itself never reads or writes it.
//
// Unlike the machine, Context is safe for concurrent use, so hooks may share
// it with code outside the tick loop.
type Context struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{data: make(map[string]any)}
}

// Get retrieves a value by key. Returns nil if the key does not exist.
func (c *Context) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

// GetInt retrieves an int value by key. Returns 0 if the key does not exist
// or holds a non-int value.
func (c *Context) GetInt(key string) int {
	v, _ := c.Get(key).(int)
	return v
}

// Set stores a value by key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Delete removes a key from the context.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Snapshot returns a defensive copy of all data; modifications to the
// returned map do not affect the context.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}
