// Package singleflight coalesces concurrent calls that share a key into a
// single execution whose outcome every caller receives.
package singleflight

import (
	"context"
	"sync"
)

// call represents an active or completed execution.
type call struct {
	done chan struct{}
	val  interface{}
	err  error
}

// Group manages a set of in-flight calls keyed by string.
type Group struct {
	mu sync.Mutex
	m  map[string]*call
}

// New creates an empty Group.
func New() *Group {
	return &Group{m: make(map[string]*call)}
}

// Do executes fn, making sure only one execution is in flight for key at a
// time. Duplicate callers wait for the owner and receive the same value
// and error; shared reports whether the result came from another caller's
// execution. A waiting caller whose ctx is cancelled detaches and returns
// the ctx error without affecting the owner.
func (g *Group) Do(ctx context.Context, key string, fn func() (interface{}, error)) (val interface{}, err error, shared bool) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			return nil, ctx.Err(), false
		}
	}

	c := &call{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err, false
}

// Forget drops the in-flight record for key, letting the next caller
// execute instead of waiting.
func (g *Group) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
