// Package rr rotates over a list that can be replaced while in use.
package rr

import (
	"sync/atomic"
)

type Ring struct {
	items atomic.Pointer[[]string]
	pos   atomic.Uint64
}

func New(items []string) *Ring {
	r := &Ring{}
	r.Swap(items)
	return r
}

// Next returns the following item, false if the list is empty
func (r *Ring) Next() (string, bool) {
	items := r.load()
	if len(items) == 0 {
		return "", false
	}

	n := r.pos.Add(1) - 1
	return items[n%uint64(len(items))], true
}

func (r *Ring) Len() int {
	return len(r.load())
}

// Swap replaces the list. rotation restarts from the first item
func (r *Ring) Swap(items []string) {
	cp := make([]string, len(items))
	copy(cp, items)

	r.items.Store(&cp)
	r.pos.Store(0)
}

// List returns a copy of the current list
func (r *Ring) List() []string {
	items := r.load()
	cp := make([]string, len(items))
	copy(cp, items)
	return cp
}

func (r *Ring) load() []string {
	p := r.items.Load()
	if p == nil {
		return nil
	}
	return *p
}
