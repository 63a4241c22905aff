// Package otable implements the per-port object table: a dense,
// size-bounded registry mapping core.ObjectID to the owned core.Dispatcher
// for that object, with a free list for id reuse.
//
// Grounded on xact/xreg/xreg.go's registry type: a dense slice of entries
// guarded by a sync.RWMutex, with the same "readers look up, a single
// writer creates/removes" discipline. The one rule the teacher's registry
// doesn't need and this one must enforce verbatim from spec §4.2 is:
// the read lock is released before the dispatcher executes, because the
// dispatcher may, through its arguments, export new objects that need the
// write lock on this very table.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package otable

import (
	"sync"

	"github.com/NVIDIA/rto/cmn/debug"
	"github.com/NVIDIA/rto/core"
)

// Table is the object table described in spec §3/§4.2.
type Table struct {
	mu      sync.RWMutex
	entries []core.Dispatcher // nil entry == free slot
	free    []core.ObjectID
	cap     int
}

// New constructs a Table bounded at capacity entries. capacity <= 0 means
// unbounded (grows on demand) — only appropriate for trusted, embedded use;
// production contexts should set an explicit bound.
func New(capacity int) *Table {
	initial := capacity
	if initial <= 0 || initial > 256 {
		initial = 256
	}
	return &Table{
		entries: make([]core.Dispatcher, 0, initial),
		cap:     capacity,
	}
}

// Create allocates an ObjectID for d, reusing a freed slot when one is
// available. Returns core.ErrTableFull once the table is at capacity.
func (t *Table) Create(d core.Dispatcher) (core.ObjectID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.entries[id] = d
		return id, nil
	}
	if t.cap > 0 && len(t.entries) >= t.cap {
		return 0, core.WrapFatal(core.ErrTableFull, "capacity %d", t.cap)
	}
	id := core.ObjectID(len(t.entries))
	t.entries = append(t.entries, d)
	return id, nil
}

// Get returns the dispatcher registered for id. The caller must not hold
// any lock implied by this call while invoking the returned dispatcher:
// Get only read-locks long enough to copy the interface value (a cheap,
// GC-safe "clone of shared ownership"), then releases before returning.
func (t *Table) Get(id core.ObjectID) (core.Dispatcher, error) {
	t.mu.RLock()
	d, err := t.getLocked(id)
	t.mu.RUnlock()
	return d, err
}

func (t *Table) getLocked(id core.ObjectID) (core.Dispatcher, error) {
	if int(id) >= len(t.entries) || t.entries[id] == nil {
		return nil, core.WrapFatal(core.ErrUnknownObjectID, "%s", id)
	}
	return t.entries[id], nil
}

// Remove frees id's slot. Removing an already-free or out-of-range id is a
// protocol error, per spec §4.2 ("idempotent on already-free slots is not
// required").
func (t *Table) Remove(id core.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.getLocked(id); err != nil {
		return err
	}
	t.entries[id] = nil
	t.free = append(t.free, id)
	return nil
}

// Len reports the number of live entries, for tests and diagnostics.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	debug.Assert(len(t.free) <= len(t.entries))
	return len(t.entries) - len(t.free)
}
