// Package mux implements the per-port multiplexer of spec §4.4: it
// matches RSP frames to the caller that is waiting on the matching slot
// id, and hands out fresh slot ids to callers as they enqueue requests.
//
// Grounded on transport/api.go's session bookkeeping (a registry of
// in-flight work keyed by a generated id, guarded by a short critical
// section) — there the registry tracks open streams; here it tracks open
// request slots, each completed exactly once.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mux

import (
	"sync"
	"time"

	"github.com/NVIDIA/rto/cmn/atomic"
	"github.com/NVIDIA/rto/cmn/mono"
	"github.com/NVIDIA/rto/core"
)

// Result is what a waiter receives: the RSP payload, or an error if the
// slot was cancelled during teardown.
type Result struct {
	Payload []byte
	Err     error
}

// waiter pairs a slot's one-shot completion channel with the mono.NanoTime
// reading taken when the slot was installed, so the mux can report how
// long its oldest outstanding call has been waiting.
type waiter struct {
	ch          chan Result
	installedAt int64
}

// Mux is the per-port multiplexer state: { next_slot_id, slot -> waiter }.
type Mux struct {
	next    atomic.Uint64
	mu      sync.Mutex
	waiters map[core.SlotID]waiter
}

func New() *Mux {
	return &Mux{waiters: make(map[core.SlotID]waiter)}
}

// InstallWaiter allocates a fresh slot id and registers a one-shot
// completion channel for it, per spec §4.4 step 1. The caller fills the
// slot into its REQ frame and hands the frame to the writer next.
func (m *Mux) InstallWaiter() (core.SlotID, <-chan Result) {
	slot := core.SlotID(m.next.Add(1))
	w := waiter{ch: make(chan Result, 1), installedAt: mono.NanoTime()}
	m.mu.Lock()
	m.waiters[slot] = w
	m.mu.Unlock()
	return slot, w.ch
}

// Resolve is called by the port's reader when an RSP frame for slot
// arrives. It removes the waiter and delivers the payload; a slot with no
// matching waiter is a protocol error (the frame names a stale or unknown
// slot) and is silently dropped — the peer and this side have already
// diverged, and the call site (if any) has long since timed out or moved
// on.
func (m *Mux) Resolve(slot core.SlotID, payload []byte) {
	m.mu.Lock()
	w, ok := m.waiters[slot]
	if ok {
		delete(m.waiters, slot)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	w.ch <- Result{Payload: payload}
}

// Cancel releases a single waiter (used when a Call's context is done
// before a response ever arrives) without touching the rest of the map.
func (m *Mux) Cancel(slot core.SlotID, err error) {
	m.mu.Lock()
	w, ok := m.waiters[slot]
	if ok {
		delete(m.waiters, slot)
	}
	m.mu.Unlock()
	if ok {
		w.ch <- Result{Err: err}
	}
}

// CancelAll releases every outstanding waiter with err, used on context
// teardown (spec §4.4 step 4 / §7 ErrCancelled).
func (m *Mux) CancelAll(err error) {
	m.mu.Lock()
	waiters := m.waiters
	m.waiters = make(map[core.SlotID]waiter)
	m.mu.Unlock()
	for _, w := range waiters {
		w.ch <- Result{Err: err}
	}
}

// Pending reports the number of outstanding slots, for tests and metrics.
func (m *Mux) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// OldestPendingAge reports how long the longest-outstanding call on this
// mux has been waiting for its response, or zero if nothing is pending.
// Backs the port's active-slot-age diagnostic gauge.
func (m *Mux) OldestPendingAge() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest int64
	now := mono.NanoTime()
	for _, w := range m.waiters {
		if age := now - w.installedAt; age > oldest {
			oldest = age
		}
	}
	return time.Duration(oldest)
}
