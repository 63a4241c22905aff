//go:build debug

// Package debug provides assertions that compile to no-ops in production
// builds and panic in builds tagged `debug`.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"
	"log"
	"sync"
)

func ON() bool { return true }

func Infof(format string, a ...any) { log.Printf("[debug] "+format, a...) }

func Func(f func()) { f() }

func Assert(cond bool, args ...any) {
	if cond {
		return
	}
	if len(args) > 0 {
		panic(fmt.Sprintln(append([]any{"assertion failed:"}, args...)...))
	}
	panic("assertion failed")
}

func AssertFunc(f func() bool, args ...any) { Assert(f(), args...) }

func AssertNoErr(err error) {
	if err != nil {
		panic("assertion failed: " + err.Error())
	}
}

func Assertf(cond bool, format string, a ...any) {
	if !cond {
		panic("assertion failed: " + fmt.Sprintf(format, a...))
	}
}

// AssertMutexLocked and friends are best-effort: sync.Mutex does not expose
// lock state, so these only catch the trivially-unlocked case via TryLock.
func AssertMutexLocked(m *sync.Mutex) {
	if m.TryLock() {
		m.Unlock()
		panic("assertion failed: mutex not locked")
	}
}

func AssertRWMutexLocked(m *sync.RWMutex) {
	if m.TryLock() {
		m.Unlock()
		panic("assertion failed: rwmutex not locked")
	}
}

func AssertRWMutexRLocked(m *sync.RWMutex) {
	if m.TryLock() {
		m.Unlock()
		panic("assertion failed: rwmutex not r-locked")
	}
}
