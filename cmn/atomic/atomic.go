// Package atomic provides thin, typed wrappers over sync/atomic so call
// sites read as `counter.Load()` / `counter.Add(1)` rather than repeating
// the target type at every call.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package atomic

import "sync/atomic"

type (
	Int64 struct{ v int64 }
	Int32 struct{ v int32 }
	Uint32 struct{ v uint32 }
	Uint64 struct{ v uint64 }
	Bool   struct{ v int32 }
)

func (i *Int64) Load() int64        { return atomic.LoadInt64(&i.v) }
func (i *Int64) Store(v int64)      { atomic.StoreInt64(&i.v, v) }
func (i *Int64) Add(d int64) int64  { return atomic.AddInt64(&i.v, d) }
func (i *Int64) CAS(old, nw int64) bool {
	return atomic.CompareAndSwapInt64(&i.v, old, nw)
}

func (i *Int32) Load() int32       { return atomic.LoadInt32(&i.v) }
func (i *Int32) Store(v int32)     { atomic.StoreInt32(&i.v, v) }
func (i *Int32) Add(d int32) int32 { return atomic.AddInt32(&i.v, d) }

func (u *Uint32) Load() uint32       { return atomic.LoadUint32(&u.v) }
func (u *Uint32) Store(v uint32)     { atomic.StoreUint32(&u.v, v) }
func (u *Uint32) Add(d uint32) uint32 { return atomic.AddUint32(&u.v, d) }

func (u *Uint64) Load() uint64        { return atomic.LoadUint64(&u.v) }
func (u *Uint64) Store(v uint64)      { atomic.StoreUint64(&u.v, v) }
func (u *Uint64) Add(d uint64) uint64 { return atomic.AddUint64(&u.v, d) }
func (u *Uint64) CAS(old, nw uint64) bool {
	return atomic.CompareAndSwapUint64(&u.v, old, nw)
}

func (b *Bool) Load() bool { return atomic.LoadInt32(&b.v) != 0 }
func (b *Bool) Store(v bool) {
	if v {
		atomic.StoreInt32(&b.v, 1)
	} else {
		atomic.StoreInt32(&b.v, 0)
	}
}

// CAS stores nw if the current value is old; returns whether it did.
// CAS(false, true) therefore succeeds for exactly one caller.
func (b *Bool) CAS(old, nw bool) bool {
	var o, n int32
	if old {
		o = 1
	}
	if nw {
		n = 1
	}
	return atomic.CompareAndSwapInt32(&b.v, o, n)
}
