// Package skeleton provides the server-side binding described in spec
// §3/§4.5: shared ownership of a Dispatcher, with helper constructors the
// generator's IntoSkeleton conversion can target.
//
// Grounded on xact/xreg/xreg.go's Renewable interface: a thin seam that
// lets external, generated code plug a concrete implementation into the
// core without the core ever naming the concrete type.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package skeleton

import "github.com/NVIDIA/rto/core"

// Registrar is implemented by generated wrapper types that know how to
// turn a user's trait implementation into a Skeleton (the generator's
// IntoSkeleton<T> conversion, spec §6 item 2).
type Registrar interface {
	IntoSkeleton() Skeleton
}

// Skeleton is shared ownership of a Dispatcher. Cloning a Skeleton shares
// the underlying object; registering one with a Port allocates an
// ObjectID and "consumes" the share in the sense that a peer can now
// reach it, though the Go value itself remains valid to clone again.
//
// The spec's manual refcounting is unnecessary in Go: a Skeleton holds a
// core.Dispatcher interface value, which is itself normally a pointer, so
// the garbage collector already keeps the underlying object alive for as
// long as any Skeleton (or the object table's copy of it) references it.
type Skeleton struct {
	d core.Dispatcher
}

// Wrap produces a Skeleton around an already-constructed Dispatcher. Most
// generated IntoSkeleton implementations bottom out here.
func Wrap(d core.Dispatcher) Skeleton {
	return Skeleton{d: d}
}

// Clone returns a Skeleton sharing the same underlying dispatcher —
// register the clone with a second Port to export one object into two
// connections at once.
func (s Skeleton) Clone() Skeleton { return s }

// Dispatcher returns the wrapped dispatcher, for the Port to register.
func (s Skeleton) Dispatcher() core.Dispatcher { return s.d }

// IsZero reports whether this Skeleton was never assigned a dispatcher —
// a dropped-unused Skeleton, in spec terms.
func (s Skeleton) IsZero() bool { return s.d == nil }
