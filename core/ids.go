// Package core defines the types and capability interfaces every other
// package in this module is built against: object/method/trait/slot ids,
// the Dispatcher and Format capabilities supplied by generated code and by
// the serialization layer, and the wire identifier of an exported object.
// Grounded on the teacher's own top-level `core` package, which plays the
// same "foundation everyone imports, nobody imports back" role for
// aistore's object metadata.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package core

import "fmt"

// ObjectID identifies one exported object within one port's object table.
// Allocated on export, freed on delete; never reused while a peer proxy
// still references it.
type ObjectID uint64

func (id ObjectID) String() string { return fmt.Sprintf("obj-%d", uint64(id)) }

// MethodID identifies one method within one trait. Assigned by the
// external (out of scope) code generator; stable within a build.
type MethodID uint32

// TraitID identifies one trait. Used only for optional cross-trait
// casting; it never travels inside a per-object call, because the object
// table already selects the dispatcher.
type TraitID uint32

// SlotID identifies one outstanding request awaiting a response on a given
// port. Allocated when the caller enqueues a request, freed when the
// response is matched. Monotonically increasing per port; wraparound is
// not handled (64 bits is ample for any single connection's lifetime).
type SlotID uint64

func (id SlotID) String() string { return fmt.Sprintf("slot-%d", uint64(id)) }

// HandleToExchange is the wire form of an object reference: the only
// thing that crosses the transport to name a peer object. Created by the
// exporting side, interpreted by the importing side.
type HandleToExchange struct {
	ObjectID ObjectID
}
