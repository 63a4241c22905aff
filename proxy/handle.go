// Package proxy implements the client-side stub of spec §3/§4.6: a Handle
// holding a remote object id and a weak back-pointer to its port, offering
// a generic call(method_id, args) used by generated method bodies.
//
// Grounded on transport/api.go's Stream client-side send path (Send/Fin)
// reshaped into a synchronous, blocking call. Handle disposal follows the
// explicit-Close/best-effort-finalizer idiom visible across the teacher
// (the hk package's registered cleanup callbacks; core/lom.go's
// uncache/cleanup pairing): Release is the deterministic path, a
// runtime.SetFinalizer is the best-effort net, matching spec §7's "best
// effort" language for delete delivery.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package proxy

import (
	"context"
	"runtime"
	"weak"

	"github.com/NVIDIA/rto/cmn/atomic"
	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/port"
)

// Handle is the client-side binding of spec §3/§4.6: { object_id, weak
// port }. Holding a Handle is the sole evidence that a remote object is
// still needed; Release (or, best-effort, garbage collection) sends a
// delete request to the exporting port.
type Handle struct {
	objectID core.ObjectID
	wp       weak.Pointer[port.Port]
	released atomic.Bool
}

// NewHandle binds a freshly imported object id to p. Generated
// ImportRemote implementations call this once per imported reference.
func NewHandle(p *port.Port, id core.ObjectID) *Handle {
	h := &Handle{objectID: id, wp: weak.Make(p)}
	runtime.SetFinalizer(h, (*Handle).release)
	return h
}

// ObjectID returns the remote object id this handle names.
func (h *Handle) ObjectID() core.ObjectID { return h.objectID }

func (h *Handle) upgrade() *port.Port {
	p := h.wp.Value()
	if p == nil {
		panic(core.PortGonePanic)
	}
	return p
}

// Call is the generic `call<Serialize S, Deserialize D>` operation of
// spec §4.6: with this handle's port pushed onto the per-goroutine port
// stack, serialize args with format; pop, perform the round trip; then,
// with the port pushed again, deserialize the response into result and
// pop. A nil result skips deserialization (no-return methods); the call
// still waits for the response.
func (h *Handle) Call(ctx context.Context, method core.MethodID, format core.Format, args, result any) error {
	p := h.upgrade()

	port.PushPort(p)
	argBytes, err := format.Marshal(args)
	if err != nil {
		port.PopPort()
		panic(core.SerializationPanic("argument marshal", err))
	}
	port.PopPort()

	payload, err := p.Call(ctx, h.objectID, method, argBytes)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	port.PushPort(p)
	defer port.PopPort()
	if err := format.Unmarshal(payload, result); err != nil {
		panic(core.SerializationPanic("result unmarshal", err))
	}
	return nil
}

// Release deterministically sends the delete request for this handle's
// object, exactly once. Safe to call multiple times and safe to call
// after the port is already gone (a no-op in that case, per spec §4.6).
func (h *Handle) Release() {
	if !h.released.CAS(false, true) {
		return
	}
	if p := h.wp.Value(); p != nil {
		p.DeleteRequest(h.objectID)
	}
	runtime.SetFinalizer(h, nil)
}

// release is the finalizer entry point: best-effort cleanup for a Handle
// the user never explicitly Release()d, matching spec §7's "best effort"
// language for delete delivery.
func (h *Handle) release() { h.Release() }
