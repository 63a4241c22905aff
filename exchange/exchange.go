// Package exchange implements the "export/import a service as a call
// argument or return value" wrappers of spec §4.7/§9: ServiceToExport,
// ServiceToImport, and the ServiceRef tagged union that lets one generated
// field type serve as both.
//
// Grounded on the teacher's github.com/tinylib/msgp and
// github.com/json-iterator/go dependencies: these wrappers implement the
// exact method sets those two libraries already know how to call into
// (MarshalMsg/UnmarshalMsg, MarshalJSON/UnmarshalJSON), so the side-effectful
// registration spec §9 describes ("serializing a ServiceToExport registers
// it with the port doing the serializing") happens for free, underneath
// whichever core.Format the Context is configured with.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package exchange

import (
	"sync"
	"weak"

	"github.com/pkg/errors"

	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/port"
	"github.com/NVIDIA/rto/proxy"
	"github.com/NVIDIA/rto/skeleton"
)

// Importer is the generator-contract function (spec §6 item 3) that turns a
// freshly imported Handle into a usable trait value — what the out-of-scope
// code generator's `ImportRemote` would emit for a given trait.
type Importer[T any] func(h *proxy.Handle, format core.Format) T

var (
	errExportNoPort = errors.New("exchange: ServiceToExport (de)serialized with no port on the calling goroutine's stack")
	errImportNoPort = errors.New("exchange: ServiceToImport (de)serialized with no port on the calling goroutine's stack")
	errReexport     = errors.New("exchange: cannot re-export an imported ServiceRef; call IntoRemote on it first")
)

// ServiceToExport wraps a value the local side owns and wants to hand to a
// peer as a call argument or return value. Registration with the port
// currently on top of the goroutine's port stack (port.TopPort) happens
// lazily, the first time the wrapper is actually serialized — not at
// construction — exactly once, regardless of which Format does it.
type ServiceToExport[T skeleton.Registrar] struct {
	svc    T
	once   sync.Once
	handle core.HandleToExchange
	err    error
}

// NewServiceToExport wraps svc for export. svc is not touched until the
// wrapper is actually serialized.
func NewServiceToExport[T skeleton.Registrar](svc T) *ServiceToExport[T] {
	return &ServiceToExport[T]{svc: svc}
}

func (e *ServiceToExport[T]) register() {
	e.once.Do(func() {
		p, ok := port.TopPort()
		if !ok {
			e.err = errExportNoPort
			return
		}
		e.handle = p.RegisterService(e.svc.IntoSkeleton().Dispatcher())
	})
}

// MarshalMsg implements the tinylib/msgp runtime's Marshaler interface.
func (e *ServiceToExport[T]) MarshalMsg(b []byte) ([]byte, error) {
	e.register()
	if e.err != nil {
		return nil, e.err
	}
	return msgpAppendHandle(b, e.handle), nil
}

// MarshalJSON implements encoding/json's Marshaler interface, honored by
// json-iterator/go the same way it honors the standard library's.
func (e *ServiceToExport[T]) MarshalJSON() ([]byte, error) {
	e.register()
	if e.err != nil {
		return nil, e.err
	}
	return jsonMarshal(e.handle)
}

// ServiceToImport wraps a reference received from a peer. It captures the
// port it arrived on (weakly, like proxy.Handle) so that a later IntoRemote
// can build a usable proxy without the caller having to thread the port
// through by hand.
type ServiceToImport[T any] struct {
	handle core.HandleToExchange
	wp     weak.Pointer[port.Port]
}

// UnmarshalMsg implements the tinylib/msgp runtime's Unmarshaler interface.
func (i *ServiceToImport[T]) UnmarshalMsg(bts []byte) ([]byte, error) {
	p, ok := port.TopPort()
	if !ok {
		return nil, errImportNoPort
	}
	h, rest, err := msgpReadHandle(bts)
	if err != nil {
		return nil, err
	}
	i.handle = h
	i.wp = weak.Make(p)
	return rest, nil
}

// UnmarshalJSON implements encoding/json's Unmarshaler interface.
func (i *ServiceToImport[T]) UnmarshalJSON(b []byte) error {
	p, ok := port.TopPort()
	if !ok {
		return errImportNoPort
	}
	h, err := jsonUnmarshalHandle(b)
	if err != nil {
		return err
	}
	i.handle = h
	i.wp = weak.Make(p)
	return nil
}

// IntoRemote builds a usable proxy from the imported reference via
// importer, the generated ImportRemote for T. Panics with
// core.PortGonePanic if the port this reference arrived on no longer
// exists — the same failure mode as calling through a Handle after its
// Context was dropped.
func (i *ServiceToImport[T]) IntoRemote(format core.Format, importer Importer[T]) T {
	p := i.wp.Value()
	if p == nil {
		panic(core.PortGonePanic)
	}
	return importer(proxy.NewHandle(p, i.handle.ObjectID), format)
}

type refTag uint8

const (
	refExport refTag = iota
	refImport
)

// ServiceRef is the tagged union of spec §9's "ServiceRef" shape: a single
// field type that exports when constructed locally and imports when
// deserialized off the wire, so generated code doesn't need two distinct
// argument types for the two directions a trait reference can travel.
//
// Serializing an Import-variant ServiceRef is a programming error (spec
// §8 scenario 6): a reference received from a peer must be turned back
// into a local handle with IntoRemote before it can be handed to anyone
// else, including passed straight back over the wire.
type ServiceRef[T skeleton.Registrar] struct {
	tag    refTag
	export *ServiceToExport[T]
	imp    *ServiceToImport[T]
}

// NewServiceRef wraps svc as the Export variant of a ServiceRef.
func NewServiceRef[T skeleton.Registrar](svc T) ServiceRef[T] {
	return ServiceRef[T]{tag: refExport, export: NewServiceToExport[T](svc)}
}

// MarshalMsg implements the tinylib/msgp runtime's Marshaler interface.
func (r ServiceRef[T]) MarshalMsg(b []byte) ([]byte, error) {
	if r.tag != refExport {
		return nil, errReexport
	}
	return r.export.MarshalMsg(b)
}

// MarshalJSON implements encoding/json's Marshaler interface.
func (r ServiceRef[T]) MarshalJSON() ([]byte, error) {
	if r.tag != refExport {
		return nil, errReexport
	}
	return r.export.MarshalJSON()
}

// UnmarshalMsg implements the tinylib/msgp runtime's Unmarshaler interface.
// Deserialization always yields the Import variant.
func (r *ServiceRef[T]) UnmarshalMsg(bts []byte) ([]byte, error) {
	r.tag = refImport
	r.imp = &ServiceToImport[T]{}
	return r.imp.UnmarshalMsg(bts)
}

// UnmarshalJSON implements encoding/json's Unmarshaler interface.
func (r *ServiceRef[T]) UnmarshalJSON(b []byte) error {
	r.tag = refImport
	r.imp = &ServiceToImport[T]{}
	return r.imp.UnmarshalJSON(b)
}

// IsImport reports whether this ServiceRef holds a reference received from
// a peer (as opposed to a value exported locally).
func (r ServiceRef[T]) IsImport() bool { return r.tag == refImport }

// IntoRemote turns an Import-variant ServiceRef into a usable proxy. Panics
// if called on an Export variant — there is nothing remote to build yet.
func (r ServiceRef[T]) IntoRemote(format core.Format, importer Importer[T]) T {
	if r.tag != refImport {
		panic("exchange: IntoRemote called on an export-variant ServiceRef")
	}
	return r.imp.IntoRemote(format, importer)
}
