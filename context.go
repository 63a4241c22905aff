// Package rto is the root package of the runtime: Context assembles a
// transport, a port, and an object exchange engine into the single
// user-facing handle described by spec §6, the way the teacher's top-level
// `ais` package assembles its subsystems (fs, memsys, reb, ...) behind one
// runner type. Most callers only ever import this package and `skeleton`;
// everything else is wiring.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package rto

import (
	"sync"

	"github.com/NVIDIA/rto/cmn/nlog"
	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/exchange"
	"github.com/NVIDIA/rto/port"
	"github.com/NVIDIA/rto/proxy"
	"github.com/NVIDIA/rto/skeleton"
)

// Options configures a Context, the way transport.Extra configures a
// teacher Stream: every field has a workable zero value via defaultOptions.
type Options struct {
	ID            string
	TableCapacity int
	WorkerLimit   int
	OutboxSize    int
	Format        core.Format
}

// Option mutates Options at Context construction time.
type Option func(*Options)

func WithID(id string) Option              { return func(o *Options) { o.ID = id } }
func WithTableCapacity(n int) Option       { return func(o *Options) { o.TableCapacity = n } }
func WithWorkerLimit(n int) Option         { return func(o *Options) { o.WorkerLimit = n } }
func WithOutboxSize(n int) Option          { return func(o *Options) { o.OutboxSize = n } }
func WithFormat(f core.Format) Option      { return func(o *Options) { o.Format = f } }

func defaultOptions() Options {
	return Options{Format: exchange.MsgpackFormat()}
}

// Context is the user-visible object bundling a transport, a port, and its
// worker activities (spec glossary's Context entry). New starts
// the port's reader/writer goroutines immediately.
type Context struct {
	port   *port.Port
	format core.Format

	mu    sync.Mutex
	named map[string]core.HandleToExchange
}

// New wires transport into a running Context. Mirrors spec §6's
// `Context::new(send, recv) -> Context`.
func New(transport core.Transport, opts ...Option) *Context {
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	portOpts := []port.Option{port.WithID(o.ID)}
	if o.TableCapacity > 0 {
		portOpts = append(portOpts, port.WithTableCapacity(o.TableCapacity))
	}
	if o.WorkerLimit > 0 {
		portOpts = append(portOpts, port.WithWorkerLimit(o.WorkerLimit))
	}
	if o.OutboxSize > 0 {
		portOpts = append(portOpts, port.WithOutboxSize(o.OutboxSize))
	}
	p := port.New(transport, portOpts...)
	p.Start()
	nlog.Infof("context[%s]: started", p.ID())
	return &Context{port: p, format: o.Format, named: make(map[string]core.HandleToExchange)}
}

// Format returns the serialization capability this Context was configured
// with (spec §6's "serialization format capability").
func (c *Context) Format() core.Format { return c.format }

// Port exposes the underlying port for lower-level access (building a
// Handle directly, diagnostics).
func (c *Context) Port() *port.Port { return c.port }

// RegisterService registers svc's skeleton and returns its wire handle —
// `context.register_service(skeleton) -> HandleToExchange` in spec §6.
func (c *Context) RegisterService(svc skeleton.Registrar) core.HandleToExchange {
	return c.port.RegisterService(svc.IntoSkeleton().Dispatcher())
}

// RegisterNamedService registers svc and additionally remembers its handle
// under name, for the out-of-band bootstrapping exchange spec §6
// describes (`context.register_service(name, skeleton)`): one side
// registers its initial object and ships the handle to the peer by some
// channel outside this library.
func (c *Context) RegisterNamedService(name string, svc skeleton.Registrar) core.HandleToExchange {
	h := c.RegisterService(svc)
	c.mu.Lock()
	c.named[name] = h
	c.mu.Unlock()
	nlog.Infof("context[%s]: registered %q as %s", c.port.ID(), name, h.ObjectID)
	return h
}

// Lookup returns the handle previously registered under name via
// RegisterNamedService.
func (c *Context) Lookup(name string) (core.HandleToExchange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.named[name]
	return h, ok
}

// ImportHandle binds a peer-supplied wire handle to this Context's port,
// producing the low-level Handle that generated ImportRemote
// implementations build their trait-object proxy around.
func (c *Context) ImportHandle(h core.HandleToExchange) *proxy.Handle {
	return proxy.NewHandle(c.port, h.ObjectID)
}

// Close tears the Context down: stops the port, cancels every pending
// call, and releases the transport (spec §3's Context lifecycle).
func (c *Context) Close() error {
	return c.port.Close()
}

// ExportServiceIntoHandle is spec §6's free function
// `export_service_into_handle(context, service) -> HandleToExchange`.
func ExportServiceIntoHandle(c *Context, svc skeleton.Registrar) core.HandleToExchange {
	return c.RegisterService(svc)
}

// ImportServiceFromHandle is spec §6's free function
// `import_service_from_handle<T, P>(context, handle) -> P`. importer is
// the generated ImportRemote for T.
func ImportServiceFromHandle[T any](c *Context, h core.HandleToExchange, importer exchange.Importer[T]) T {
	return importer(c.ImportHandle(h), c.format)
}
