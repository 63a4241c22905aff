// Package port implements the per-direction object exchange and call pump
// of spec §4.3: it owns one object table and one multiplexer, runs a
// reader and a writer goroutine for the connection's lifetime, and fans
// incoming requests out to a bounded worker pool so that a request
// handler which calls back into this (or the opposite) port cannot
// deadlock the single reader goroutine.
//
// Grounded on transport/api.go's Stream: the send-queue/completion-queue
// (workCh/cmplCh) pair and their dedicated sendLoop/cmplLoop goroutines
// are the direct ancestor of the outCh + reader/writer loops here. The
// bounded worker pool is golang.org/x/sync/errgroup with SetLimit, the
// teacher's own dependency for bounded concurrent fan-out.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package port

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/rto/cmn/atomic"
	"github.com/NVIDIA/rto/cmn/cos"
	"github.com/NVIDIA/rto/cmn/debug"
	"github.com/NVIDIA/rto/cmn/nlog"
	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/mux"
	"github.com/NVIDIA/rto/otable"
	"github.com/NVIDIA/rto/wire"
)

const (
	dfltTableCapacity = 4096
	dfltWorkerLimit    = 64
	dfltOutboxSize     = 256
)

// Option configures a Port at construction time, the way transport.Extra
// configures a Stream.
type Option func(*Port)

func WithID(id string) Option        { return func(p *Port) { p.id = id } }
func WithTableCapacity(n int) Option { return func(p *Port) { p.tableCap = n } }
func WithWorkerLimit(n int) Option   { return func(p *Port) { p.workerLimit = n } }
func WithOutboxSize(n int) Option    { return func(p *Port) { p.outboxSize = n } }

// Port is the runtime engine of spec §3/§4.3.
type Port struct {
	id          string
	transport   core.Transport
	table       *otable.Table
	mux         *mux.Mux
	metrics     *metrics
	tableCap    int
	workerLimit int
	outboxSize  int

	outCh chan []byte

	dead   atomic.Bool
	wg     sync.WaitGroup
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Port bound to transport. Call Start to begin running
// its reader/writer loops.
func New(transport core.Transport, opts ...Option) *Port {
	p := &Port{
		transport:   transport,
		tableCap:    dfltTableCapacity,
		workerLimit: dfltWorkerLimit,
		outboxSize:  dfltOutboxSize,
	}
	for _, o := range opts {
		o(p)
	}
	if p.id == "" {
		p.id = cos.GenShortID()
	}
	p.table = otable.New(p.tableCap)
	p.mux = mux.New()
	p.outCh = make(chan []byte, p.outboxSize)
	p.metrics = newMetrics(p.id, p.mux.Pending, p.mux.OldestPendingAge)

	parent, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(parent)
	g.SetLimit(p.workerLimit)
	p.group, p.ctx, p.cancel = g, gctx, cancel
	return p
}

// ID returns the port's short diagnostic identifier.
func (p *Port) ID() string { return p.id }

// Table exposes the object table for introspection (tests, diagnostics).
func (p *Port) Table() *otable.Table { return p.table }

// Dead reports whether the port has torn down (transport closed, or Close
// called).
func (p *Port) Dead() bool { return p.dead.Load() }

// Start launches the reader and writer goroutines. Safe to call once.
func (p *Port) Start() {
	p.wg.Add(2)
	go p.readLoop()
	go p.writeLoop()
}

// RegisterService inserts d into the object table and returns its wire
// identifier (spec §4.3's register_service). Table exhaustion is fatal
// (spec §4.2's "if full, fails fatally").
func (p *Port) RegisterService(d core.Dispatcher) core.HandleToExchange {
	id, err := p.table.Create(d)
	if err != nil {
		panic(err)
	}
	p.metrics.objectsExported.Inc()
	return core.HandleToExchange{ObjectID: id}
}

// Call issues a REQ for (obj, method, arg), blocks until the matching RSP
// arrives (or ctx is done), and returns the response payload. This is the
// procedure spec §4.3 describes as `call(packet_view) -> response_packet`.
func (p *Port) Call(ctx context.Context, obj core.ObjectID, method core.MethodID, arg []byte) ([]byte, error) {
	if p.Dead() {
		return nil, core.ErrTransportClosed
	}
	slot, ch := p.mux.InstallWaiter()
	frame := wire.EncodeRequest(slot, obj, method, arg)
	if err := p.enqueue(frame); err != nil {
		p.mux.Cancel(slot, err)
		return nil, err
	}
	p.metrics.callsSent.Inc()

	select {
	case res := <-ch:
		return res.Payload, res.Err
	case <-ctx.Done():
		p.mux.Cancel(slot, ctx.Err())
		return nil, ctx.Err()
	}
}

// DeleteRequest enqueues a DEL frame for obj (spec §4.3's
// delete_request). A no-op once the port is dead: the peer's table is
// already collapsing along with everything else.
func (p *Port) DeleteRequest(obj core.ObjectID) {
	if p.Dead() {
		return
	}
	_ = p.enqueue(wire.EncodeDelete(obj))
}

// Close tears the port down: stops accepting new work, releases every
// pending waiter with ErrCancelled, closes the transport, and waits for
// the reader/writer goroutines and any in-flight request handlers to
// finish (best effort, per spec §7).
func (p *Port) Close() error {
	p.teardown(core.ErrTransportClosed)
	p.wg.Wait()
	_ = p.group.Wait()
	return nil
}

func (p *Port) enqueue(b []byte) error {
	select {
	case p.outCh <- b:
		return nil
	case <-p.ctx.Done():
		return core.ErrTransportClosed
	}
}

func (p *Port) readLoop() {
	defer p.wg.Done()
	for {
		buf, err := p.transport.Recv()
		if err != nil {
			p.teardown(core.ErrTransportClosed)
			return
		}
		frame, err := wire.Decode(buf)
		if err != nil {
			nlog.Errorf("port[%s]: %v", p.id, err)
			p.teardown(err)
			return
		}
		switch frame.Tag {
		case wire.TagReq:
			f := frame
			p.group.Go(func() error {
				p.handleRequest(f)
				return nil
			})
		case wire.TagRsp:
			p.mux.Resolve(frame.Slot, frame.Payload)
		case wire.TagDel:
			if err := p.table.Remove(frame.Object); err != nil {
				nlog.Errorf("port[%s]: delete %s: %v", p.id, frame.Object, err)
				p.teardown(err)
				return
			}
		default:
			debug.Assert(false, "unreachable: wire.Decode only returns known tags")
		}
	}
}

// handleRequest looks up the target dispatcher, releasing the table's
// read lock before invoking it (spec §4.2's deadlock-avoidance
// discipline: the dispatcher may itself export new objects, which needs
// the table's write lock).
func (p *Port) handleRequest(f wire.Frame) {
	d, err := p.table.Get(f.Object)
	if err != nil {
		nlog.Errorf("port[%s]: %v", p.id, err)
		p.teardown(err)
		return
	}

	// The dispatcher's own argument-unmarshal/result-marshal may touch
	// exchange wrappers (ServiceToExport/ServiceToImport/ServiceRef),
	// which need "the port this call arrived on" reachable without an
	// explicit parameter (spec §4.7) — this connection's own Port, since
	// object exchange is bidirectional over the one connection.
	PushPort(p)
	result, err := d.Dispatch(f.Method, f.Payload)
	PopPort()
	if err != nil {
		// By contract (core.Dispatcher), Dispatch only returns a Go error
		// for an unrecognized method id — a peer bug, fatal to the
		// connection. Ordinary application errors travel inside result.
		nlog.Errorf("port[%s]: %v", p.id, err)
		p.teardown(err)
		return
	}
	p.metrics.requestsHandled.Inc()
	_ = p.enqueue(wire.EncodeResponse(f.Slot, result))
}

func (p *Port) writeLoop() {
	defer p.wg.Done()
	for {
		select {
		case b := <-p.outCh:
			if err := p.transport.Send(b); err != nil {
				p.teardown(core.ErrTransportClosed)
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Port) teardown(cause error) {
	if !p.dead.CAS(false, true) {
		return
	}
	nlog.Warningf("port[%s]: tearing down: %v", p.id, cause)
	p.cancel()
	p.mux.CancelAll(core.ErrCancelled)
	_ = p.transport.Close()
}
