// Package transport provides a small in-memory, message-oriented
// reference implementation of core.Transport, used by this module's own
// tests and examples. It is deliberately not a production transport (no
// pipes, sockets, or shared memory framing) — spec §1 explicitly leaves
// the real byte transport out of the core's scope.
//
// Grounded on kryptco-kr's transport_mock_pair.go: a pair of mock
// transports wired directly to each other for tests, rather than going
// through a real network stack.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"io"
	"sync"
)

// Pipe is one endpoint of an in-memory, bidirectional, message-oriented
// connection. Closing either endpoint of a pair unblocks both.
type Pipe struct {
	out    chan<- []byte
	in     <-chan []byte
	closed <-chan struct{}
	doOnce func()
}

// NewPipe returns two endpoints wired to each other: whatever a sends, b
// receives, and vice versa. bufSize bounds how many frames may be in
// flight before Send blocks.
func NewPipe(bufSize int) (a, b *Pipe) {
	ab := make(chan []byte, bufSize)
	ba := make(chan []byte, bufSize)
	closed := make(chan struct{})
	var once sync.Once
	doOnce := func() { once.Do(func() { close(closed) }) }

	a = &Pipe{out: ab, in: ba, closed: closed, doOnce: doOnce}
	b = &Pipe{out: ba, in: ab, closed: closed, doOnce: doOnce}
	return a, b
}

func (p *Pipe) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	select {
	case p.out <- cp:
		return nil
	case <-p.closed:
		return io.ErrClosedPipe
	}
}

func (p *Pipe) Recv() ([]byte, error) {
	select {
	case b := <-p.in:
		return b, nil
	case <-p.closed:
		return nil, io.EOF
	}
}

func (p *Pipe) Close() error {
	p.doOnce()
	return nil
}
