// Command rtoecho is a minimal, runnable demonstration of the Context API
// (spec §6): it wires two in-memory Contexts together, exports a Ping
// service on one side, imports and calls it from the other, and prints the
// round trip. Grounded on the teacher's cmd/ convention of small, focused
// entry points around a shared core package.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/NVIDIA/rto"
	"github.com/NVIDIA/rto/cmn/nlog"
	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/exchange"
	"github.com/NVIDIA/rto/proxy"
	"github.com/NVIDIA/rto/skeleton"
	"github.com/NVIDIA/rto/transport"
)

// Ping is a one-method trait; pingSkeleton/pingDispatcher/importPing are
// the hand-written stand-in for generated code, the same shape every
// trait fixture in this module's test suites uses.
type Ping interface {
	Ping(ctx context.Context) (string, error)
}

type pingImpl struct{}

func (pingImpl) Ping(context.Context) (string, error) { return "pong", nil }

type pingSkeleton struct{ impl Ping }

func (s pingSkeleton) IntoSkeleton() skeleton.Skeleton {
	return skeleton.Wrap(pingDispatcher{impl: s.impl, format: exchange.MsgpackFormat()})
}

type pingDispatcher struct {
	impl   Ping
	format core.Format
}

func (pingDispatcher) TraitID() core.TraitID { return core.HashTraitID("Ping") }

func (d pingDispatcher) Dispatch(_ core.MethodID, _ []byte) ([]byte, error) {
	s, err := d.impl.Ping(context.Background())
	if err != nil {
		return nil, err
	}
	out, err := d.format.Marshal(s)
	if err != nil {
		panic(core.SerializationPanic("result marshal", err))
	}
	return out, nil
}

type pingProxy struct {
	h      *proxy.Handle
	format core.Format
}

func (p *pingProxy) Ping(ctx context.Context) (string, error) {
	var out string
	if err := p.h.Call(ctx, 0, p.format, nil, &out); err != nil {
		return "", err
	}
	return out, nil
}

func importPing(h *proxy.Handle, format core.Format) Ping {
	return &pingProxy{h: h, format: format}
}

func main() {
	ta, tb := transport.NewPipe(16)
	server := rto.New(ta, rto.WithID("server"))
	client := rto.New(tb, rto.WithID("client"))
	defer server.Close()
	defer client.Close()

	handle := server.RegisterNamedService("ping", pingSkeleton{impl: pingImpl{}})

	remote := rto.ImportServiceFromHandle(client, handle, importPing)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	reply, err := remote.Ping(ctx)
	if err != nil {
		nlog.Errorf("ping: %v", err)
		return
	}
	fmt.Println(reply)
}
