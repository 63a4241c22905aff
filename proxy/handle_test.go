package proxy_test

import (
	"sync"
	"testing"
	"time"

	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/port"
	"github.com/NVIDIA/rto/proxy"
	"github.com/NVIDIA/rto/transport"
	"github.com/NVIDIA/rto/wire"
)

// delCountingTransport wraps a *transport.Pipe and counts outgoing DEL
// frames, so a test can assert "at most one DEL" (spec §8's property for
// dropping a proxy) without reaching into port/mux internals.
type delCountingTransport struct {
	*transport.Pipe
	mu   sync.Mutex
	dels int
}

func (d *delCountingTransport) Send(b []byte) error {
	if f, err := wire.Decode(b); err == nil && f.Tag == wire.TagDel {
		d.mu.Lock()
		d.dels++
		d.mu.Unlock()
	}
	return d.Pipe.Send(b)
}

func (d *delCountingTransport) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dels
}

type pingDispatcher struct{}

func (pingDispatcher) Dispatch(_ core.MethodID, _ []byte) ([]byte, error) { return []byte("pong"), nil }
func (pingDispatcher) TraitID() core.TraitID                              { return 1 }

func newConnectedPorts(t *testing.T) (a *port.Port, b *port.Port, bTransport *delCountingTransport) {
	t.Helper()
	ta, tb := transport.NewPipe(32)
	bCounting := &delCountingTransport{Pipe: tb}
	a = port.New(ta, port.WithID("A"))
	b = port.New(bCounting, port.WithID("B"))
	a.Start()
	b.Start()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b, bCounting
}

// TestReleaseSendsDeleteAndFreesSlot is spec §8 scenario 4 exercised at
// the proxy layer: Releasing a Handle sends the DEL that frees the
// exporting port's table slot for the object it names.
func TestReleaseSendsDeleteAndFreesSlot(t *testing.T) {
	a, b, bTransport := newConnectedPorts(t)

	wireHandle := a.RegisterService(pingDispatcher{})
	if a.Table().Len() != 1 {
		t.Fatalf("A's table len = %d, want 1 before release", a.Table().Len())
	}

	h := proxy.NewHandle(b, wireHandle.ObjectID)
	h.Release()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if a.Table().Len() == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if a.Table().Len() != 0 {
		t.Fatalf("A's table len = %d after release, want 0", a.Table().Len())
	}
	if got := bTransport.count(); got != 1 {
		t.Fatalf("DEL frames sent = %d, want exactly 1", got)
	}
}

// TestReleaseIsIdempotent is spec §8's "dropping a proxy always yields at
// most one DEL" property: calling Release three times (explicit calls plus
// whatever the finalizer would also attempt) must only ever emit one DEL,
// guarded by Handle's released.CAS.
func TestReleaseIsIdempotent(t *testing.T) {
	a, b, bTransport := newConnectedPorts(t)

	wireHandle := a.RegisterService(pingDispatcher{})
	h := proxy.NewHandle(b, wireHandle.ObjectID)

	h.Release()
	h.Release()
	h.Release()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if a.Table().Len() == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got := bTransport.count(); got != 1 {
		t.Fatalf("DEL frames sent across 3 Release() calls = %d, want exactly 1", got)
	}
}

// TestReleaseAfterPortGoneIsNoop covers Release's documented no-op path
// once the handle's port has already torn down (spec §4.6): DeleteRequest
// on a dead port is a no-op, so Release must not panic or block even
// though the weak pointer still upgrades to the (now-dead) port.
func TestReleaseAfterPortGoneIsNoop(t *testing.T) {
	a, b, _ := newConnectedPorts(t)

	wireHandle := a.RegisterService(pingDispatcher{})
	h := proxy.NewHandle(b, wireHandle.ObjectID)

	b.Close()
	time.Sleep(10 * time.Millisecond)

	h.Release()
	h.Release()
}
