package port_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/port"
	"github.com/NVIDIA/rto/transport"
)

// pingDispatcher is a hand-written stand-in for what the out-of-scope code
// generator would emit for a `Ping { ping() -> string }` trait (spec §8
// scenario 1). Method id 0 ignores its argument and returns "pong".
type pingDispatcher struct{}

func (pingDispatcher) Dispatch(method core.MethodID, _ []byte) ([]byte, error) {
	if method != 0 {
		return nil, core.WrapFatal(core.ErrUnknownMethodID, "%d", method)
	}
	return []byte("pong"), nil
}

func (pingDispatcher) TraitID() core.TraitID { return 1 }

func newConnectedPorts(t *testing.T) (a, b *port.Port) {
	t.Helper()
	ta, tb := transport.NewPipe(32)
	a = port.New(ta, port.WithID("A"))
	b = port.New(tb, port.WithID("B"))
	a.Start()
	b.Start()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

// TestBootAndSingleCall is spec §8 scenario 1.
func TestBootAndSingleCall(t *testing.T) {
	a, b := newConnectedPorts(t)

	handle := a.RegisterService(pingDispatcher{})
	if handle.ObjectID != 0 {
		t.Fatalf("object id = %v, want 0", handle.ObjectID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	payload, err := b.Call(ctx, handle.ObjectID, 0, nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if string(payload) != "pong" {
		t.Fatalf("payload = %q, want pong", payload)
	}
	if a.Table().Len() != 1 {
		t.Fatalf("A's table len = %d, want 1 (object still registered)", a.Table().Len())
	}
}

// TestDeleteRemovesObject is spec §8 scenario 4 (minus the weak-pointer
// drop timing, exercised at the proxy layer instead).
func TestDeleteRemovesObject(t *testing.T) {
	a, b := newConnectedPorts(t)
	handle := a.RegisterService(pingDispatcher{})

	b.DeleteRequest(handle.ObjectID)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if a.Table().Len() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("object still present after delete: len=%d", a.Table().Len())
}

// TestConcurrentCallsGetOwnResponses runs 64 concurrent calls over an
// actual port pair and checks that every one completes with "pong". All
// responses are identical here, so a mixed-up slot would go unnoticed;
// port_suite_test.go's echo suite checks distinct per-caller payloads.
func TestConcurrentCallsGetOwnResponses(t *testing.T) {
	a, b := newConnectedPorts(t)
	handle := a.RegisterService(pingDispatcher{})

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			payload, err := b.Call(ctx, handle.ObjectID, 0, nil)
			if err != nil || string(payload) != "pong" {
				t.Errorf("call: payload=%q err=%v", payload, err)
			}
		}()
	}
	wg.Wait()
}

// TestTeardownCancelsPendingCall is spec §8 scenario 5.
func TestTeardownCancelsPendingCall(t *testing.T) {
	ta, tb := transport.NewPipe(32)
	a := port.New(ta, port.WithID("A"))
	b := port.New(tb, port.WithID("B"))
	a.Start()
	b.Start()
	defer a.Close()

	// Object id 0 is never registered on A, so no response ever comes back:
	// A treats the unknown object id as fatal and tears the shared pipe
	// down, and b.Close() below tears B down in any case. Either way B's
	// pending call must be released with an error instead of hanging.
	done := make(chan error, 1)
	go func() {
		_, err := b.Call(context.Background(), 0, 0, nil)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond) // let the call actually enqueue
	b.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected an error after teardown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending call did not unblock on teardown (deadlock)")
	}
}
