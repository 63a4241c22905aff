// Property-style suites for the invariants spec §8 calls out, grounded on
// the teacher's cmn/tests/iter_fields_test.go Describe/It style (ginkgo v1
// + gomega), as distinct from port_test.go's plain table tests for the
// concrete end-to-end scenarios.
package port_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NVIDIA/rto/core"
	"github.com/NVIDIA/rto/port"
	"github.com/NVIDIA/rto/transport"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestPortProperties(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}

// echoDispatcher reproduces whatever payload it is handed — the `|x| x`
// method body spec §8's round-trip property is phrased against.
type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ core.MethodID, arg []byte) ([]byte, error) {
	out := make([]byte, len(arg))
	copy(out, arg)
	return out, nil
}

func (echoDispatcher) TraitID() core.TraitID { return 2 }

var _ = Describe("Port", func() {
	var a, b *port.Port

	BeforeEach(func() {
		ta, tb := transport.NewPipe(32)
		a = port.New(ta, port.WithID("A"))
		b = port.New(tb, port.WithID("B"))
		a.Start()
		b.Start()
	})

	AfterEach(func() {
		a.Close()
		b.Close()
	})

	It("keeps exactly one table entry until the object is deleted", func() {
		handle := a.RegisterService(echoDispatcher{})
		Expect(a.Table().Len()).To(Equal(1))

		b.DeleteRequest(handle.ObjectID)

		Eventually(func() int { return a.Table().Len() }, time.Second, 5*time.Millisecond).Should(Equal(0))
	})

	It("round-trips an echoed argument through a call", func() {
		handle := a.RegisterService(echoDispatcher{})
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		payload := []byte("the quick brown fox")
		got, err := b.Call(ctx, handle.ObjectID, 0, payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(payload))
	})

	It("gives each of N concurrent callers its own response (slot discipline under load)", func() {
		handle := a.RegisterService(echoDispatcher{})

		const n = 32
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				payload := []byte{byte(i)}
				got, err := b.Call(ctx, handle.ObjectID, 0, payload)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(payload))
			}(i)
		}
		wg.Wait()
	})
})
