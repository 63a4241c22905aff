package core

import "github.com/pkg/errors"

// Error taxonomy (spec §7). The first group are ordinary returned errors
// a Port's reader/writer surfaces and that tear the connection down; the
// second group are raised as panics at the proxy boundary because they
// indicate a programming error rather than a peer fault.
var (
	// ErrTransportClosed is returned once the transport's Recv reports
	// EOF. The port's reader shuts down, releases all pending waiters
	// with ErrCancelled, and marks the port dead.
	ErrTransportClosed = errors.New("rto: transport closed")

	// ErrCancelled is delivered to a waiter released during teardown.
	ErrCancelled = errors.New("rto: call cancelled")

	// ErrTableFull is fatal: the object table has no free slot left at
	// its configured capacity.
	ErrTableFull = errors.New("rto: object table full")

	// ErrUnknownObjectID is fatal: a request or delete named an object
	// id with no live dispatcher.
	ErrUnknownObjectID = errors.New("rto: unknown object id")

	// ErrUnknownMethodID is fatal: a dispatcher was asked for a method
	// id it does not recognize.
	ErrUnknownMethodID = errors.New("rto: unknown method id")

	// ErrMalformedFrame is fatal: the packet codec could not parse an
	// incoming buffer as one of REQ/RSP/DEL.
	ErrMalformedFrame = errors.New("rto: malformed frame")
)

// WrapFatal annotates a fatal protocol error with the peer-facing context
// that made it fatal (object id, method id, frame bytes, ...), in the
// style the teacher uses pkg/errors for: attach a stack + message, keep
// errors.Is/As working against the sentinel.
func WrapFatal(sentinel error, format string, args ...any) error {
	return errors.Wrapf(sentinel, format, args...)
}

// PortGonePanic is the message a Handle.Call panics with when its weak
// port reference has already been collected — the user destroyed the
// Context while a proxy built on it was still in use.
const PortGonePanic = "rto: proxy used after its context was dropped"

// SerializationPanic formats the panic message raised when the configured
// Format capability fails to (de)serialize a call's arguments or result.
func SerializationPanic(dir string, err error) string {
	return "rto: " + dir + " failed: " + err.Error()
}
