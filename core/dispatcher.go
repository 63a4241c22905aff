package core

// Dispatcher is the polymorphic capability the external trait-code
// generator produces for each service trait: given a method id and the
// serialized argument bytes, it invokes the corresponding trait method on
// the wrapped implementation and returns the serialized result.
//
// Concrete dispatchers are produced by generated code; the core treats
// them opaquely. A Dispatcher must be safe to invoke concurrently from
// multiple goroutines — the object table does not serialize dispatches,
// and per-object mutual exclusion, if required, is the dispatcher's own
// responsibility.
type Dispatcher interface {
	// Dispatch invokes method on the wrapped object with arg, returning
	// the serialized result. An unrecognized method id is a fatal
	// protocol error (ErrUnknownMethodID).
	Dispatch(method MethodID, arg []byte) ([]byte, error)

	// TraitID reports the stable trait id this dispatcher was generated
	// for. Used only for optional, unsafe-until-IDL cross-trait casting
	// (see DESIGN.md); the core never inspects it during ordinary calls.
	TraitID() TraitID
}
