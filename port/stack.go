package port

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/NVIDIA/rto/cmn/debug"
)

// MaxPortStackDepth is spec §4.7/§9's representative cap: nested service
// exchanges (a handler calling out to another service during argument
// (de)serialization) may not exceed this depth. Raise it if genuinely
// deeper topologies are needed.
const MaxPortStackDepth = 2

// The per-goroutine port stack (spec §4.7) lives here rather than in
// package proxy because both this package's request dispatch (handleRequest
// brackets a dispatcher invocation with Push/Pop, so exchange wrappers can
// deserialize a received ServiceRef) and package proxy's Handle.Call
// (brackets argument/result (de)serialization) need to push and pop it, and
// proxy already depends on port — putting the stack in proxy would create
// an import cycle.
//
// Go has no native thread-local storage. Grounded on the teacher's heavy
// use of a package-level sync.Map keyed by a generated id to track
// per-session state without plumbing it through every call
// (transport/api.go's `sessions sync.Map`), this keys the same idea off the
// calling goroutine's id instead of a session id — the standard technique
// goroutine-local-storage libraries in the wider Go ecosystem use, since
// runtime.Stack is the only place Go exposes a goroutine identifier.
var (
	stackMu sync.Mutex
	stacks  = make(map[int64][]*Port)
)

func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

// PushPort pushes p onto the calling goroutine's port stack.
func PushPort(p *Port) {
	gid := goroutineID()
	stackMu.Lock()
	defer stackMu.Unlock()
	s := stacks[gid]
	debug.Assertf(len(s) < MaxPortStackDepth, "port stack depth would exceed cap %d", MaxPortStackDepth)
	stacks[gid] = append(s, p)
}

// PopPort pops the calling goroutine's port stack.
func PopPort() {
	gid := goroutineID()
	stackMu.Lock()
	defer stackMu.Unlock()
	s := stacks[gid]
	debug.Assert(len(s) > 0, "port stack underflow")
	s = s[:len(s)-1]
	if len(s) == 0 {
		delete(stacks, gid)
	} else {
		stacks[gid] = s
	}
}

// TopPort returns the port on top of the calling goroutine's port stack,
// i.e. the port whose call is currently being (de)serialized. Exchange
// wrappers (package exchange) use this to know which port to register a
// ServiceToExport with, or which port a ServiceToImport was received on.
func TopPort() (*Port, bool) {
	gid := goroutineID()
	stackMu.Lock()
	defer stackMu.Unlock()
	s := stacks[gid]
	if len(s) == 0 {
		return nil, false
	}
	return s[len(s)-1], true
}
