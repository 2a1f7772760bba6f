package fakeauthority

import (
	"time"

	"github.com/ontoserver/collabclient/pkg/connection"
)

// Injection describes a failure applied to matching requests before they are
// handled. Injected requests never change authority state.
type Injection struct {
	// Err is returned instead of the real result.
	Err *connection.RPCError
	// Drop aborts the underlying connection without answering.
	Drop bool
	// Delay is applied before anything else.
	Delay time.Duration
	// Times is how many requests the injection applies to. Zero means all of them.
	Times int

	used int
}

// Inject registers an injection for method. Injections are consumed in the
// order they were added.
func (a *Authority) Inject(method connection.RPCFunction, inj Injection) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.injections[string(method)] = append(a.injections[string(method)], &inj)
}

// FailOn makes the next `times` calls of method fail with err.
func (a *Authority) FailOn(method connection.RPCFunction, err *connection.RPCError, times int) {
	a.Inject(method, Injection{Err: err, Times: times})
}

// ClearInjections removes every pending injection.
func (a *Authority) ClearInjections() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.injections = make(map[string][]*Injection)
}

// nextInjection must be called with mu held.
func (a *Authority) nextInjection(method string) *Injection {
	pending := a.injections[method]
	for len(pending) > 0 {
		inj := pending[0]
		if inj.Times == 0 || inj.used < inj.Times {
			inj.used++
			if inj.Times != 0 && inj.used == inj.Times {
				pending = pending[1:]
			}
			a.injections[method] = pending
			return inj
		}
		pending = pending[1:]
	}
	a.injections[method] = pending
	return nil
}
