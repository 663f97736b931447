// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlrpc

import (
	"errors"
	"sort"
	"sync"

	"mellium.im/jabber/stanza"
)

// Fault codes returned by Mux.
const (
	FaultBadRequest = 400
	FaultNotFound   = 404
	FaultInternal   = 500
)

// MethodFunc implements an XML-RPC method.
// It receives the IQ carrying the call and the decoded params.
// Returning a Fault as the error sends that fault to the caller; any other
// error is reported as an internal error fault.
type MethodFunc func(iq *stanza.Element, params []any) ([]any, error)

// Mux routes method calls to functions by method name.
// It is safe for concurrent use.
type Mux struct {
	mu      sync.RWMutex
	methods map[string]MethodFunc
}

// NewMux returns an empty method table.
func NewMux() *Mux {
	return &Mux{methods: make(map[string]MethodFunc)}
}

// Handle binds f to the named method, replacing any existing binding.
// A nil f removes the method.
func (m *Mux) Handle(name string, f MethodFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f == nil {
		delete(m.methods, name)
		return
	}
	m.methods[name] = f
}

// Methods returns the names of all bound methods in sorted order.
func (m *Mux) Methods() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.methods))
	for name := range m.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve invokes the method called by iq and returns the query payload of the
// response.
// The response is always a valid methodResponse: failures to parse the call,
// unknown methods, and method errors are reported as faults.
func (m *Mux) Serve(iq *stanza.Element) *stanza.Element {
	call, err := ParseCall(iq)
	if err != nil {
		return EncodeFault(Fault{Code: FaultBadRequest, String: err.Error()})
	}

	m.mu.RLock()
	f, ok := m.methods[call.Method]
	m.mu.RUnlock()
	if !ok {
		return EncodeFault(Fault{Code: FaultNotFound, String: "method " + call.Method + " not found"})
	}

	params := make([]any, 0, len(call.Params))
	for _, p := range call.Params {
		d, err := Decode(p)
		if err != nil {
			return EncodeFault(Fault{Code: FaultBadRequest, String: err.Error()})
		}
		params = append(params, d)
	}

	out, err := f(iq, params)
	if err != nil {
		var fault Fault
		if errors.As(err, &fault) {
			return EncodeFault(fault)
		}
		return EncodeFault(Fault{Code: FaultInternal, String: err.Error()})
	}
	resp, err := EncodeResponse(Response{Params: out})
	if err != nil {
		return EncodeFault(Fault{Code: FaultInternal, String: err.Error()})
	}
	return resp
}
