// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package mux

import (
	"mellium.im/jabber/stanza"
)

// Handler responds to a stanza received on the session identified by sid.
type Handler interface {
	HandleStanza(sid string, st *stanza.Element) error
}

// The HandlerFunc type is an adapter to allow the use of ordinary functions as
// stanza handlers.
// If f is a function with the appropriate signature, HandlerFunc(f) is a
// Handler that calls f.
type HandlerFunc func(sid string, st *stanza.Element) error

// HandleStanza calls f(sid, st).
func (f HandlerFunc) HandleStanza(sid string, st *stanza.Element) error {
	return f(sid, st)
}

// SendFunc sends a stanza on the session identified by sid.
// Handlers that answer requests are given one to send their replies.
type SendFunc func(sid string, st *stanza.Element) error
