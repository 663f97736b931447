// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package mux

import (
	"mellium.im/jabber/stanza"
)

// The Route methods perform the second level lookup done by the built-in
// presence, message, and IQ tag handlers.
// They report whether a handler was found along with any error it returned.

// RoutePresence calls the handler bound to the type of the presence stanza
// st.
func (r *Registry) RoutePresence(sid string, st *stanza.Element) (bool, error) {
	h, ok := r.PresenceHandler(stanza.PresenceTypeOf(st))
	if !ok {
		return false, nil
	}
	return true, h.HandleStanza(sid, st)
}

// RouteMessage calls the handler bound to the type of the message stanza st.
func (r *Registry) RouteMessage(sid string, st *stanza.Element) (bool, error) {
	h, ok := r.MessageHandler(stanza.MessageTypeOf(st))
	if !ok {
		return false, nil
	}
	return true, h.HandleStanza(sid, st)
}

// RouteIQ calls the handler bound to the namespace of the first payload of the
// IQ stanza st and its type.
func (r *Registry) RouteIQ(sid string, st *stanza.Element) (bool, error) {
	var space string
	if p := st.Payload(); p != nil {
		space = p.Name.Space
	}
	h, ok := r.IQHandler(space, stanza.IQTypeOf(st))
	if !ok {
		return false, nil
	}
	return true, h.HandleStanza(sid, st)
}
