// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package mux

import (
	"mellium.im/jabber/stanza"
)

// Option configures a Registry.
// Options are meant for handlers known when the registry is created, so unlike
// the Set methods they panic if the handler is nil or the key is already bound.
type Option func(r *Registry)

// Tag returns an option that binds h to top level elements with the given tag.
func Tag(tag string, h Handler) Option {
	return func(r *Registry) {
		if h == nil {
			panic("mux: nil handler")
		}
		if r.HasTag(tag) {
			panic("mux: multiple registrations for " + tag)
		}
		r.SetTag(tag, h)
	}
}

// TagFunc returns an option that binds f to top level elements with the given
// tag.
func TagFunc(tag string, f HandlerFunc) Option {
	return Tag(tag, f)
}

// Presence returns an option that binds h to presence stanzas by type.
func Presence(typ stanza.PresenceType, h Handler) Option {
	return func(r *Registry) {
		if h == nil {
			panic("mux: nil presence handler")
		}
		if _, ok := r.PresenceHandler(typ); ok {
			panic("mux: multiple registrations for presence " + string(typ))
		}
		r.SetPresence(typ, h)
	}
}

// PresenceFunc returns an option that binds f to presence stanzas by type.
func PresenceFunc(typ stanza.PresenceType, f HandlerFunc) Option {
	return Presence(typ, f)
}

// Message returns an option that binds h to message stanzas by type.
func Message(typ stanza.MessageType, h Handler) Option {
	return func(r *Registry) {
		if h == nil {
			panic("mux: nil message handler")
		}
		if _, ok := r.MessageHandler(typ); ok {
			panic("mux: multiple registrations for message " + string(typ))
		}
		r.SetMessage(typ, h)
	}
}

// MessageFunc returns an option that binds f to message stanzas by type.
func MessageFunc(typ stanza.MessageType, f HandlerFunc) Option {
	return Message(typ, f)
}

// IQ returns an option that binds h to IQ stanzas by payload namespace and
// type.
// For more information see Registry.SetIQ.
func IQ(space string, typ stanza.IQType, h Handler) Option {
	return func(r *Registry) {
		if h == nil {
			panic("mux: nil IQ handler")
		}
		k := iqKey{Space: space, Type: typ}
		r.mu.RLock()
		_, ok := r.iq[k]
		r.mu.RUnlock()
		if ok {
			panic("mux: multiple registrations for iq {" + space + "}" + string(typ))
		}
		r.SetIQ(space, typ, h)
	}
}

// IQFunc returns an option that binds f to IQ stanzas by payload namespace and
// type.
func IQFunc(space string, typ stanza.IQType, f HandlerFunc) Option {
	return IQ(space, typ, f)
}

// XPath returns an option that binds h under name to stanzas matching expr.
// It panics if expr does not compile.
func XPath(expr, name string, h Handler) Option {
	return func(r *Registry) {
		if h == nil {
			panic("mux: nil XPath handler")
		}
		if err := r.SetXPath(expr, name, h); err != nil {
			panic("mux: " + err.Error())
		}
	}
}
