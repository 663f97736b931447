// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package mux implements a registry of stanza handlers.
//
// Handlers are bound at four granularities: by the tag of the top level
// element, by presence or message type, by IQ payload namespace and type, and
// by XPath expression.
// A Registry is owned by a single client; nothing is shared between
// registries.
// Binding a handler to a key that is already bound replaces the old handler,
// and binding a nil handler removes the key.
package mux // import "mellium.im/jabber/mux"

import (
	"sort"
	"sync"

	"mellium.im/jabber/stanza"
)

type iqKey struct {
	Space string
	Type  stanza.IQType
}

// Registry holds stanza handlers.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	tags     map[string]Handler
	presence map[stanza.PresenceType]Handler
	message  map[stanza.MessageType]Handler
	iq       map[iqKey]Handler
	xpath    []*xpathEntry
}

// New allocates and returns a new Registry.
func New(opt ...Option) *Registry {
	r := &Registry{
		tags:     make(map[string]Handler),
		presence: make(map[stanza.PresenceType]Handler),
		message:  make(map[stanza.MessageType]Handler),
		iq:       make(map[iqKey]Handler),
	}
	for _, o := range opt {
		o(r)
	}
	return r
}

// SetTag binds h to every top level element with the given tag.
func (r *Registry) SetTag(tag string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.tags, tag)
		return
	}
	r.tags[tag] = h
}

// TagHandler returns the handler bound to tag.
func (r *Registry) TagHandler(tag string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.tags[tag]
	return h, ok
}

// HasTag reports whether a handler is bound to tag.
func (r *Registry) HasTag(tag string) bool {
	_, ok := r.TagHandler(tag)
	return ok
}

// SetPresence binds h to presence stanzas of the given type.
// Use stanza.AvailablePresence for presence without a type attribute.
func (r *Registry) SetPresence(typ stanza.PresenceType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.presence, typ)
		return
	}
	r.presence[typ] = h
}

// PresenceHandler returns the handler bound to presence stanzas of the given
// type.
func (r *Registry) PresenceHandler(typ stanza.PresenceType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.presence[typ]
	return h, ok
}

// SetMessage binds h to message stanzas of the given type.
// Use stanza.NormalMessage for messages without a type attribute.
func (r *Registry) SetMessage(typ stanza.MessageType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.message, typ)
		return
	}
	r.message[typ] = h
}

// MessageHandler returns the handler bound to message stanzas of the given
// type.
func (r *Registry) MessageHandler(typ stanza.MessageType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.message[typ]
	return h, ok
}

// SetIQ binds h to IQ stanzas whose payload is in the namespace space and that
// have the given type.
// An empty type binds h to every IQ with a payload in the namespace, and takes
// precedence over handlers bound to a specific type.
// An empty namespace matches IQs of the given type whose payload namespace has
// no handler of its own (including IQs with no payload).
func (r *Registry) SetIQ(space string, typ stanza.IQType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := iqKey{Space: space, Type: typ}
	if h == nil {
		delete(r.iq, k)
		return
	}
	r.iq[k] = h
}

// IQHandler returns the handler for IQs with the given payload namespace and
// type.
// A handler bound to the whole namespace is returned first, then the handler
// for the namespace and type, and finally the handler bound to the type in
// the empty namespace.
func (r *Registry) IQHandler(space string, typ stanza.IQType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.iq[iqKey{Space: space}]; ok && space != "" {
		return h, true
	}
	if h, ok := r.iq[iqKey{Space: space, Type: typ}]; ok {
		return h, true
	}
	h, ok := r.iq[iqKey{Type: typ}]
	return h, ok
}

// Features returns the sorted set of payload namespaces that have an IQ
// handler bound to them.
// It is used to advertise supported features in service discovery responses.
func (r *Registry) Features() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.iq))
	features := make([]string, 0, len(r.iq))
	for k := range r.iq {
		if _, ok := seen[k.Space]; ok || k.Space == "" {
			continue
		}
		seen[k.Space] = struct{}{}
		features = append(features, k.Space)
	}
	sort.Strings(features)
	return features
}
