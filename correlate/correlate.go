// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package correlate tracks outstanding requests by ID and matches them with
// their replies.
//
// A registered ID is Pending until a stanza with the same tag and ID is
// resolved against it (Answered) or its owner gives up waiting (TimedOut).
// Answered entries are reaped when their owner takes the reply.
// Timed out entries are removed immediately but leave a tombstone behind so
// that a late reply is recognized, consumed, and discarded instead of being
// delivered to a waiter that has moved on or to the ordinary handlers.
package correlate // import "mellium.im/jabber/correlate"

import (
	"errors"
	"strconv"
	"sync"

	"mellium.im/jabber/stanza"
)

// DefaultPrefix is the ID prefix used when none is provided.
const DefaultPrefix = "mellium"

// MaxTombstones is the number of timed out IDs that are remembered.
// Once the limit is reached the oldest tombstone is forgotten, and a very late
// reply to it is treated like any other unsolicited stanza.
const MaxTombstones = 1024

// ErrDuplicate is returned by Register if the ID is already pending or
// answered.
var ErrDuplicate = errors.New("correlate: id already registered")

// State is the resolution state of a request ID.
type State uint8

// A list of possible states.
const (
	Unregistered State = iota
	Pending
	Answered
	TimedOut
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Answered:
		return "answered"
	case TimedOut:
		return "timed out"
	}
	return "unregistered"
}

type entry struct {
	tag   string
	state State
	reply *stanza.Element
	done  chan struct{}
}

type tombstone struct {
	tag string
	seq uint64
}

type tombRef struct {
	id  string
	seq uint64
}

// Registry tracks request IDs.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
	seq     uint64
	live    map[string]*entry
	tombs   map[string]tombstone
	order   []tombRef
}

// New returns a registry that generates IDs of the form "<prefix>-<n>".
// If prefix is empty, DefaultPrefix is used.
func New(prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Registry{
		prefix: prefix,
		live:   make(map[string]*entry),
		tombs:  make(map[string]tombstone),
	}
}

// NewID returns the next ID.
// IDs are only unique within a registry.
func (r *Registry) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.prefix + "-" + strconv.FormatUint(r.counter, 10)
}

// Register starts tracking a request with the given top level tag and ID.
// Registering an ID that timed out replaces its tombstone.
func (r *Registry) Register(tag, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[id]; ok {
		return ErrDuplicate
	}
	delete(r.tombs, id)
	r.live[id] = &entry{tag: tag, state: Pending, done: make(chan struct{})}
	return nil
}

// IsRegistered reports whether a stanza with the given tag and ID will be
// consumed by Resolve.
// This is true for pending requests and for timed out requests that have not
// yet been reaped.
func (r *Registry) IsRegistered(tag, id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.live[id]; ok {
		return e.state == Pending && e.tag == tag
	}
	t, ok := r.tombs[id]
	return ok && t.tag == tag
}

// Resolve matches st against a registered ID.
// A pending request becomes Answered and its Done channel is closed.
// A timed out request is reaped and st is discarded.
// Resolve reports whether st was consumed.
func (r *Registry) Resolve(tag, id string, st *stanza.Element) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.live[id]; ok {
		if e.state != Pending || e.tag != tag {
			return false
		}
		e.state = Answered
		e.reply = st
		close(e.done)
		return true
	}
	if t, ok := r.tombs[id]; ok && t.tag == tag {
		delete(r.tombs, id)
		return true
	}
	return false
}

// Expire marks a pending request as timed out.
// The entry is removed and a tombstone is kept so that a late reply can be
// discarded.
// Expire reports whether the request was pending.
func (r *Registry) Expire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live[id]
	if !ok || e.state != Pending {
		return false
	}
	delete(r.live, id)
	r.seq++
	r.tombs[id] = tombstone{tag: e.tag, seq: r.seq}
	r.order = append(r.order, tombRef{id: id, seq: r.seq})
	r.evict()
	return true
}

func (r *Registry) evict() {
	for len(r.tombs) > MaxTombstones && len(r.order) > 0 {
		ref := r.order[0]
		r.order = r.order[1:]
		if t, ok := r.tombs[ref.id]; ok && t.seq == ref.seq {
			delete(r.tombs, ref.id)
		}
	}
	// Drop references to tombstones that were reaped or replaced.
	if len(r.order) > 2*MaxTombstones {
		kept := make([]tombRef, 0, len(r.tombs))
		for _, ref := range r.order {
			if t, ok := r.tombs[ref.id]; ok && t.seq == ref.seq {
				kept = append(kept, ref)
			}
		}
		r.order = kept
	}
}

// Take returns the reply to an answered request and reaps it.
// If the request has not been answered, ok is false and the entry is left
// untouched.
func (r *Registry) Take(id string) (reply *stanza.Element, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.live[id]
	if !found || e.state != Answered {
		return nil, false
	}
	delete(r.live, id)
	return e.reply, true
}

// Forget stops tracking id regardless of its state, including any tombstone.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
	delete(r.tombs, id)
}

// State returns the state of id.
func (r *Registry) State(id string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.live[id]; ok {
		return e.state
	}
	if _, ok := r.tombs[id]; ok {
		return TimedOut
	}
	return Unregistered
}

// Done returns a channel that is closed when id is answered.
// If id is not pending or answered, Done returns nil.
func (r *Registry) Done(id string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.live[id]; ok {
		return e.done
	}
	return nil
}

// Len returns the number of pending and answered requests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Tombstones returns the number of timed out requests that have not been
// reaped.
func (r *Registry) Tombstones() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tombs)
}
