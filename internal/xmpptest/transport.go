// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xmpptest provides utilities for XMPP testing.
package xmpptest // import "mellium.im/jabber/internal/xmpptest"

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"mellium.im/jabber/stanza"
	"mellium.im/jabber/transport"
)

// ErrClosed is returned by Process after Close is called with a nil error.
var ErrClosed = errors.New("xmpptest: transport closed")

// Sent is a stanza written to a Transport.
type Sent struct {
	SID     string
	Stanza  *stanza.Element
	Ignored bool
}

// Option configures a Transport.
type Option func(*Transport)

// OnSend sets a function that is called after every send with the stanza that
// was sent.
// It is typically used to queue a reply to a request.
func OnSend(f func(t *Transport, sid string, st *stanza.Element)) Option {
	return func(t *Transport) {
		t.onSend = f
	}
}

// Idle sets how long Process sleeps when there is no input, up to the timeout
// it was called with.
// By default it sleeps for the whole timeout like a real transport would.
func Idle(d time.Duration) Option {
	return func(t *Transport) {
		t.idle = d
	}
}

type inbound struct {
	sid string
	xml string
}

// Transport is a scripted transport.Transport.
// Input is queued with Queue and handed to the dispatcher one top level
// element per call to Process, and everything sent is recorded.
type Transport struct {
	onSend func(t *Transport, sid string, st *stanza.Element)
	idle   time.Duration

	mu     sync.Mutex
	queue  []inbound
	sent   []Sent
	last   map[string]time.Time
	ignore map[string]bool
	closed error
	start  time.Time
}

// New returns a Transport with no queued input.
func New(opts ...Option) *Transport {
	t := &Transport{
		idle:   -1,
		last:   make(map[string]time.Time),
		ignore: make(map[string]bool),
		start:  time.Now(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Queue adds a top level element to the input of the session sid.
func (t *Transport) Queue(sid, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, inbound{sid: sid, xml: s})
}

// QueueElement is like Queue but takes an element.
func (t *Transport) QueueElement(sid string, el *stanza.Element) {
	t.Queue(sid, el.XML())
}

// Pending returns the number of queued elements.
func (t *Transport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Close makes every later call to Process and Send fail with err, or with
// ErrClosed if err is nil.
func (t *Transport) Close(err error) {
	if err == nil {
		err = ErrClosed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = err
}

// Sent returns a copy of everything sent so far.
func (t *Transport) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}

// SentXML returns everything sent so far encoded as strings.
func (t *Transport) SentXML() []string {
	sent := t.Sent()
	out := make([]string, 0, len(sent))
	for _, s := range sent {
		out = append(out, s.Stanza.XML())
	}
	return out
}

// Last returns the last stanza sent, or nil if nothing has been sent.
func (t *Transport) Last() *stanza.Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return nil
	}
	return t.sent[len(t.sent)-1].Stanza
}

// Reset forgets everything sent so far.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
}

// Send satisfies transport.Transport.
func (t *Transport) Send(sid string, r xml.TokenReader) error {
	el, err := stanza.Decode(r)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.closed != nil {
		err := t.closed
		t.mu.Unlock()
		return err
	}
	ignored := t.ignore[sid]
	t.sent = append(t.sent, Sent{SID: sid, Stanza: el, Ignored: ignored})
	if !ignored {
		t.last[sid] = time.Now()
	}
	onSend := t.onSend
	t.mu.Unlock()

	if onSend != nil {
		onSend(t, sid, el.Copy())
	}
	return nil
}

// Process satisfies transport.Transport.
func (t *Transport) Process(timeout time.Duration, d transport.Dispatcher) (transport.Status, error) {
	t.mu.Lock()
	if t.closed != nil {
		err := t.closed
		t.mu.Unlock()
		return transport.Fatal, err
	}
	if len(t.queue) == 0 {
		t.mu.Unlock()
		sleep := timeout
		if t.idle >= 0 && t.idle < sleep {
			sleep = t.idle
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
		return transport.NoData, nil
	}
	in := t.queue[0]
	t.queue = t.queue[1:]
	t.mu.Unlock()

	dec := xml.NewDecoder(strings.NewReader(in.xml))
	err := d.DispatchTokens(in.sid, dec)
	if err == io.EOF {
		err = nil
	}
	return transport.DataReceived, err
}

// IgnoreActivity satisfies transport.Transport.
func (t *Transport) IgnoreActivity(sid string, ignore bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ignore[sid] = ignore
}

// LastActivity satisfies transport.Transport.
// Sessions with no activity report the time the transport was created.
func (t *Transport) LastActivity(sid string) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.last[sid]; ok {
		return last
	}
	return t.start
}

// SetLastActivity overrides the time of the last activity on sid.
func (t *Transport) SetLastActivity(sid string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[sid] = at
}
