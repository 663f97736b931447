// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package last implements XEP-0012: Last Activity.
package last // import "mellium.im/jabber/last"

import (
	"strconv"
	"time"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

// NS is the XML namespace used by last activity queries.
// It is provided as a convenience.
const NS = ns.Last

// Query is the payload of a last activity response.
// Depending on who is asked, Seconds is the idle time of a client, the time
// since a contact went offline, or the uptime of a server.
type Query struct {
	Seconds time.Duration
	Message string
}

func schema(nss stanza.Namespaces) stanza.Schema {
	if nss == nil {
		nss = stanza.DefaultNamespaces()
	}
	return nss.MustSchema(NS, "query")
}

// Element returns the query payload.
// Seconds is truncated to whole seconds.
func (q Query) Element(nss stanza.Namespaces) *stanza.Element {
	s := schema(nss)
	e := s.New()
	s.Set(e, "seconds", strconv.FormatInt(int64(q.Seconds/time.Second), 10))
	s.Set(e, "message", q.Message)
	return e
}

// Parse reads a last activity payload from an IQ or the payload itself.
func Parse(nss stanza.Namespaces, e *stanza.Element) (Query, error) {
	if e == nil {
		return Query{}, stanza.Error{Type: stanza.Modify, Condition: stanza.BadRequest}
	}
	p := e
	if e.Name.Space != NS {
		if p = e.Child(NS, "query"); p == nil {
			return Query{}, stanza.Error{Type: stanza.Modify, Condition: stanza.BadRequest}
		}
	}
	s := schema(nss)
	q := Query{Message: s.Get(p, "message")}
	if v := s.Get(p, "seconds"); v != "" {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, err
		}
		q.Seconds = time.Duration(secs) * time.Second
	}
	return q, nil
}

// Request returns an IQ asking "to" for its last activity.
func Request(to string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NS))
}

// Handler answers last activity requests with the idle time of the session
// the request arrived on.
type Handler struct {
	Idle       func(sid string) time.Duration
	Namespaces stanza.Namespaces
	Send       mux.SendFunc
}

// HandleStanza satisfies mux.Handler.
func (h Handler) HandleStanza(sid string, iq *stanza.Element) error {
	if stanza.IQTypeOf(iq) != stanza.GetIQ {
		return nil
	}
	var q Query
	if h.Idle != nil {
		q.Seconds = h.Idle(sid)
	}
	if q.Seconds < 0 {
		q.Seconds = 0
	}
	return h.Send(sid, iq.Reply("").AddChild(q.Element(h.Namespaces)))
}

// Handle returns an option that registers a Handler for last activity
// requests.
func Handle(h Handler) mux.Option {
	return mux.IQ(NS, stanza.GetIQ, h)
}
