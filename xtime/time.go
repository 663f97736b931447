// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xtime implements time related XMPP functionality.
//
// In particular, this package implements XEP-0202: Entity Time, the legacy
// jabber:iq:time protocol it replaced (XEP-0090), and XEP-0082: XMPP Date and
// Time Profiles.
package xtime // import "mellium.im/jabber/xtime"

import (
	"errors"
	"time"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

const (
	// NS is the XML namespace used by XMPP entity time requests.
	// It is provided as a convenience.
	NS = ns.EntityTime

	// NSLegacy is the namespace of the older jabber:iq:time protocol.
	NSLegacy = ns.Time

	// LegacyDateTime implements the legacy profile mentioned in XEP-0082.
	//
	// Unless you are implementing an older XEP that specifically calls for this
	// format, time.RFC3339 should be used instead.
	LegacyDateTime = "20060102T15:04:05"
)

const tzd = "Z07:00"

var errNoTime = errors.New("xtime: no time payload")

func namespaces(nss stanza.Namespaces) stanza.Namespaces {
	if nss == nil {
		return stanza.DefaultNamespaces()
	}
	return nss
}

// Element returns t as an XEP-0202 time payload.
func Element(nss stanza.Namespaces, t time.Time) *stanza.Element {
	s := namespaces(nss).MustSchema(NS, "time")
	e := s.New()
	s.Set(e, "tzo", t.Format(tzd))
	s.Set(e, "utc", t.UTC().Format(time.RFC3339))
	return e
}

// Parse reads an XEP-0202 time payload from an IQ or the payload itself.
// The returned time is in the time zone of the remote entity.
func Parse(nss stanza.Namespaces, e *stanza.Element) (time.Time, error) {
	p := e
	if e == nil {
		return time.Time{}, errNoTime
	}
	if e.Name.Space != NS {
		if p = e.Child(NS, "time"); p == nil {
			return time.Time{}, errNoTime
		}
	}
	s := namespaces(nss).MustSchema(NS, "time")
	zone, err := time.Parse(tzd, s.Get(p, "tzo"))
	if err != nil {
		return time.Time{}, err
	}
	utcTime, err := time.Parse(time.RFC3339, s.Get(p, "utc"))
	if err != nil {
		return time.Time{}, err
	}
	return utcTime.In(zone.Location()), nil
}

// Legacy is the payload of a jabber:iq:time response.
type Legacy struct {
	UTC     time.Time
	TZ      string
	Display string
}

// NewLegacy returns the legacy time payload for t.
func NewLegacy(t time.Time) Legacy {
	tz, _ := t.Zone()
	return Legacy{
		UTC:     t.UTC(),
		TZ:      tz,
		Display: t.Format(time.ANSIC),
	}
}

// Element returns the legacy time payload.
func (l Legacy) Element(nss stanza.Namespaces) *stanza.Element {
	s := namespaces(nss).MustSchema(NSLegacy, "query")
	e := s.New()
	if !l.UTC.IsZero() {
		s.Set(e, "utc", l.UTC.UTC().Format(LegacyDateTime))
	}
	s.Set(e, "tz", l.TZ)
	s.Set(e, "display", l.Display)
	return e
}

// ParseLegacy reads a jabber:iq:time payload from an IQ or the payload itself.
func ParseLegacy(nss stanza.Namespaces, e *stanza.Element) (Legacy, error) {
	p := e
	if e == nil {
		return Legacy{}, errNoTime
	}
	if e.Name.Space != NSLegacy {
		if p = e.Child(NSLegacy, "query"); p == nil {
			return Legacy{}, errNoTime
		}
	}
	s := namespaces(nss).MustSchema(NSLegacy, "query")
	l := Legacy{
		TZ:      s.Get(p, "tz"),
		Display: s.Get(p, "display"),
	}
	if utc := s.Get(p, "utc"); utc != "" {
		t, err := time.Parse(LegacyDateTime, utc)
		if err != nil {
			return l, err
		}
		l.UTC = t
	}
	return l, nil
}

// Request returns an IQ asking "to" for its time.
// If legacy is true the jabber:iq:time protocol is used.
func Request(to string, legacy bool) *stanza.Element {
	if legacy {
		return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NSLegacy))
	}
	return stanza.NewIQ(stanza.GetIQ, to, stanza.NewElement(xmlName("time")))
}

// Handler responds to requests for our time in either protocol.
// If TimeFunc is nil, time.Now is used.
type Handler struct {
	TimeFunc   func() time.Time
	Namespaces stanza.Namespaces
	Send       mux.SendFunc
}

// HandleStanza satisfies mux.Handler.
func (h Handler) HandleStanza(sid string, iq *stanza.Element) error {
	if stanza.IQTypeOf(iq) != stanza.GetIQ {
		return nil
	}
	now := time.Now
	if h.TimeFunc != nil {
		now = h.TimeFunc
	}
	t := now()

	reply := iq.Reply("")
	switch {
	case iq.Child(NS, "time") != nil:
		reply.AddChild(Element(h.Namespaces, t))
	case iq.Child(NSLegacy, "query") != nil:
		reply.AddChild(NewLegacy(t).Element(h.Namespaces))
	default:
		return nil
	}
	return h.Send(sid, reply)
}

// Handle returns an option that registers a Handler for both time protocols.
func Handle(h Handler) mux.Option {
	return func(r *mux.Registry) {
		mux.IQ(NS, stanza.GetIQ, h)(r)
		mux.IQ(NSLegacy, stanza.GetIQ, h)(r)
	}
}
