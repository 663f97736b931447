// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package register implements XEP-0077: In-Band Registration.
package register // import "mellium.im/jabber/register"

import (
	"errors"
	"sort"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// NS is the XML namespace used by in-band registration.
// It is provided as a convenience.
const NS = ns.Register

// ErrNoQuery is returned when parsing a stanza without a registration payload.
var ErrNoQuery = errors.New("register: no query payload")

// Form is the registration form returned by a service.
// Fields maps every requested field name to its current value, which is
// empty unless the entity is already registered.
type Form struct {
	Instructions string
	Registered   bool
	Fields       map[string]string
}

func schema(nss stanza.Namespaces) stanza.Schema {
	if nss == nil {
		nss = stanza.DefaultNamespaces()
	}
	return nss.MustSchema(NS, "query")
}

// Request returns an IQ asking "to" for its registration form.
func Request(to string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NS))
}

// Set returns an IQ submitting fields to "to".
// Fields are written in sorted order; it panics if a field is not in the
// field table.
func Set(nss stanza.Namespaces, to string, fields map[string]string) *stanza.Element {
	s := schema(nss)
	q := s.New()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Set(q, name, fields[name])
	}
	return stanza.NewIQ(stanza.SetIQ, to, q)
}

// Remove returns an IQ cancelling an existing registration with "to".
func Remove(nss stanza.Namespaces, to string) *stanza.Element {
	s := schema(nss)
	return stanza.NewIQ(stanza.SetIQ, to, s.Set(s.New(), "remove", "true"))
}

// Parse reads a registration form from an IQ or the payload itself.
// Children that are not in the field table are reported as fields too so that
// services requesting non-standard fields can still be answered.
func Parse(nss stanza.Namespaces, e *stanza.Element) (Form, error) {
	if e == nil {
		return Form{}, ErrNoQuery
	}
	q := e
	if e.Name.Space != NS {
		if q = e.Child(NS, "query"); q == nil {
			return Form{}, ErrNoQuery
		}
	}
	s := schema(nss)
	f := Form{
		Instructions: s.Get(q, "instructions"),
		Registered:   s.Has(q, "registered"),
		Fields:       make(map[string]string),
	}
	for _, c := range q.Children {
		switch c.Name.Local {
		case "instructions", "registered", "remove":
			continue
		}
		if c.Name.Space != NS {
			continue
		}
		if _, ok := s.Fields[c.Name.Local]; ok {
			f.Fields[c.Name.Local] = s.Get(q, c.Name.Local)
			continue
		}
		f.Fields[c.Name.Local] = c.Text
	}
	return f, nil
}
