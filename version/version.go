// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package version queries a remote entity for software version info.
package version // import "mellium.im/jabber/version"

import (
	"encoding/xml"

	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

// NS is the XML namespace used by software version queries.
// It is provided as a convenience.
const NS = ns.Version

// Query is the payload of a software version query or response.
type Query struct {
	Name    string
	Version string
	OS      string
}

func schema(nss stanza.Namespaces) stanza.Schema {
	if nss == nil {
		nss = stanza.DefaultNamespaces()
	}
	return nss.MustSchema(NS, "query")
}

// Element returns the query payload.
// If nss is nil the default field table is used.
func (q Query) Element(nss stanza.Namespaces) *stanza.Element {
	s := schema(nss)
	e := s.New()
	s.Set(e, "name", q.Name)
	s.Set(e, "version", q.Version)
	s.Set(e, "os", q.OS)
	return e
}

// TokenReader implements xmlstream.Marshaler using the default field names.
func (q Query) TokenReader() xml.TokenReader {
	var payloads []xml.TokenReader
	for _, f := range [...]struct{ name, val string }{
		{"name", q.Name},
		{"version", q.Version},
		{"os", q.OS},
	} {
		if f.val == "" {
			continue
		}
		payloads = append(payloads, xmlstream.Wrap(
			xmlstream.Token(xml.CharData(f.val)),
			xml.StartElement{Name: xml.Name{Local: f.name}},
		))
	}
	return xmlstream.Wrap(
		xmlstream.MultiReader(payloads...),
		xml.StartElement{Name: xml.Name{Space: NS, Local: "query"}},
	)
}

// WriteXML implements xmlstream.WriterTo.
func (q Query) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, q.TokenReader())
}

// Parse reads a version payload from an IQ or the payload itself.
// If no payload is found ok is false.
func Parse(nss stanza.Namespaces, e *stanza.Element) (q Query, ok bool) {
	if e == nil {
		return q, false
	}
	p := e
	if e.Name.Space != NS {
		if p = e.Child(NS, "query"); p == nil {
			return q, false
		}
	}
	s := schema(nss)
	return Query{
		Name:    s.Get(p, "name"),
		Version: s.Get(p, "version"),
		OS:      s.Get(p, "os"),
	}, true
}

// Request returns an IQ asking "to" for its software version.
func Request(to string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NS))
}

// Handler responds to software version requests.
type Handler struct {
	Query      Query
	Namespaces stanza.Namespaces
	Send       mux.SendFunc
}

// HandleStanza satisfies mux.Handler.
func (h Handler) HandleStanza(sid string, iq *stanza.Element) error {
	if stanza.IQTypeOf(iq) != stanza.GetIQ {
		return nil
	}
	return h.Send(sid, iq.Reply("").AddChild(h.Query.Element(h.Namespaces)))
}

// Handle returns an option that registers a Handler for version requests.
func Handle(h Handler) mux.Option {
	return mux.IQ(NS, stanza.GetIQ, h)
}
