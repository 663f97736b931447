// Copyright 2018 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package roster implements contact list functionality.
package roster // import "mellium.im/jabber/roster"

import (
	"encoding/xml"

	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// NS is the roster namespace provided as a convenience.
const NS = ns.Roster

// Subscription states of a roster item.
// Remove is not a state; an item with a subscription of Remove deletes the
// contact.
const (
	None   = "none"
	To     = "to"
	From   = "from"
	Both   = "both"
	Remove = "remove"
)

// Pending subscription requests of a roster item.
const (
	AskSubscribe   = "subscribe"
	AskUnsubscribe = "unsubscribe"
)

// Item represents a contact in the roster.
type Item struct {
	JID          string
	Name         string
	Subscription string
	Ask          string
	Groups       []string
}

func itemSchema(nss stanza.Namespaces) stanza.Schema {
	if nss == nil {
		nss = stanza.DefaultNamespaces()
	}
	return nss.MustSchema(NS, "item")
}

// Element returns the item as a roster <item/> element using the field table
// registered in nss.
// If nss is nil the default table is used.
func (item Item) Element(nss stanza.Namespaces) *stanza.Element {
	s := itemSchema(nss)
	e := s.New()
	s.Set(e, "jid", item.JID)
	s.Set(e, "name", item.Name)
	s.Set(e, "subscription", item.Subscription)
	s.Set(e, "ask", item.Ask)
	for _, g := range item.Groups {
		s.Add(e, "group", g)
	}
	return e
}

// TokenReader satisfies the xmlstream.Marshaler interface for an <item/>
// using the default field names.
func (item Item) TokenReader() xml.TokenReader {
	start := xml.StartElement{Name: xml.Name{Space: NS, Local: "item"}}
	for _, a := range [...]xml.Attr{
		{Name: xml.Name{Local: "jid"}, Value: item.JID},
		{Name: xml.Name{Local: "name"}, Value: item.Name},
		{Name: xml.Name{Local: "subscription"}, Value: item.Subscription},
		{Name: xml.Name{Local: "ask"}, Value: item.Ask},
	} {
		if a.Value != "" {
			start.Attr = append(start.Attr, a)
		}
	}

	var groups []xml.TokenReader
	for _, g := range item.Groups {
		groups = append(groups, xmlstream.Wrap(
			xmlstream.Token(xml.CharData(g)),
			xml.StartElement{Name: xml.Name{Local: "group"}},
		))
	}
	return xmlstream.Wrap(xmlstream.MultiReader(groups...), start)
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (item Item) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, item.TokenReader())
}

// ParseItem reads an item from a roster <item/> element.
func ParseItem(nss stanza.Namespaces, e *stanza.Element) Item {
	s := itemSchema(nss)
	return Item{
		JID:          s.Get(e, "jid"),
		Name:         s.Get(e, "name"),
		Subscription: s.Get(e, "subscription"),
		Ask:          s.Get(e, "ask"),
		Groups:       s.GetAll(e, "group"),
	}
}

// Query returns a roster query payload containing items.
// The zero value (no version and no items) requests the roster.
func Query(nss stanza.Namespaces, ver string, items ...Item) *stanza.Element {
	q := stanza.Query(NS).SetAttribute("ver", ver)
	for _, item := range items {
		q.AddChild(item.Element(nss))
	}
	return q
}

// Parse returns the items contained in a roster query payload or an IQ
// carrying one, along with the roster version, if any.
// Items without a JID are skipped.
func Parse(nss stanza.Namespaces, e *stanza.Element) (items []Item, ver string) {
	if e == nil {
		return nil, ""
	}
	q := e
	if e.Name.Space != NS || e.Name.Local != "query" {
		q = e.Child(NS, "query")
		if q == nil {
			return nil, ""
		}
	}
	for _, c := range q.Children {
		if c.Name.Local != "item" {
			continue
		}
		item := ParseItem(nss, c)
		if item.JID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, q.Attribute("ver")
}

// Get returns an IQ requesting the roster.
func Get() *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, "", Query(nil, ""))
}

// Set returns an IQ adding or updating items.
func Set(nss stanza.Namespaces, items ...Item) *stanza.Element {
	return stanza.NewIQ(stanza.SetIQ, "", Query(nss, "", items...))
}
