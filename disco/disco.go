// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package disco implements XEP-0030: Service Discovery and the older
// jabber:iq:browse protocol it replaced (XEP-0011).
package disco // import "mellium.im/jabber/disco"

import (
	"encoding/xml"
	"errors"

	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// Namespaces used by this package, provided as a convenience.
const (
	NSInfo   = ns.DiscoInfo
	NSItems  = ns.DiscoItems
	NSBrowse = ns.Browse
)

var errNoQuery = errors.New("disco: no query payload")

func namespaces(nss stanza.Namespaces) stanza.Namespaces {
	if nss == nil {
		return stanza.DefaultNamespaces()
	}
	return nss
}

// Identity is the type and category of a node on the network.
type Identity struct {
	Category string
	Type     string
	Name     string
}

// Feature is a protocol supported by a node on the network.
type Feature struct {
	Var string
}

// Info is the response to a disco#info request.
type Info struct {
	Node       string
	Identities []Identity
	Features   []Feature
}

// HasFeature reports whether the feature with the given var is advertised.
func (i Info) HasFeature(v string) bool {
	for _, f := range i.Features {
		if f.Var == v {
			return true
		}
	}
	return false
}

// Element returns the disco#info query payload.
func (i Info) Element(nss stanza.Namespaces) *stanza.Element {
	nss = namespaces(nss)
	qs := nss.MustSchema(NSInfo, "query")
	q := qs.Set(qs.New(), "node", i.Node)

	is := nss.MustSchema(NSInfo, "identity")
	for _, ident := range i.Identities {
		e := is.New()
		is.Set(e, "category", ident.Category)
		is.Set(e, "type", ident.Type)
		is.Set(e, "name", ident.Name)
		q.AddChild(e)
	}
	fs := nss.MustSchema(NSInfo, "feature")
	for _, f := range i.Features {
		q.AddChild(fs.Set(fs.New(), "var", f.Var))
	}
	return q
}

// TokenReader implements xmlstream.Marshaler using the default field names.
func (i Info) TokenReader() xml.TokenReader {
	var payloads []xml.TokenReader
	for _, ident := range i.Identities {
		payloads = append(payloads, xmlstream.Wrap(nil, xml.StartElement{
			Name: xml.Name{Local: "identity"},
			Attr: attrs("category", ident.Category, "type", ident.Type, "name", ident.Name),
		}))
	}
	for _, f := range i.Features {
		payloads = append(payloads, xmlstream.Wrap(nil, xml.StartElement{
			Name: xml.Name{Local: "feature"},
			Attr: attrs("var", f.Var),
		}))
	}
	return xmlstream.Wrap(
		xmlstream.MultiReader(payloads...),
		xml.StartElement{Name: xml.Name{Space: NSInfo, Local: "query"}, Attr: attrs("node", i.Node)},
	)
}

// WriteXML implements xmlstream.WriterTo.
func (i Info) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, i.TokenReader())
}

// ParseInfo reads a disco#info payload from an IQ or the payload itself.
func ParseInfo(nss stanza.Namespaces, e *stanza.Element) (Info, error) {
	q := query(e, NSInfo)
	if q == nil {
		return Info{}, errNoQuery
	}
	nss = namespaces(nss)
	qs := nss.MustSchema(NSInfo, "query")
	is := nss.MustSchema(NSInfo, "identity")
	fs := nss.MustSchema(NSInfo, "feature")

	info := Info{Node: qs.Get(q, "node")}
	for _, c := range q.Children {
		if c.Name.Space != NSInfo {
			continue
		}
		switch c.Name.Local {
		case "identity":
			info.Identities = append(info.Identities, Identity{
				Category: is.Get(c, "category"),
				Type:     is.Get(c, "type"),
				Name:     is.Get(c, "name"),
			})
		case "feature":
			info.Features = append(info.Features, Feature{Var: fs.Get(c, "var")})
		}
	}
	return info, nil
}

// Item is an entity or node associated with another entity.
type Item struct {
	JID  string
	Name string
	Node string
}

// Items is the response to a disco#items request.
type Items struct {
	Node  string
	Items []Item
}

// Element returns the disco#items query payload.
func (i Items) Element(nss stanza.Namespaces) *stanza.Element {
	nss = namespaces(nss)
	qs := nss.MustSchema(NSItems, "query")
	q := qs.Set(qs.New(), "node", i.Node)
	s := nss.MustSchema(NSItems, "item")
	for _, item := range i.Items {
		e := s.New()
		s.Set(e, "jid", item.JID)
		s.Set(e, "name", item.Name)
		s.Set(e, "node", item.Node)
		q.AddChild(e)
	}
	return q
}

// TokenReader implements xmlstream.Marshaler using the default field names.
func (i Items) TokenReader() xml.TokenReader {
	var payloads []xml.TokenReader
	for _, item := range i.Items {
		payloads = append(payloads, xmlstream.Wrap(nil, xml.StartElement{
			Name: xml.Name{Local: "item"},
			Attr: attrs("jid", item.JID, "name", item.Name, "node", item.Node),
		}))
	}
	return xmlstream.Wrap(
		xmlstream.MultiReader(payloads...),
		xml.StartElement{Name: xml.Name{Space: NSItems, Local: "query"}, Attr: attrs("node", i.Node)},
	)
}

// WriteXML implements xmlstream.WriterTo.
func (i Items) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, i.TokenReader())
}

// ParseItems reads a disco#items payload from an IQ or the payload itself.
// Items without a JID are skipped.
func ParseItems(nss stanza.Namespaces, e *stanza.Element) (Items, error) {
	q := query(e, NSItems)
	if q == nil {
		return Items{}, errNoQuery
	}
	nss = namespaces(nss)
	items := Items{Node: nss.MustSchema(NSItems, "query").Get(q, "node")}
	s := nss.MustSchema(NSItems, "item")
	for _, c := range q.Children {
		if c.Name.Space != NSItems || c.Name.Local != "item" {
			continue
		}
		item := Item{
			JID:  s.Get(c, "jid"),
			Name: s.Get(c, "name"),
			Node: s.Get(c, "node"),
		}
		if item.JID == "" {
			continue
		}
		items.Items = append(items.Items, item)
	}
	return items, nil
}

// InfoRequest returns an IQ asking "to" for information about node (which may
// be empty).
func InfoRequest(to, node string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NSInfo).SetAttribute("node", node))
}

// ItemsRequest returns an IQ asking "to" for the items associated with node
// (which may be empty).
func ItemsRequest(to, node string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NSItems).SetAttribute("node", node))
}

func query(e *stanza.Element, space string) *stanza.Element {
	if e == nil {
		return nil
	}
	if e.Name.Space == space && e.Name.Local == "query" {
		return e
	}
	return e.Child(space, "query")
}

// attrs returns the non-empty attributes from a list of name, value pairs.
func attrs(pairs ...string) []xml.Attr {
	var a []xml.Attr
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			a = append(a, xml.Attr{Name: xml.Name{Local: pairs[i]}, Value: pairs[i+1]})
		}
	}
	return a
}
