// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"mellium.im/jabber/stanza"
)

// BrowseItem is an entity in a jabber:iq:browse result.
// Results may nest further entities the browsed entity knows about.
type BrowseItem struct {
	JID        string
	Name       string
	Category   string
	Type       string
	Namespaces []string
	Items      []BrowseItem
}

// BrowseRequest returns an IQ browsing "to".
func BrowseRequest(to string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.Query(NSBrowse))
}

// ParseBrowse reads a browse result from an IQ or the payload itself.
//
// Older servers name the result element after the category of the entity
// (eg. <service/> or <user/>) instead of using the category attribute, so an
// element other than "item" or "query" supplies the category when it is
// missing.
func ParseBrowse(nss stanza.Namespaces, e *stanza.Element) (BrowseItem, error) {
	if e == nil {
		return BrowseItem{}, errNoQuery
	}
	p := e
	if p.Name.Space != NSBrowse {
		p = nil
		for _, c := range e.Children {
			if c.Name.Space == NSBrowse {
				p = c
				break
			}
		}
		if p == nil {
			return BrowseItem{}, errNoQuery
		}
	}
	return parseBrowseItem(namespaces(nss).MustSchema(NSBrowse, "item"), p), nil
}

func parseBrowseItem(s stanza.Schema, e *stanza.Element) BrowseItem {
	item := BrowseItem{
		JID:        s.Get(e, "jid"),
		Name:       s.Get(e, "name"),
		Category:   s.Get(e, "category"),
		Type:       s.Get(e, "type"),
		Namespaces: s.GetAll(e, "ns"),
	}
	if item.Category == "" && e.Name.Local != "item" && e.Name.Local != "query" {
		item.Category = e.Name.Local
	}
	for _, c := range e.Children {
		if c.Name.Space != NSBrowse || c.Name.Local == "ns" {
			continue
		}
		item.Items = append(item.Items, parseBrowseItem(s, c))
	}
	return item
}

// Element returns the browse item as a payload.
func (b BrowseItem) Element(nss stanza.Namespaces) *stanza.Element {
	s := namespaces(nss).MustSchema(NSBrowse, "item")
	e := s.New()
	s.Set(e, "jid", b.JID)
	s.Set(e, "name", b.Name)
	s.Set(e, "category", b.Category)
	s.Set(e, "type", b.Type)
	for _, space := range b.Namespaces {
		s.Add(e, "ns", space)
	}
	for _, item := range b.Items {
		e.AddChild(item.Element(nss))
	}
	return e
}
