// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"fmt"

	"mellium.im/jabber/internal/ns"
)

// Kind is the way a named field is stored in a payload element.
type Kind uint8

// A list of field kinds.
const (
	// Attr fields are stored in an un-namespaced attribute.
	Attr Kind = iota

	// ChildText fields are stored as the character data of a child element.
	ChildText

	// Repeated fields are stored as the character data of every child element
	// with the same name.
	Repeated

	// Flag fields are true when an (empty) child element is present.
	Flag

	// Text fields are stored as the character data of the payload itself.
	Text
)

// Rule describes how a field is extracted from and written to a payload.
// Name is the attribute or child element name; it is unused by Text rules.
type Rule struct {
	Kind Kind
	Name string
}

// Schema is a field table for one kind of payload element.
type Schema struct {
	Name   xml.Name
	Fields map[string]Rule
}

// New returns an empty payload element for the schema.
func (s Schema) New() *Element {
	return &Element{Name: s.Name}
}

func (s Schema) rule(field string) Rule {
	r, ok := s.Fields[field]
	if !ok {
		panic(fmt.Sprintf("stanza: no field %q in schema for {%s}%s", field, s.Name.Space, s.Name.Local))
	}
	return r
}

// Get returns the value of a field, or an empty string if it is not set.
// For Repeated fields the first value is returned and for Flag fields "true"
// or an empty string.
// Get panics if the field is not in the schema.
func (s Schema) Get(e *Element, field string) string {
	r := s.rule(field)
	switch r.Kind {
	case Attr:
		return e.Attribute(r.Name)
	case ChildText, Repeated:
		return e.ChildText(r.Name)
	case Flag:
		if e.Child("", r.Name) != nil {
			return "true"
		}
		return ""
	}
	return e.Text
}

// GetAll returns every value of a Repeated field.
// For other kinds it returns the single value if set.
func (s Schema) GetAll(e *Element, field string) []string {
	r := s.rule(field)
	if r.Kind != Repeated {
		if v := s.Get(e, field); v != "" {
			return []string{v}
		}
		return nil
	}
	var vals []string
	for _, c := range e.Children {
		if c.Name.Local == r.Name {
			vals = append(vals, c.Text)
		}
	}
	return vals
}

// Has reports whether a field is present on e.
func (s Schema) Has(e *Element, field string) bool {
	r := s.rule(field)
	switch r.Kind {
	case Attr:
		return e.Attribute(r.Name) != ""
	case Text:
		return e.Text != ""
	}
	return e.Child("", r.Name) != nil
}

// Set replaces the value of a field and returns e.
// An empty value removes the field (for Repeated fields, every value).
// Any non-empty value sets a Flag field.
// Set panics if the field is not in the schema.
func (s Schema) Set(e *Element, field, value string) *Element {
	r := s.rule(field)
	switch r.Kind {
	case Attr:
		return e.SetAttribute(r.Name, value)
	case Text:
		e.Text = value
		return e
	case Flag:
		e.RemoveChildren("", r.Name)
		if value != "" {
			e.AddChild(&Element{Name: xml.Name{Space: e.Name.Space, Local: r.Name}})
		}
		return e
	}
	e.RemoveChildren("", r.Name)
	if value != "" {
		e.AddChild(&Element{Name: xml.Name{Space: e.Name.Space, Local: r.Name}, Text: value})
	}
	return e
}

// Add appends a value to a Repeated field and returns e.
// For other kinds it behaves like Set.
func (s Schema) Add(e *Element, field, value string) *Element {
	r := s.rule(field)
	if r.Kind != Repeated {
		return s.Set(e, field, value)
	}
	return e.AddChild(&Element{Name: xml.Name{Space: e.Name.Space, Local: r.Name}, Text: value})
}

// Map returns every field that is set on e.
// Repeated fields contribute their first value.
func (s Schema) Map(e *Element) map[string]string {
	m := make(map[string]string, len(s.Fields))
	for field := range s.Fields {
		if v := s.Get(e, field); v != "" {
			m[field] = v
		}
	}
	return m
}

// Namespaces is a set of field tables keyed by payload element name.
// Each client owns its own table so that registering a schema on one does not
// affect any other.
type Namespaces map[xml.Name]Schema

// Register adds or replaces a schema.
func (n Namespaces) Register(s Schema) {
	n[s.Name] = s
}

// Schema returns the schema for the payload element with the given name.
func (n Namespaces) Schema(space, local string) (Schema, bool) {
	s, ok := n[xml.Name{Space: space, Local: local}]
	return s, ok
}

// Lookup returns the schema for e.
func (n Namespaces) Lookup(e *Element) (Schema, bool) {
	if e == nil {
		return Schema{}, false
	}
	s, ok := n[e.Name]
	return s, ok
}

// MustSchema is like Schema but panics if the schema is not registered.
func (n Namespaces) MustSchema(space, local string) Schema {
	s, ok := n.Schema(space, local)
	if !ok {
		panic(fmt.Sprintf("stanza: no schema registered for {%s}%s", space, local))
	}
	return s
}

// Copy returns a copy of the table that can be modified independently.
func (n Namespaces) Copy() Namespaces {
	c := make(Namespaces, len(n))
	for k, s := range n {
		fields := make(map[string]Rule, len(s.Fields))
		for f, r := range s.Fields {
			fields[f] = r
		}
		c[k] = Schema{Name: s.Name, Fields: fields}
	}
	return c
}

func childText(names ...string) map[string]Rule {
	m := make(map[string]Rule, len(names))
	for _, name := range names {
		m[name] = Rule{Kind: ChildText, Name: name}
	}
	return m
}

func attrs(names ...string) map[string]Rule {
	m := make(map[string]Rule, len(names))
	for _, name := range names {
		m[name] = Rule{Kind: Attr, Name: name}
	}
	return m
}

// DefaultNamespaces returns a new table containing the payloads used by the
// request helpers and default handlers.
func DefaultNamespaces() Namespaces {
	n := make(Namespaces)

	rosterItem := attrs("jid", "name", "subscription", "ask")
	rosterItem["group"] = Rule{Kind: Repeated, Name: "group"}
	n.Register(Schema{Name: xml.Name{Space: ns.Roster, Local: "item"}, Fields: rosterItem})

	n.Register(Schema{
		Name:   xml.Name{Space: ns.Version, Local: "query"},
		Fields: childText("name", "version", "os"),
	})
	n.Register(Schema{
		Name:   xml.Name{Space: ns.Time, Local: "query"},
		Fields: childText("utc", "tz", "display"),
	})
	n.Register(Schema{
		Name:   xml.Name{Space: ns.EntityTime, Local: "time"},
		Fields: childText("tzo", "utc"),
	})
	n.Register(Schema{
		Name: xml.Name{Space: ns.Last, Local: "query"},
		Fields: map[string]Rule{
			"seconds": {Kind: Attr, Name: "seconds"},
			"message": {Kind: Text},
		},
	})

	register := childText(
		"instructions", "username", "nick", "password", "name", "first", "last",
		"email", "address", "city", "state", "zip", "phone", "url", "date",
		"misc", "text", "key",
	)
	register["registered"] = Rule{Kind: Flag, Name: "registered"}
	register["remove"] = Rule{Kind: Flag, Name: "remove"}
	n.Register(Schema{Name: xml.Name{Space: ns.Register, Local: "query"}, Fields: register})

	n.Register(Schema{
		Name:   xml.Name{Space: ns.Auth, Local: "query"},
		Fields: childText("username", "password", "digest", "resource", "sequence", "token", "hash"),
	})

	n.Register(Schema{Name: xml.Name{Space: ns.DiscoInfo, Local: "query"}, Fields: attrs("node")})
	n.Register(Schema{Name: xml.Name{Space: ns.DiscoInfo, Local: "identity"}, Fields: attrs("category", "type", "name")})
	n.Register(Schema{Name: xml.Name{Space: ns.DiscoInfo, Local: "feature"}, Fields: attrs("var")})
	n.Register(Schema{Name: xml.Name{Space: ns.DiscoItems, Local: "query"}, Fields: attrs("node")})
	n.Register(Schema{Name: xml.Name{Space: ns.DiscoItems, Local: "item"}, Fields: attrs("jid", "name", "node")})

	browse := attrs("jid", "name", "category", "type")
	browse["ns"] = Rule{Kind: Repeated, Name: "ns"}
	n.Register(Schema{Name: xml.Name{Space: ns.Browse, Local: "item"}, Fields: browse})

	return n
}
