// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"strings"

	"golang.org/x/text/language"
	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/attr"
	"mellium.im/jabber/internal/ns"
)

// Is tests whether name is a valid stanza based on name and space.
// Stanzas without a namespace are accepted since they inherit the stream
// namespace.
func Is(name xml.Name) bool {
	return (name.Local == "iq" || name.Local == "message" || name.Local == "presence") &&
		(name.Space == "" || name.Space == ns.Client)
}

// Element is a node in an XML tree.
// Top level elements are stanzas, their children are payloads and extensions.
//
// Character data directly inside an element is collected into Text.
// Mixed content is not preserved in order; whitespace between child elements
// is dropped when decoding.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Text     string
	Children []*Element
}

// NewElement returns an element with the provided name and attributes.
func NewElement(name xml.Name, attr ...xml.Attr) *Element {
	return &Element{Name: name, Attr: attr}
}

// Tag returns the local name of the element (eg. "iq", "message").
func (e *Element) Tag() string {
	return e.Name.Local
}

// Attribute returns the value of the un-namespaced attribute with the given
// local name or an empty string.
func (e *Element) Attribute(local string) string {
	_, v := attr.Get(e.Attr, local)
	return v
}

// SetAttribute sets (or removes, if value is empty) an un-namespaced
// attribute and returns the element so that calls can be chained.
func (e *Element) SetAttribute(local, value string) *Element {
	e.Attr = attr.Set(e.Attr, local, value)
	return e
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.Attribute("id") }

// SetID sets the id attribute.
func (e *Element) SetID(id string) *Element { return e.SetAttribute("id", id) }

// To returns the to attribute.
func (e *Element) To() string { return e.Attribute("to") }

// SetTo sets the to attribute.
func (e *Element) SetTo(to string) *Element { return e.SetAttribute("to", to) }

// From returns the from attribute.
func (e *Element) From() string { return e.Attribute("from") }

// SetFrom sets the from attribute.
func (e *Element) SetFrom(from string) *Element { return e.SetAttribute("from", from) }

// Type returns the type attribute as it appears on the wire.
func (e *Element) Type() string { return e.Attribute("type") }

// SetType sets the type attribute.
func (e *Element) SetType(typ string) *Element { return e.SetAttribute("type", typ) }

// Lang returns the xml:lang attribute parsed as a language tag.
// If the attribute is missing or invalid language.Und is returned.
func (e *Element) Lang() language.Tag {
	for _, a := range e.Attr {
		if a.Name.Space == ns.XML && a.Name.Local == "lang" {
			tag, err := language.Parse(a.Value)
			if err != nil {
				return language.Und
			}
			return tag
		}
	}
	return language.Und
}

// SetLang sets the xml:lang attribute.
// Setting language.Und removes it.
func (e *Element) SetLang(tag language.Tag) *Element {
	for i, a := range e.Attr {
		if a.Name.Space == ns.XML && a.Name.Local == "lang" {
			e.Attr = append(e.Attr[:i:i], e.Attr[i+1:]...)
			break
		}
	}
	if tag != language.Und {
		e.Attr = append(e.Attr, xml.Attr{
			Name:  xml.Name{Space: ns.XML, Local: "lang"},
			Value: tag.String(),
		})
	}
	return e
}

// Child returns the first child element with the given local name.
// If space is not empty the namespace must match as well.
func (e *Element) Child(space, local string) *Element {
	for _, c := range e.Children {
		if c.Name.Local == local && (space == "" || c.Name.Space == space) {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first child with the given local name or
// an empty string.
func (e *Element) ChildText(local string) string {
	c := e.Child("", local)
	if c == nil {
		return ""
	}
	return c.Text
}

// SetChildText replaces the text of the first child with the given local name,
// creating the child if it does not exist.
// An empty text removes the child.
func (e *Element) SetChildText(local, text string) *Element {
	for i, c := range e.Children {
		if c.Name.Local != local {
			continue
		}
		if text == "" {
			e.Children = append(e.Children[:i:i], e.Children[i+1:]...)
			return e
		}
		c.Text = text
		return e
	}
	if text != "" {
		e.Children = append(e.Children, &Element{Name: xml.Name{Local: local}, Text: text})
	}
	return e
}

// AddChild appends children to the element and returns the element.
func (e *Element) AddChild(c ...*Element) *Element {
	e.Children = append(e.Children, c...)
	return e
}

// RemoveChildren removes every child with the given local name (and
// namespace, if space is not empty).
func (e *Element) RemoveChildren(space, local string) *Element {
	kept := e.Children[:0]
	for _, c := range e.Children {
		if c.Name.Local == local && (space == "" || c.Name.Space == space) {
			continue
		}
		kept = append(kept, c)
	}
	e.Children = kept
	return e
}

// Payload returns the first child element, which for IQ stanzas is the query
// the request or response is about.
// If the element has no children, Payload returns nil.
func (e *Element) Payload() *Element {
	if len(e.Children) == 0 {
		return nil
	}
	return e.Children[0]
}

// HasX reports whether any child element is qualified by the given namespace.
func (e *Element) HasX(space string) bool {
	for _, c := range e.Children {
		if c.Name.Space == space {
			return true
		}
	}
	return false
}

// GetX returns every child element qualified by the given namespace.
func (e *Element) GetX(space string) []*Element {
	var x []*Element
	for _, c := range e.Children {
		if c.Name.Space == space {
			x = append(x, c)
		}
	}
	return x
}

// InnerText returns the concatenated text of the element and all of its
// descendants in document order.
func (e *Element) InnerText() string {
	if len(e.Children) == 0 {
		return e.Text
	}
	var b strings.Builder
	e.innerText(&b)
	return b.String()
}

func (e *Element) innerText(b *strings.Builder) {
	b.WriteString(e.Text)
	for _, c := range e.Children {
		c.innerText(b)
	}
}

// Copy returns a deep copy of the element.
func (e *Element) Copy() *Element {
	if e == nil {
		return nil
	}
	c := &Element{
		Name: e.Name,
		Text: e.Text,
	}
	if e.Attr != nil {
		c.Attr = append([]xml.Attr(nil), e.Attr...)
	}
	if e.Children != nil {
		c.Children = make([]*Element, 0, len(e.Children))
		for _, child := range e.Children {
			c.Children = append(c.Children, child.Copy())
		}
	}
	return c
}

// Reply returns a new stanza addressed to the sender of e, with the to and
// from attributes swapped and the id copied.
//
// If typ is empty, IQs default to "result" and messages keep the type of the
// original message (and its thread, if any).
func (e *Element) Reply(typ string) *Element {
	r := &Element{Name: xml.Name{Local: e.Name.Local}}
	r.SetID(e.ID()).SetTo(e.From()).SetFrom(e.To())
	switch e.Name.Local {
	case "iq":
		if typ == "" {
			typ = string(ResultIQ)
		}
	case "message":
		if typ == "" {
			typ = e.Type()
		}
		if thread := e.Child("", "thread"); thread != nil {
			r.AddChild(thread.Copy())
		}
	}
	return r.SetType(typ)
}

// TokenReader satisfies the xmlstream.Marshaler interface.
// Children in the same namespace as their parent are encoded without a
// redundant xmlns attribute.
func (e *Element) TokenReader() xml.TokenReader {
	return e.tokenReader("")
}

func (e *Element) tokenReader(parent string) xml.TokenReader {
	start := xml.StartElement{Name: e.Name, Attr: e.Attr}
	if start.Name.Space == parent {
		start.Name.Space = ""
	}
	inner := make([]xml.TokenReader, 0, len(e.Children)+1)
	if e.Text != "" {
		inner = append(inner, xmlstream.Token(xml.CharData(e.Text)))
	}
	space := e.Name.Space
	if space == "" {
		space = parent
	}
	for _, c := range e.Children {
		inner = append(inner, c.tokenReader(space))
	}
	return xmlstream.Wrap(xmlstream.MultiReader(inner...), start)
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (e *Element) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, e.TokenReader())
}

// MarshalXML satisfies the xml.Marshaler interface.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	_, err := e.WriteXML(enc)
	if err != nil {
		return err
	}
	return enc.Flush()
}

// XML returns the element encoded as a string.
// If the element cannot be encoded an empty string is returned.
func (e *Element) XML() string {
	var b strings.Builder
	enc := xml.NewEncoder(&b)
	if _, err := e.WriteXML(enc); err != nil {
		return ""
	}
	if err := enc.Flush(); err != nil {
		return ""
	}
	return b.String()
}

// String returns the same output as XML.
func (e *Element) String() string {
	return e.XML()
}
