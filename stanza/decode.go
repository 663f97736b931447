// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"mellium.im/jabber/internal/attr"
)

// ErrNoElement is returned by Decode when the token stream ends before any
// start element is read.
var ErrNoElement = errors.New("stanza: no start element in token stream")

// Decode reads the next element from r, skipping any tokens (whitespace,
// comments, processing instructions) that precede its start element.
func Decode(r xml.TokenReader) (*Element, error) {
	for {
		tok, err := r.Token()
		if err == io.EOF && tok == nil {
			return nil, ErrNoElement
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return DecodeElement(r, &start)
		}
		if err == io.EOF {
			return nil, ErrNoElement
		}
	}
}

// DecodeElement builds an element from start, reading its children from r up
// to and including the end element that matches start.
// A reader that only yields the inner tokens of the element (such as one
// returned by xmlstream.Inner) and then io.EOF is also accepted.
func DecodeElement(r xml.TokenReader, start *xml.StartElement) (*Element, error) {
	root := startElement(*start)
	stack := []*Element{root}

	for len(stack) > 0 {
		tok, err := r.Token()
		if tok == nil && err != nil {
			if err == io.EOF && len(stack) == 1 {
				closeElement(root)
				return root, nil
			}
			if err == io.EOF {
				return nil, fmt.Errorf("stanza: unexpected EOF decoding <%s>", root.Name.Local)
			}
			return nil, err
		}

		cur := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			child := startElement(t)
			cur.Children = append(cur.Children, child)
			stack = append(stack, child)
		case xml.CharData:
			cur.Text += string(t)
		case xml.EndElement:
			closeElement(cur)
			stack = stack[:len(stack)-1]
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == io.EOF && len(stack) == 1 {
			closeElement(root)
			return root, nil
		}
		if err == io.EOF && len(stack) > 0 {
			return nil, fmt.Errorf("stanza: unexpected EOF decoding <%s>", root.Name.Local)
		}
	}
	return root, nil
}

func closeElement(e *Element) {
	if len(e.Children) > 0 && strings.TrimSpace(e.Text) == "" {
		e.Text = ""
	}
}

func startElement(start xml.StartElement) *Element {
	e := &Element{Name: start.Name}
	for _, a := range start.Attr {
		if attr.IsNSDecl(a) {
			continue
		}
		e.Attr = append(e.Attr, a)
	}
	return e
}

// Parse decodes the first element in s.
func Parse(s string) (*Element, error) {
	return Decode(xml.NewDecoder(strings.NewReader(s)))
}

// MustParse is like Parse but panics if s cannot be decoded.
// It simplifies safe initialization of elements from known-good constant
// strings.
func MustParse(s string) *Element {
	e, err := Parse(s)
	if err != nil {
		panic("stanza: MustParse(" + s + "): " + err.Error())
	}
	return e
}
