// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package attr contains helpers for working with XML attribute lists.
package attr // import "mellium.im/jabber/internal/attr"

import (
	"encoding/xml"
)

// Get returns the index and value of the first un-namespaced attribute with the
// provided local name from a list of attributes, or -1 and an empty string if
// no such attribute exists.
func Get(attr []xml.Attr, local string) (int, string) {
	for i, a := range attr {
		if a.Name.Local == local && a.Name.Space == "" {
			return i, a.Value
		}
	}
	return -1, ""
}

// Set replaces the value of the first un-namespaced attribute with the provided
// local name or appends a new attribute if none exists.
// An empty value removes the attribute.
func Set(attr []xml.Attr, local, value string) []xml.Attr {
	idx, _ := Get(attr, local)
	switch {
	case idx == -1 && value == "":
		return attr
	case idx == -1:
		return append(attr, xml.Attr{Name: xml.Name{Local: local}, Value: value})
	case value == "":
		return append(attr[:idx:idx], attr[idx+1:]...)
	}
	attr[idx].Value = value
	return attr
}

// IsNSDecl reports whether a is a namespace declaration (xmlns or xmlns:prefix)
// rather than a real attribute.
func IsNSDecl(a xml.Attr) bool {
	return (a.Name.Space == "" && a.Name.Local == "xmlns") || a.Name.Space == "xmlns"
}
