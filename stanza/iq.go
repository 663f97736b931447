// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
)

// IQType is the type of an IQ stanza.
// It should normally be one of the constants defined in this package.
type IQType string

const (
	// GetIQ is used to query another entity for information.
	GetIQ IQType = "get"

	// SetIQ is used to provide data to another entity, set new values, and
	// replace existing values.
	SetIQ IQType = "set"

	// ResultIQ is sent in response to a successful get or set IQ.
	ResultIQ IQType = "result"

	// ErrorIQ is sent to report that an error occurred during the delivery or
	// processing of a get or set IQ.
	ErrorIQ IQType = "error"
)

// MarshalText ensures that the zero value for IQType is marshaled to XML as a
// valid IQ get request.
// It satisfies the encoding.TextMarshaler interface for IQType.
func (t IQType) MarshalText() ([]byte, error) {
	if t == "" {
		t = GetIQ
	}
	return []byte(t), nil
}

// ExpectsReply reports whether an IQ of this type must be answered.
func (t IQType) ExpectsReply() bool {
	return t == GetIQ || t == SetIQ
}

// NewIQ returns an IQ stanza of the given type addressed to "to" (which may be
// empty) with the provided payloads as children.
func NewIQ(typ IQType, to string, payload ...*Element) *Element {
	if typ == "" {
		typ = GetIQ
	}
	iq := &Element{Name: xml.Name{Local: "iq"}}
	iq.SetType(string(typ)).SetTo(to)
	return iq.AddChild(payload...)
}

// IQTypeOf returns the type of an IQ stanza.
func IQTypeOf(e *Element) IQType {
	return IQType(e.Type())
}

// Query returns a new, empty payload element in the given namespace, named
// "query" as most IQ payloads are.
func Query(space string) *Element {
	return &Element{Name: xml.Name{Space: space, Local: "query"}}
}
