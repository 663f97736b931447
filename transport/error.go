// Copyright 2015 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/xml"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// A list of stream error conditions defined in RFC 6120 §4.9.3 that a client
// is likely to see.
var (
	BadFormat             = StreamError{Condition: "bad-format"}
	Conflict              = StreamError{Condition: "conflict"}
	ConnectionTimeout     = StreamError{Condition: "connection-timeout"}
	HostGone              = StreamError{Condition: "host-gone"}
	InternalServerError   = StreamError{Condition: "internal-server-error"}
	NotAuthorized         = StreamError{Condition: "not-authorized"}
	NotWellFormed         = StreamError{Condition: "not-well-formed"}
	PolicyViolation       = StreamError{Condition: "policy-violation"}
	ResourceConstraint    = StreamError{Condition: "resource-constraint"}
	SystemShutdown        = StreamError{Condition: "system-shutdown"}
	UndefinedCondition    = StreamError{Condition: "undefined-condition"}
	UnsupportedStanzaType = StreamError{Condition: "unsupported-stanza-type"}
)

// StreamError is an error sent by the remote end before it closes the stream.
type StreamError struct {
	Condition string
	Text      string
}

// Error satisfies the error interface and returns the condition, followed by
// the text if any.
func (e StreamError) Error() string {
	if e.Text == "" {
		return e.Condition
	}
	return e.Condition + ": " + e.Text
}

// Is reports whether target is a stream error with the same condition.
func (e StreamError) Is(target error) bool {
	t, ok := target.(StreamError)
	return ok && t.Condition == e.Condition
}

// Element returns the error as a <stream:error/> element.
func (e StreamError) Element() *stanza.Element {
	el := stanza.NewElement(xml.Name{Space: ns.Stream, Local: "error"})
	el.AddChild(stanza.NewElement(xml.Name{Space: ns.StreamErr, Local: e.Condition}))
	if e.Text != "" {
		el.AddChild(&stanza.Element{Name: xml.Name{Space: ns.StreamErr, Local: "text"}, Text: e.Text})
	}
	return el
}

// ParseStreamError reads a <stream:error/> element.
func ParseStreamError(el *stanza.Element) StreamError {
	var e StreamError
	for _, c := range el.Children {
		if c.Name.Space != ns.StreamErr {
			continue
		}
		if c.Name.Local == "text" {
			e.Text = c.Text
			continue
		}
		if e.Condition == "" {
			e.Condition = c.Name.Local
		}
	}
	if e.Condition == "" {
		e.Condition = UndefinedCondition.Condition
	}
	return e
}
