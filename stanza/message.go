// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
)

// MessageType is the type of a message stanza.
// It should normally be one of the constants defined in this package.
type MessageType string

const (
	// NormalMessage is a standalone message that is sent outside the context of
	// a one-to-one conversation or groupchat, and to which it is expected that
	// the recipient will reply.
	// A message without a type attribute is a normal message.
	NormalMessage MessageType = "normal"

	// ChatMessage represents a message sent in the context of a one-to-one chat
	// session.
	ChatMessage MessageType = "chat"

	// ErrorMessage is generated by an entity that experiences an error when
	// processing a message received from another entity.
	ErrorMessage MessageType = "error"

	// GroupChatMessage is sent in the context of a multi-user chat environment.
	GroupChatMessage MessageType = "groupchat"

	// HeadlineMessage is used to provide an alert, a notification, or other
	// transient information to which no reply is expected.
	HeadlineMessage MessageType = "headline"
)

// NewMessage returns a message stanza of the given type addressed to "to".
func NewMessage(typ MessageType, to string) *Element {
	m := &Element{Name: xml.Name{Local: "message"}}
	if typ != NormalMessage {
		m.SetType(string(typ))
	}
	return m.SetTo(to)
}

// MessageTypeOf returns the type of a message stanza, reporting a missing
// type attribute as NormalMessage.
func MessageTypeOf(e *Element) MessageType {
	typ := e.Type()
	if typ == "" {
		return NormalMessage
	}
	return MessageType(typ)
}
