// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
)

// PresenceType is the type of a presence stanza.
// It should normally be one of the constants defined in this package.
type PresenceType string

const (
	// AvailablePresence is a special case that signals that the entity is
	// available for communication.
	// It is never written on the wire: available presence has no type
	// attribute, and PresenceTypeOf reports a missing type as AvailablePresence.
	AvailablePresence PresenceType = "available"

	// ErrorPresence indicates that an error has occurred regarding processing of
	// a previously sent presence stanza; if the presence stanza is of type
	// "error", it MUST include an <error/> child element
	ErrorPresence PresenceType = "error"

	// ProbePresence is a request for an entity's current presence. It should
	// generally only be generated and sent by servers on behalf of a user.
	ProbePresence PresenceType = "probe"

	// SubscribePresence is sent when the sender wishes to subscribe to the
	// recipient's presence.
	SubscribePresence PresenceType = "subscribe"

	// SubscribedPresence indicates that the sender has allowed the recipient to
	// receive future presence broadcasts.
	SubscribedPresence PresenceType = "subscribed"

	// UnavailablePresence indicates that the sender is no longer available for
	// communication.
	UnavailablePresence PresenceType = "unavailable"

	// UnsubscribePresence indicates that the sender is unsubscribing from the
	// receiver's presence.
	UnsubscribePresence PresenceType = "unsubscribe"

	// UnsubscribedPresence indicates that the subscription request has been
	// denied, or a previously granted subscription has been revoked.
	UnsubscribedPresence PresenceType = "unsubscribed"
)

// NewPresence returns a presence stanza of the given type addressed to "to"
// (which may be empty for broadcast presence).
func NewPresence(typ PresenceType, to string) *Element {
	p := &Element{Name: xml.Name{Local: "presence"}}
	if typ != AvailablePresence {
		p.SetType(string(typ))
	}
	return p.SetTo(to)
}

// PresenceTypeOf returns the type of a presence stanza, reporting a missing
// type attribute as AvailablePresence.
func PresenceTypeOf(e *Element) PresenceType {
	typ := e.Type()
	if typ == "" {
		return AvailablePresence
	}
	return PresenceType(typ)
}
