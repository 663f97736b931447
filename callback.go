// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

// SetCallback binds h to every stanza with the given top level tag, replacing
// any existing handler.
// Replacing the "presence", "message", or "iq" handler disables the type based
// routing (and presence tracking) that the default handlers perform.
// A nil handler removes the binding, after which stanzas with that tag are
// dropped.
func (c *Client) SetCallback(tag string, h mux.Handler) {
	c.mux.SetTag(tag, h)
}

// SetPresenceCallback binds h to presence stanzas of the given type.
// A nil handler removes the binding.
func (c *Client) SetPresenceCallback(typ stanza.PresenceType, h mux.Handler) {
	c.mux.SetPresence(typ, h)
}

// SetMessageCallback binds h to message stanzas of the given type.
// A nil handler removes the binding.
func (c *Client) SetMessageCallback(typ stanza.MessageType, h mux.Handler) {
	c.mux.SetMessage(typ, h)
}

// SetIQCallback binds h to IQ stanzas whose payload is in the namespace space
// and that have the given type.
// If typ is empty h receives every IQ in space regardless of type.
// A nil handler removes the binding.
func (c *Client) SetIQCallback(space string, typ stanza.IQType, h mux.Handler) {
	c.mux.SetIQ(space, typ, h)
}

// SetXPathCallback binds h under name to every stanza matching the XPath
// expression expr.
// Matching handlers run before the tag handler, in the order they were bound.
// Payload namespaces are matched with namespace-uri() or an xmlns attribute;
// see stanza.Path.
func (c *Client) SetXPathCallback(expr, name string, h mux.Handler) error {
	return c.mux.SetXPath(expr, name, h)
}

// RemoveXPathCallbacks removes every handler bound to expr.
func (c *Client) RemoveXPathCallbacks(expr string) {
	c.mux.RemoveXPath(expr)
}
