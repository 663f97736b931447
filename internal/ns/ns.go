// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package ns provides namespace constants that are used by the jabber package
// and other internal packages.
package ns // import "mellium.im/jabber/internal/ns"

// List of commonly used namespaces.
const (
	Client    = "jabber:client"
	SASL      = "urn:ietf:params:xml:ns:xmpp-sasl"
	Stanza    = "urn:ietf:params:xml:ns:xmpp-stanzas"
	Stream    = "http://etherx.jabber.org/streams"
	StreamErr = "urn:ietf:params:xml:ns:xmpp-streams"
	XML       = "http://www.w3.org/XML/1998/namespace"

	Auth       = "jabber:iq:auth"
	Browse     = "jabber:iq:browse"
	DiscoInfo  = "http://jabber.org/protocol/disco#info"
	DiscoItems = "http://jabber.org/protocol/disco#items"
	Last       = "jabber:iq:last"
	Ping       = "urn:xmpp:ping"
	Register   = "jabber:iq:register"
	Roster     = "jabber:iq:roster"
	RPC        = "jabber:iq:rpc"
	Time       = "jabber:iq:time"
	EntityTime = "urn:xmpp:time"
	Version    = "jabber:iq:version"
)
