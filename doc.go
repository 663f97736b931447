// Copyright 2014 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package jabber is a client runtime for the Jabber/XMPP protocol.
//
// A Client sits on top of a transport that carries already negotiated
// streams.
// It turns each inbound stanza into dispatched events, correlates outbound
// requests with their replies, keeps track of the presence and roster of
// contacts, and answers the requests every client is expected to answer
// (software version, time, last activity, ping, service discovery, and
// XML-RPC method calls).
//
// # Dispatch
//
// Every inbound stanza is first matched against outstanding requests by its
// tag and ID.
// A reply to an outstanding request is consumed by the request and is never
// seen by any handler.
// All other stanzas are passed to every matching XPath handler in the order
// they were registered, and then to the handler bound to their tag.
// The built-in presence, message, and IQ tag handlers look up a second handler
// by presence type, message type, or IQ payload namespace and type.
// IQ requests that nobody handles are answered with a service-unavailable
// error.
//
// # Requests
//
// Stanzas are sent in one of three modes.
// SendAndReceiveWithID blocks until the reply arrives or the wait times out.
// SendWithID returns as soon as the stanza is sent; the reply is collected
// later with WaitForID, ReceivedID, and GetID.
// SendPassThrough adds an ID but does not track it, so the reply is dispatched
// to the handlers like any other stanza.
//
// Waiting is done by pumping the transport, so stanzas unrelated to the
// request are dispatched while the client waits, and handlers may themselves
// send requests and wait for their replies.
// The pump must only be driven from one goroutine at a time.
package jabber // import "mellium.im/jabber"
