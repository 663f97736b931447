// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"errors"
)

// Errors returned by the client.
// Protocol errors sent by the remote entity are returned as stanza.Error and
// XML-RPC faults as xmlrpc.Fault.
var (
	// ErrTimeout is returned when a reply does not arrive before the deadline.
	// The request is marked as timed out so that a late reply is discarded.
	ErrTimeout = errors.New("jabber: timed out waiting for reply")

	// ErrFatal wraps the error reported by the transport when the stream can no
	// longer be used.
	ErrFatal = errors.New("jabber: fatal transport error")

	// ErrUnknownID is returned when waiting for an ID that is not being tracked.
	ErrUnknownID = errors.New("jabber: unknown request id")
)
