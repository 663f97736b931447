// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package transport defines the contract between a client and the stream its
// stanzas travel over, and provides an implementation on top of an already
// negotiated XML stream.
package transport // import "mellium.im/jabber/transport"

import (
	"encoding/xml"
	"time"
)

// Status is the result of a call to Process.
type Status int

// A list of possible statuses.
const (
	// NoData indicates that the timeout elapsed without any input.
	NoData Status = iota

	// DataReceived indicates that at least one top level element was read and
	// dispatched.
	DataReceived

	// Fatal indicates that the stream is no longer usable.
	Fatal
)

// String returns a name for the status.
func (s Status) String() string {
	switch s {
	case NoData:
		return "no data"
	case DataReceived:
		return "data received"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Dispatcher is called by a transport with each top level element it reads.
//
// The token reader passed to DispatchTokens starts with the start element of
// the top level element and ends with its end element.
type Dispatcher interface {
	DispatchTokens(sid string, r xml.TokenReader) error
}

// Transport is the collaborator that carries stanzas for one or more sessions.
type Transport interface {
	// Send writes the element read from r on the session identified by sid.
	Send(sid string, r xml.TokenReader) error

	// Process reads input for up to timeout and passes each top level element
	// to d.
	// It returns Fatal and a non-nil error if the stream can no longer be used.
	Process(timeout time.Duration, d Dispatcher) (Status, error)

	// IgnoreActivity controls whether sends on the session count as activity.
	// It is used while sending automatic replies so that they do not reset the
	// idle time reported by LastActivity.
	IgnoreActivity(sid string, ignore bool)

	// LastActivity returns the time of the last send that counted as activity.
	LastActivity(sid string) time.Time
}
