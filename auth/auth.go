// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package auth builds and parses the payloads used to authenticate a session.
//
// Two protocols are supported: the legacy jabber:iq:auth protocol (XEP-0078)
// with plaintext or digest passwords, and the XMPP profile of SASL from RFC
// 6120 §6 whose mechanisms are provided by mellium.im/sasl.
package auth // import "mellium.im/jabber/auth"

import (
	/* #nosec */
	"crypto/sha1"
	"encoding/hex"
	"errors"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// Namespaces used by this package, provided as a convenience.
const (
	NS     = ns.Auth
	NSSASL = ns.SASL
)

// ErrNoQuery is returned when parsing a stanza without an auth payload.
var ErrNoQuery = errors.New("auth: no query payload")

// Credentials are used to log in with jabber:iq:auth.
type Credentials struct {
	Username string
	Password string
	Resource string
}

// Methods are the authentication methods offered by a server in response to a
// jabber:iq:auth get request.
type Methods struct {
	Plain    bool
	Digest   bool
	Resource bool
}

func schema(nss stanza.Namespaces) stanza.Schema {
	if nss == nil {
		nss = stanza.DefaultNamespaces()
	}
	return nss.MustSchema(NS, "query")
}

// Digest returns the digest of a password as defined by XEP-0078: the hex
// encoded SHA-1 hash of the stream ID followed by the password.
func Digest(streamID, password string) string {
	/* #nosec */
	sum := sha1.Sum([]byte(streamID + password))
	return hex.EncodeToString(sum[:])
}

// Request returns an IQ asking "to" which authentication methods are
// available for username.
func Request(nss stanza.Namespaces, to, username string) *stanza.Element {
	s := schema(nss)
	return stanza.NewIQ(stanza.GetIQ, to, s.Set(s.New(), "username", username))
}

// Query returns an IQ logging in with c.
// If digest is true and the stream ID is known the password is sent as a
// digest, otherwise it is sent in plain text.
func Query(nss stanza.Namespaces, to string, c Credentials, streamID string, digest bool) *stanza.Element {
	s := schema(nss)
	q := s.New()
	s.Set(q, "username", c.Username)
	if digest && streamID != "" {
		s.Set(q, "digest", Digest(streamID, c.Password))
	} else {
		s.Set(q, "password", c.Password)
	}
	s.Set(q, "resource", c.Resource)
	return stanza.NewIQ(stanza.SetIQ, to, q)
}

// ParseMethods reads the methods offered in a jabber:iq:auth result.
func ParseMethods(nss stanza.Namespaces, e *stanza.Element) (Methods, error) {
	if e == nil {
		return Methods{}, ErrNoQuery
	}
	q := e
	if e.Name.Space != NS {
		if q = e.Child(NS, "query"); q == nil {
			return Methods{}, ErrNoQuery
		}
	}
	s := schema(nss)
	return Methods{
		Plain:    s.Has(q, "password"),
		Digest:   s.Has(q, "digest"),
		Resource: s.Has(q, "resource"),
	}, nil
}
