// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"mellium.im/jabber/correlate"
	"mellium.im/jabber/disco"
	"mellium.im/jabber/last"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/ping"
	"mellium.im/jabber/presence"
	"mellium.im/jabber/roster"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/transport"
	"mellium.im/jabber/version"
	"mellium.im/jabber/xmlrpc"
	"mellium.im/jabber/xtime"
)

// Client dispatches stanzas read from a transport and correlates the replies
// to requests it sends.
//
// The pump (Process, Serve, and the blocking request methods) must only be
// driven from one goroutine at a time, although handlers may start nested
// waits.
// All other methods are safe for concurrent use.
type Client struct {
	t       transport.Transport
	logger  *slog.Logger
	sid     string
	timeout time.Duration
	poll    time.Duration
	update  func()
	lang    language.Tag

	nss      stanza.Namespaces
	mux      *mux.Registry
	ids      *correlate.Registry
	presence *presence.DB
	roster   *roster.DB
	rpc      *xmlrpc.Mux

	trackPresence bool
	trackRoster   bool
}

// New returns a client that sends and receives on t.
//
// The returned client has handlers installed for presence subscriptions,
// time, version, last activity, ping, roster pushes, XML-RPC, and service
// discovery.
// Each may be replaced using the Set methods.
func New(t transport.Transport, opts ...Option) *Client {
	o := getOpts(opts...)

	var presenceOpts []presence.Option
	if o.lexical {
		presenceOpts = append(presenceOpts, presence.LexicalPriority())
	}
	c := &Client{
		t:             t,
		logger:        o.logger,
		sid:           o.sid,
		timeout:       o.timeout,
		poll:          o.poll,
		update:        o.update,
		lang:          o.lang,
		nss:           o.nss,
		mux:           mux.New(),
		ids:           correlate.New(o.prefix),
		presence:      presence.New(presenceOpts...),
		roster:        roster.NewDB(),
		rpc:           xmlrpc.NewMux(),
		trackPresence: !o.noPresence,
		trackRoster:   !o.noRoster,
	}
	for name, f := range o.methods {
		c.rpc.Handle(name, f)
	}

	c.mux.SetTag("presence", mux.HandlerFunc(c.handlePresence))
	c.mux.SetTag("message", mux.HandlerFunc(c.handleMessage))
	c.mux.SetTag("iq", mux.HandlerFunc(c.handleIQ))
	c.installSubscriptions(o.subs)

	defaults := []mux.Option{
		xtime.Handle(xtime.Handler{Namespaces: c.nss, Send: c.reply}),
		version.Handle(version.Handler{Query: o.software, Namespaces: c.nss, Send: c.reply}),
		last.Handle(last.Handler{Idle: c.idle, Namespaces: c.nss, Send: c.reply}),
		ping.Handle(ping.Handler{Send: c.reply}),
		mux.IQFunc(roster.NS, stanza.SetIQ, c.handleRosterPush),
		mux.IQFunc(xmlrpc.NS, stanza.SetIQ, c.handleRPC),
	}
	for _, opt := range defaults {
		opt(c.mux)
	}
	for _, opt := range o.handlers {
		opt(c.mux)
	}
	// Disco is bound last so that it advertises every namespace bound above.
	disco.Handle(disco.Handler{
		Identities: o.identities,
		Namespaces: c.nss,
		Send:       c.reply,
	})(c.mux)

	return c
}

// SessionID returns the transport session the client sends on.
func (c *Client) SessionID() string {
	return c.sid
}

// Namespaces returns the field tables used by the client.
// Registering a schema in the returned table changes how this client builds
// and parses payloads.
func (c *Client) Namespaces() stanza.Namespaces {
	return c.nss
}

// Presence returns the presence database.
func (c *Client) Presence() *presence.DB {
	return c.presence
}

// Roster returns the roster database.
func (c *Client) Roster() *roster.DB {
	return c.roster
}

// IDs returns the request ID registry.
func (c *Client) IDs() *correlate.Registry {
	return c.ids
}

// Mux returns the handler registry.
func (c *Client) Mux() *mux.Registry {
	return c.mux
}

// RPC returns the XML-RPC method table.
func (c *Client) RPC() *xmlrpc.Mux {
	return c.rpc
}

func (c *Client) idle(sid string) time.Duration {
	at := c.t.LastActivity(sid)
	if at.IsZero() {
		return 0
	}
	return time.Since(at)
}
