// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"mellium.im/jabber/correlate"
	"mellium.im/jabber/disco"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/version"
	"mellium.im/jabber/xmlrpc"
)

// Defaults used when no option overrides them.
const (
	DefaultTimeout      = 300 * time.Second
	DefaultPollInterval = time.Second
)

// SubscriptionPolicy controls how the client answers subscription requests.
type SubscriptionPolicy uint8

// A list of possible policies.
const (
	// Accept approves every subscription request and acknowledges every
	// unsubscription.
	Accept SubscriptionPolicy = iota

	// Deny refuses every subscription request and acknowledges every
	// unsubscription.
	Deny

	// Manual leaves answering to a handler bound by the application.
	Manual
)

// String returns the name of the policy.
func (p SubscriptionPolicy) String() string {
	switch p {
	case Accept:
		return "accept"
	case Deny:
		return "deny"
	case Manual:
		return "manual"
	}
	return "unknown"
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	sid         string
	prefix      string
	timeout     time.Duration
	poll        time.Duration
	update      func()
	nss         stanza.Namespaces
	software    version.Query
	identities  []disco.Identity
	identitySet bool
	subs        SubscriptionPolicy
	noPresence  bool
	noRoster    bool
	lexical     bool
	lang        language.Tag
	methods     map[string]xmlrpc.MethodFunc
	handlers    []mux.Option
}

func getOpts(o ...Option) options {
	res := options{
		prefix:  correlate.DefaultPrefix,
		timeout: DefaultTimeout,
		poll:    DefaultPollInterval,
		software: version.Query{
			Name: "mellium.im/jabber",
		},
		identities: []disco.Identity{{Category: "client", Type: "pc"}},
		lang:       language.Und,
		methods:    make(map[string]xmlrpc.MethodFunc),
	}
	for _, f := range o {
		f(&res)
	}

	// Log to /dev/null by default.
	if res.logger == nil {
		res.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if res.nss == nil {
		res.nss = stanza.DefaultNamespaces()
	}
	return res
}

// Logger sets the logger used by the client.
// Dropped stanzas are logged at debug level and handler errors at warn level.
func Logger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// SessionID sets the ID of the transport session the client sends on.
func SessionID(sid string) Option {
	return func(o *options) {
		o.sid = sid
	}
}

// IDPrefix sets the prefix of generated stanza IDs.
// The default is correlate.DefaultPrefix.
func IDPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// Timeout sets how long a blocking request waits for its reply when the
// context has no earlier deadline.
// The default is DefaultTimeout.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// PollInterval sets the longest time a single pump of the transport blocks
// while waiting for a reply.
// The default is DefaultPollInterval.
func PollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.poll = d
		}
	}
}

// Update sets a function called on every iteration of a wait loop.
// It lets an application stay responsive while the client waits.
func Update(f func()) Option {
	return func(o *options) {
		o.update = f
	}
}

// WithNamespaces sets the field tables used to build and parse payloads.
// By default every client gets its own copy of stanza.DefaultNamespaces.
func WithNamespaces(nss stanza.Namespaces) Option {
	return func(o *options) {
		o.nss = nss
	}
}

// Software sets the software version reported to version requests.
func Software(name, ver, os string) Option {
	return func(o *options) {
		o.software = version.Query{Name: name, Version: ver, OS: os}
	}
}

// Identity adds a service discovery identity.
// The first call replaces the default identity (client/pc).
func Identity(category, typ, name string) Option {
	return func(o *options) {
		if !o.identitySet {
			o.identities = nil
			o.identitySet = true
		}
		o.identities = append(o.identities, disco.Identity{Category: category, Type: typ, Name: name})
	}
}

// Subscriptions sets how subscription requests are answered.
// The default is Accept.
func Subscriptions(p SubscriptionPolicy) Option {
	return func(o *options) {
		o.subs = p
	}
}

// TrackPresence controls whether inbound presence updates the presence
// database.
// It is on by default.
func TrackPresence(on bool) Option {
	return func(o *options) {
		o.noPresence = !on
	}
}

// TrackRoster controls whether roster results and pushes update the roster
// database.
// It is on by default.
func TrackRoster(on bool) Option {
	return func(o *options) {
		o.noRoster = !on
	}
}

// LexicalPriority makes the presence database compare priorities as strings.
// See presence.LexicalPriority.
func LexicalPriority() Option {
	return func(o *options) {
		o.lexical = true
	}
}

// Lang sets the preferred language for human readable error text.
func Lang(tag language.Tag) Option {
	return func(o *options) {
		o.lang = tag
	}
}

// Method binds an XML-RPC method.
func Method(name string, f xmlrpc.MethodFunc) Option {
	return func(o *options) {
		o.methods[name] = f
	}
}

// Handle adds handlers to the client's registry after the defaults are
// installed.
// Like mux options in general it panics if a handler is bound to a key that
// already has one; use the Set methods on Client to replace defaults.
func Handle(opts ...mux.Option) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, opts...)
	}
}
