// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"mellium.im/jabber/disco"
	"mellium.im/jabber/last"
	"mellium.im/jabber/ping"
	"mellium.im/jabber/register"
	"mellium.im/jabber/roster"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/version"
	"mellium.im/jabber/xtime"
)

// ErrNoPayload is returned by request helpers when a result does not carry
// the expected payload.
var ErrNoPayload = errors.New("jabber: reply is missing its payload")

// MessageOptions describes a message to send with MessageSend.
type MessageOptions struct {
	To      string
	Type    stanza.MessageType
	Body    string
	Subject string
	Thread  string
	Lang    language.Tag

	// Extensions are appended to the message after the standard children.
	Extensions []*stanza.Element
}

// MessageSend sends a message.
func (c *Client) MessageSend(o MessageOptions) error {
	typ := o.Type
	if typ == "" {
		typ = stanza.NormalMessage
	}
	msg := stanza.NewMessage(typ, o.To)
	msg.SetLang(o.Lang)
	msg.SetChildText("subject", o.Subject)
	msg.SetChildText("body", o.Body)
	msg.SetChildText("thread", o.Thread)
	msg.AddChild(o.Extensions...)
	return c.Send(msg)
}

// PresenceOptions describes a presence stanza to send with PresenceSend.
type PresenceOptions struct {
	To       string
	Type     stanza.PresenceType
	Show     string
	Status   string
	Priority *int
	Lang     language.Tag

	// Extensions are appended to the presence after the standard children.
	Extensions []*stanza.Element
}

// PresenceSend sends a presence stanza.
// The zero value broadcasts available presence.
func (c *Client) PresenceSend(o PresenceOptions) error {
	typ := o.Type
	if typ == "" {
		typ = stanza.AvailablePresence
	}
	p := stanza.NewPresence(typ, o.To)
	p.SetLang(o.Lang)
	p.SetChildText("show", o.Show)
	p.SetChildText("status", o.Status)
	if o.Priority != nil {
		p.SetChildText("priority", strconv.Itoa(*o.Priority))
	}
	p.AddChild(o.Extensions...)
	return c.Send(p)
}

// Subscription sends a subscription management presence (subscribe,
// subscribed, unsubscribe, or unsubscribed) to "to".
func (c *Client) Subscription(typ stanza.PresenceType, to string) error {
	switch typ {
	case stanza.SubscribePresence, stanza.SubscribedPresence,
		stanza.UnsubscribePresence, stanza.UnsubscribedPresence:
	default:
		return errors.New("jabber: not a subscription presence type: " + string(typ))
	}
	return c.Send(stanza.NewPresence(typ, to))
}

// PresenceProbe asks the server for the current presence of "to".
// Replies are dispatched (and tracked) like any other presence.
func (c *Client) PresenceProbe(to string) error {
	return c.Send(stanza.NewPresence(stanza.ProbePresence, to))
}

// RosterGet requests the roster and returns its items.
// If roster tracking is enabled the roster database is replaced with the
// result.
func (c *Client) RosterGet(ctx context.Context) ([]roster.Item, error) {
	reply, err := c.request(ctx, roster.Get())
	if err != nil {
		return nil, err
	}
	if c.trackRoster {
		return c.roster.ApplyIQ(c.nss, reply), nil
	}
	items, _ := roster.Parse(c.nss, reply)
	return items, nil
}

// RosterAdd adds or updates a roster item.
func (c *Client) RosterAdd(ctx context.Context, item roster.Item) error {
	_, err := c.request(ctx, roster.Set(c.nss, item))
	return err
}

// RosterRemove removes a contact from the roster.
func (c *Client) RosterRemove(ctx context.Context, addr string) error {
	_, err := c.request(ctx, roster.Set(c.nss, roster.Item{JID: addr, Subscription: roster.Remove}))
	return err
}

// DiscoInfoRequest returns the identities and features of "to" (or of one of
// its nodes).
func (c *Client) DiscoInfoRequest(ctx context.Context, to, node string) (disco.Info, error) {
	reply, err := c.request(ctx, disco.InfoRequest(to, node))
	if err != nil {
		return disco.Info{}, err
	}
	return disco.ParseInfo(c.nss, reply)
}

// DiscoItemsRequest returns the items associated with "to" (or with one of its
// nodes).
func (c *Client) DiscoItemsRequest(ctx context.Context, to, node string) (disco.Items, error) {
	reply, err := c.request(ctx, disco.ItemsRequest(to, node))
	if err != nil {
		return disco.Items{}, err
	}
	return disco.ParseItems(c.nss, reply)
}

// BrowseRequest browses "to" using the legacy jabber:iq:browse protocol.
func (c *Client) BrowseRequest(ctx context.Context, to string) (disco.BrowseItem, error) {
	reply, err := c.request(ctx, disco.BrowseRequest(to))
	if err != nil {
		return disco.BrowseItem{}, err
	}
	return disco.ParseBrowse(c.nss, reply)
}

// VersionQuery asks "to" for its software version.
func (c *Client) VersionQuery(ctx context.Context, to string) (version.Query, error) {
	reply, err := c.request(ctx, version.Request(to))
	if err != nil {
		return version.Query{}, err
	}
	q, ok := version.Parse(c.nss, reply)
	if !ok {
		return q, ErrNoPayload
	}
	return q, nil
}

// TimeQuery asks "to" for its local time.
// The result is in the remote entity's time zone.
func (c *Client) TimeQuery(ctx context.Context, to string) (time.Time, error) {
	reply, err := c.request(ctx, xtime.Request(to, false))
	if err != nil {
		return time.Time{}, err
	}
	return xtime.Parse(c.nss, reply)
}

// LegacyTimeQuery asks "to" for its local time using jabber:iq:time.
func (c *Client) LegacyTimeQuery(ctx context.Context, to string) (xtime.Legacy, error) {
	reply, err := c.request(ctx, xtime.Request(to, true))
	if err != nil {
		return xtime.Legacy{}, err
	}
	return xtime.ParseLegacy(c.nss, reply)
}

// LastQuery asks "to" for its last activity.
func (c *Client) LastQuery(ctx context.Context, to string) (last.Query, error) {
	reply, err := c.request(ctx, last.Request(to))
	if err != nil {
		return last.Query{}, err
	}
	return last.Parse(c.nss, reply)
}

// Ping sends a ping to "to" and returns the round trip time.
func (c *Client) Ping(ctx context.Context, to string) (time.Duration, error) {
	start := time.Now()
	_, err := c.request(ctx, ping.Request(to))
	if err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// RegisterRequest asks "to" which fields are required to register.
func (c *Client) RegisterRequest(ctx context.Context, to string) (register.Form, error) {
	reply, err := c.request(ctx, register.Request(to))
	if err != nil {
		return register.Form{}, err
	}
	return register.Parse(c.nss, reply)
}

// RegisterSend submits registration fields to "to".
func (c *Client) RegisterSend(ctx context.Context, to string, fields map[string]string) error {
	_, err := c.request(ctx, register.Set(c.nss, to, fields))
	return err
}

// Unregister cancels an existing registration with "to".
func (c *Client) Unregister(ctx context.Context, to string) error {
	_, err := c.request(ctx, register.Remove(c.nss, to))
	return err
}
