// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"mellium.im/xmpp/jid"

	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

func (c *Client) installSubscriptions(p SubscriptionPolicy) {
	var answer stanza.PresenceType
	switch p {
	case Accept:
		answer = stanza.SubscribedPresence
	case Deny:
		answer = stanza.UnsubscribedPresence
	default:
		return
	}
	c.mux.SetPresence(stanza.SubscribePresence, mux.HandlerFunc(func(sid string, st *stanza.Element) error {
		return c.reply(sid, stanza.NewPresence(answer, st.From()))
	}))
	c.mux.SetPresence(stanza.UnsubscribePresence, mux.HandlerFunc(func(sid string, st *stanza.Element) error {
		return c.reply(sid, stanza.NewPresence(stanza.UnsubscribedPresence, st.From()))
	}))
}

func (c *Client) handleRosterPush(sid string, iq *stanza.Element) error {
	if !fromAccount(iq) {
		c.logger.Warn("rejected roster push", "sid", sid, "from", iq.From(), "id", iq.ID())
		return c.reply(sid, stanza.ErrorReply(iq, stanza.Error{
			Type:      stanza.Cancel,
			Condition: stanza.ServiceUnavailable,
		}))
	}
	if c.trackRoster {
		items := c.roster.ApplyIQ(c.nss, iq)
		c.logger.Debug("applied roster push", "sid", sid, "items", len(items))
	}
	return c.reply(sid, iq.Reply(""))
}

func (c *Client) handleRPC(sid string, iq *stanza.Element) error {
	return c.reply(sid, iq.Reply("").AddChild(c.rpc.Serve(iq)))
}

// fromAccount reports whether st was sent by the server on behalf of our own
// account: either it has no from attribute or the from attribute is the bare
// JID of the address it was sent to (RFC 6121 §2.1.6).
func fromAccount(st *stanza.Element) bool {
	if st.From() == "" {
		return true
	}
	from, err := jid.Parse(st.From())
	if err != nil {
		return false
	}
	to, err := jid.Parse(st.To())
	if err != nil {
		return false
	}
	return from.Equal(to.Bare())
}
