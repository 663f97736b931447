// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"encoding/xml"
	"errors"
	"io"
	"log/slog"

	"mellium.im/xmlstream"

	"mellium.im/jabber/stanza"
)

// DispatchTokens reads one top level element from r and dispatches it.
// Elements nobody wants are skipped without building a tree.
// It satisfies transport.Dispatcher.
func (c *Client) DispatchTokens(sid string, r xml.TokenReader) error {
	var start xml.StartElement
	for {
		tok, err := r.Token()
		if tok == nil && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if s, ok := tok.(xml.StartElement); ok {
			start = s
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}

	var id string
	for _, a := range start.Attr {
		if a.Name.Space == "" && a.Name.Local == "id" {
			id = a.Value
			break
		}
	}
	if !c.wanted(start.Name.Local, id) {
		c.logger.Debug("dropping unwanted stanza", "sid", sid, "tag", start.Name.Local, "id", id)
		return xmlstream.Skip(r)
	}

	st, err := stanza.DecodeElement(r, &start)
	if err != nil {
		return err
	}
	c.Dispatch(sid, st)
	return nil
}

func (c *Client) wanted(tag, id string) bool {
	return c.mux.HasTag(tag) || c.mux.HasXPath() || c.ids.IsRegistered(tag, id)
}

// Dispatch routes a stanza received on the session sid.
//
// Replies to requests sent with SendWithID are consumed by the correlator and
// never reach handlers.
// Any other stanza is passed to every matching XPath handler in the order they
// were bound, then to the handler bound to its tag.
// Handler errors are logged and do not stop dispatch.
func (c *Client) Dispatch(sid string, st *stanza.Element) {
	tag := st.Tag()
	id := st.ID()
	if !c.wanted(tag, id) {
		c.logger.Debug("dropping unwanted stanza", "sid", sid, "tag", tag, "id", id)
		return
	}
	if c.ids.IsRegistered(tag, id) {
		if c.ids.Resolve(tag, id, st) {
			return
		}
	}

	for _, h := range c.mux.XPathHandlers(st) {
		if err := h.HandleStanza(sid, st); err != nil {
			c.handlerError(sid, st, err)
		}
	}

	h, ok := c.mux.TagHandler(tag)
	if !ok {
		c.logger.Debug("no handler for stanza", "sid", sid, "tag", tag, "id", id)
		return
	}
	if err := h.HandleStanza(sid, st); err != nil {
		c.handlerError(sid, st, err)
	}
}

func (c *Client) handlerError(sid string, st *stanza.Element, err error) {
	c.logger.Warn("error handling stanza",
		"sid", sid,
		"tag", st.Tag(),
		"id", st.ID(),
		slog.Any("err", err),
	)
}

func (c *Client) handlePresence(sid string, st *stanza.Element) error {
	if c.trackPresence {
		c.presence.Apply(st)
	}
	_, err := c.mux.RoutePresence(sid, st)
	return err
}

func (c *Client) handleMessage(sid string, st *stanza.Element) error {
	_, err := c.mux.RouteMessage(sid, st)
	return err
}

func (c *Client) handleIQ(sid string, st *stanza.Element) error {
	handled, err := c.mux.RouteIQ(sid, st)
	if handled || !stanza.IQTypeOf(st).ExpectsReply() {
		return err
	}
	c.logger.Debug("no handler for iq", "sid", sid, "id", st.ID(), "type", st.Type())
	return c.reply(sid, stanza.ErrorReply(st, stanza.Error{
		Type:      stanza.Cancel,
		Condition: stanza.ServiceUnavailable,
	}))
}
