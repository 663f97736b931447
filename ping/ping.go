// Copyright 2017 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package ping implements XEP-0199: XMPP Ping.
package ping // import "mellium.im/jabber/ping"

import (
	"encoding/xml"

	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

// NS is the XML namespace used by XMPP pings. It is provided as a convenience.
const NS = ns.Ping

// Ping is the payload of a ping request.
type Ping struct{}

// TokenReader satisfies the xmlstream.Marshaler interface.
func (Ping) TokenReader() xml.TokenReader {
	return xmlstream.Wrap(nil, xml.StartElement{Name: xml.Name{Space: NS, Local: "ping"}})
}

// WriteXML satisfies the xmlstream.WriterTo interface. It is like MarshalXML
// except it writes tokens to w.
func (p Ping) WriteXML(w xmlstream.TokenWriter) (int, error) {
	return xmlstream.Copy(w, p.TokenReader())
}

// Request returns an IQ that pings "to".
func Request(to string) *stanza.Element {
	return stanza.NewIQ(stanza.GetIQ, to, stanza.NewElement(xml.Name{Space: NS, Local: "ping"}))
}

// Handler responds to pings with an empty result.
type Handler struct {
	Send mux.SendFunc
}

// HandleStanza satisfies mux.Handler.
func (h Handler) HandleStanza(sid string, iq *stanza.Element) error {
	if stanza.IQTypeOf(iq) != stanza.GetIQ || iq.Child(NS, "ping") == nil {
		return nil
	}
	return h.Send(sid, iq.Reply(""))
}

// Handle returns an option that registers a Handler for ping requests.
func Handle(h Handler) mux.Option {
	return mux.IQ(NS, stanza.GetIQ, h)
}
