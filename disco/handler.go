// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package disco

import (
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

// Handler responds to service discovery requests.
//
// Info requests for the root node are answered with the configured identities
// and features plus a feature for every namespace that has an IQ handler in
// the registry the handler was installed in.
// Requests for any other node are answered with an item-not-found error.
type Handler struct {
	Identities []Identity
	Features   []Feature
	Items      []Item
	Namespaces stanza.Namespaces
	Send       mux.SendFunc

	registry *mux.Registry
}

// Info returns the disco#info response for the root node.
func (h Handler) Info() Info {
	info := Info{Identities: h.Identities}
	seen := make(map[string]struct{})
	add := func(v string) {
		if _, ok := seen[v]; ok || v == "" {
			return
		}
		seen[v] = struct{}{}
		info.Features = append(info.Features, Feature{Var: v})
	}
	add(NSInfo)
	for _, f := range h.Features {
		add(f.Var)
	}
	if h.registry != nil {
		for _, space := range h.registry.Features() {
			add(space)
		}
	}
	return info
}

// HandleStanza satisfies mux.Handler.
func (h Handler) HandleStanza(sid string, iq *stanza.Element) error {
	if stanza.IQTypeOf(iq) != stanza.GetIQ {
		return nil
	}
	p := iq.Payload()
	if p == nil {
		return nil
	}
	if node := p.Attribute("node"); node != "" {
		return h.Send(sid, stanza.ErrorReply(iq, stanza.Error{
			Type:      stanza.Cancel,
			Condition: stanza.ItemNotFound,
		}))
	}

	reply := iq.Reply("")
	switch p.Name.Space {
	case NSInfo:
		reply.AddChild(h.Info().Element(h.Namespaces))
	case NSItems:
		reply.AddChild(Items{Items: h.Items}.Element(h.Namespaces))
	default:
		return nil
	}
	return h.Send(sid, reply)
}

// Handle returns an option that registers a Handler for disco#info and
// disco#items requests.
func Handle(h Handler) mux.Option {
	return func(r *mux.Registry) {
		h.registry = r
		mux.IQ(NSInfo, stanza.GetIQ, h)(r)
		mux.IQ(NSItems, stanza.GetIQ, h)(r)
	}
}
