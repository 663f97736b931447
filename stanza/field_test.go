// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza_test

import (
	"encoding/xml"
	"reflect"
	"testing"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

func TestSchemaGet(t *testing.T) {
	nss := stanza.DefaultNamespaces()
	item := stanza.MustParse(`<item xmlns="jabber:iq:roster" jid="a@example.net" name="A" subscription="both"><group>Friends</group><group>Work</group></item>`)
	s, ok := nss.Lookup(item)
	if !ok {
		t.Fatalf("No schema for roster item")
	}
	if jid := s.Get(item, "jid"); jid != "a@example.net" {
		t.Errorf("Wrong jid: %s", jid)
	}
	if ask := s.Get(item, "ask"); ask != "" {
		t.Errorf("Expected empty ask, got %s", ask)
	}
	if g := s.GetAll(item, "group"); !reflect.DeepEqual(g, []string{"Friends", "Work"}) {
		t.Errorf("Wrong groups: %v", g)
	}
	want := map[string]string{"jid": "a@example.net", "name": "A", "subscription": "both", "group": "Friends"}
	if m := s.Map(item); !reflect.DeepEqual(m, want) {
		t.Errorf("Wrong map:\nwant=%v,\n got=%v", want, m)
	}
}

func TestSchemaSet(t *testing.T) {
	nss := stanza.DefaultNamespaces()
	reg := nss.MustSchema(ns.Register, "query")
	q := reg.New()
	reg.Set(q, "username", "juliet")
	reg.Set(q, "password", "secret")
	reg.Set(q, "registered", "true")
	reg.Set(q, "password", "")
	const want = `<query xmlns="jabber:iq:register"><username>juliet</username><registered></registered></query>`
	if out := q.XML(); out != want {
		t.Errorf("Unexpected output:\nwant=%s,\n got=%s", want, out)
	}
	if !reg.Has(q, "registered") || reg.Has(q, "remove") {
		t.Errorf("Wrong flag values")
	}

	last := nss.MustSchema(ns.Last, "query")
	lq := last.Set(last.New(), "seconds", "42")
	last.Set(lq, "message", "gone fishing")
	const wantLast = `<query xmlns="jabber:iq:last" seconds="42">gone fishing</query>`
	if out := lq.XML(); out != wantLast {
		t.Errorf("Unexpected output:\nwant=%s,\n got=%s", wantLast, out)
	}

	item := nss.MustSchema(ns.Roster, "item")
	it := item.Set(item.New(), "jid", "b@example.net")
	item.Add(it, "group", "A")
	item.Add(it, "group", "B")
	if g := item.GetAll(it, "group"); !reflect.DeepEqual(g, []string{"A", "B"}) {
		t.Errorf("Wrong groups: %v", g)
	}
}

func TestSchemaUnknownField(t *testing.T) {
	s := stanza.DefaultNamespaces().MustSchema(ns.Version, "query")
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected unknown field to panic")
		}
	}()
	s.Get(s.New(), "nope")
}

func TestNamespacesIndependent(t *testing.T) {
	a := stanza.DefaultNamespaces()
	b := stanza.DefaultNamespaces()
	name := xml.Name{Space: "urn:example", Local: "x"}
	a.Register(stanza.Schema{Name: name, Fields: map[string]stanza.Rule{"v": {Kind: stanza.Attr, Name: "v"}}})
	if _, ok := b.Schema(name.Space, name.Local); ok {
		t.Errorf("Registering on one table affected another")
	}

	c := a.Copy()
	c[xml.Name{Space: ns.Version, Local: "query"}].Fields["extra"] = stanza.Rule{Kind: stanza.ChildText, Name: "extra"}
	if _, ok := a[xml.Name{Space: ns.Version, Local: "query"}].Fields["extra"]; ok {
		t.Errorf("Copy shares field maps with the original")
	}
}
