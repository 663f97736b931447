// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package version_test

import (
	"encoding/xml"
	"strconv"
	"strings"
	"testing"

	"mellium.im/xmlstream"

	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/version"
)

var marshalTests = [...]struct {
	q   version.Query
	out string
}{
	0: {out: `<query xmlns="jabber:iq:version"></query>`},
	1: {
		q:   version.Query{Name: "name", Version: "ver", OS: "os"},
		out: `<query xmlns="jabber:iq:version"><name>name</name><version>ver</version><os>os</os></query>`,
	},
	2: {
		q:   version.Query{Name: "name"},
		out: `<query xmlns="jabber:iq:version"><name>name</name></query>`,
	},
}

func encode(t *testing.T, m xmlstream.WriterTo) string {
	t.Helper()
	var b strings.Builder
	e := xml.NewEncoder(&b)
	if _, err := m.WriteXML(e); err != nil {
		t.Fatalf("Error encoding: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Error flushing: %v", err)
	}
	return b.String()
}

func TestMarshal(t *testing.T) {
	for i, tc := range marshalTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if out := tc.q.Element(nil).XML(); out != tc.out {
				t.Errorf("Wrong output:\nwant=%s,\n got=%s", tc.out, out)
			}
			if out := encode(t, tc.q); out != tc.out {
				t.Errorf("Wrong token output:\nwant=%s,\n got=%s", tc.out, out)
			}
		})
	}
}

func TestParse(t *testing.T) {
	iq := stanza.MustParse(`<iq type="result"><query xmlns="jabber:iq:version"><name>Psi</name><version>1.5</version><os>Linux</os></query></iq>`)
	q, ok := version.Parse(stanza.DefaultNamespaces(), iq)
	if !ok {
		t.Fatalf("Expected version payload")
	}
	if want := (version.Query{Name: "Psi", Version: "1.5", OS: "Linux"}); q != want {
		t.Errorf("Wrong query: want=%+v, got=%+v", want, q)
	}
	if _, ok := version.Parse(nil, stanza.MustParse(`<iq type="result"/>`)); ok {
		t.Errorf("Did not expect payload in empty result")
	}
}

func TestHandler(t *testing.T) {
	var sent *stanza.Element
	h := version.Handler{
		Query: version.Query{Name: "jabber", Version: "1.0"},
		Send: func(_ string, st *stanza.Element) error {
			sent = st
			return nil
		},
	}
	r := mux.New(version.Handle(h))
	req := version.Request("me@example.net").SetID("v1").SetFrom("you@example.net/r")
	if ok, err := r.RouteIQ("", req); !ok || err != nil {
		t.Fatalf("Expected request to be handled: ok=%t, err=%v", ok, err)
	}
	const want = `<iq id="v1" to="you@example.net/r" from="me@example.net" type="result"><query xmlns="jabber:iq:version"><name>jabber</name><version>1.0</version></query></iq>`
	if sent == nil || sent.XML() != want {
		t.Errorf("Wrong reply:\nwant=%s,\n got=%v", want, sent)
	}
}
