// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza_test

import (
	"encoding/xml"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

func TestIs(t *testing.T) {
	for i, tc := range [...]struct {
		name xml.Name
		is   bool
	}{
		0: {name: xml.Name{Local: "iq"}, is: true},
		1: {name: xml.Name{Space: ns.Client, Local: "message"}, is: true},
		2: {name: xml.Name{Space: ns.Client, Local: "presence"}, is: true},
		3: {name: xml.Name{Space: ns.Stream, Local: "iq"}},
		4: {name: xml.Name{Local: "query"}},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if is := stanza.Is(tc.name); is != tc.is {
				t.Errorf("Unexpected result for %v: want=%t, got=%t", tc.name, tc.is, is)
			}
		})
	}
}

var roundTripTests = [...]struct {
	in  string
	out string
}{
	0: {
		in:  `<iq type="get" id="1" to="a@example.net"><query xmlns="jabber:iq:version"/></iq>`,
		out: `<iq type="get" id="1" to="a@example.net"><query xmlns="jabber:iq:version"></query></iq>`,
	},
	1: {
		in:  `<query xmlns="jabber:iq:roster"><item jid="b@example.net"><group>Friends</group></item></query>`,
		out: `<query xmlns="jabber:iq:roster"><item jid="b@example.net"><group>Friends</group></item></query>`,
	},
	2: {
		in:  "<message>\n  <body>hi &amp; bye</body>\n</message>",
		out: `<message><body>hi &amp; bye</body></message>`,
	},
	3: {
		in:  `<?xml version="1.0"?><!-- c --><presence/>`,
		out: `<presence></presence>`,
	},
}

func TestRoundTrip(t *testing.T) {
	for i, tc := range roundTripTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			e, err := stanza.Parse(tc.in)
			if err != nil {
				t.Fatalf("Unexpected error parsing: %v", err)
			}
			if out := e.XML(); out != tc.out {
				t.Errorf("Unexpected output:\nwant=%s,\n got=%s", tc.out, out)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := stanza.Parse(""); err != stanza.ErrNoElement {
		t.Errorf("Expected ErrNoElement for empty input, got %v", err)
	}
	if _, err := stanza.Parse(`<iq><query>`); err == nil {
		t.Errorf("Expected error for truncated input")
	}
}

func TestDecodeDropsNSDecls(t *testing.T) {
	e := stanza.MustParse(`<iq xmlns:foo="urn:foo" id="x"><foo:bar/></iq>`)
	if len(e.Attr) != 1 || e.ID() != "x" {
		t.Errorf("Expected only the id attribute, got %v", e.Attr)
	}
	if c := e.Child("urn:foo", "bar"); c == nil {
		t.Errorf("Expected prefixed child to be resolved to its namespace")
	}
}

func TestReply(t *testing.T) {
	for i, tc := range [...]struct {
		in  string
		typ string
		out string
	}{
		0: {
			in:  `<iq type="get" id="123" from="a@example.net/r" to="b@example.net"><ping xmlns="urn:xmpp:ping"/></iq>`,
			out: `<iq id="123" to="a@example.net/r" from="b@example.net" type="result"></iq>`,
		},
		1: {
			in:  `<iq type="set" id="1" from="a@example.net"/>`,
			typ: "error",
			out: `<iq id="1" to="a@example.net" type="error"></iq>`,
		},
		2: {
			in:  `<message type="chat" id="m" from="a@example.net"><thread>t1</thread><body>hi</body></message>`,
			out: `<message id="m" to="a@example.net" type="chat"><thread>t1</thread></message>`,
		},
		3: {
			in:  `<presence type="subscribe" from="a@example.net"/>`,
			typ: "subscribed",
			out: `<presence to="a@example.net" type="subscribed"></presence>`,
		},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			r := stanza.MustParse(tc.in).Reply(tc.typ)
			if out := r.XML(); out != tc.out {
				t.Errorf("Unexpected reply:\nwant=%s,\n got=%s", tc.out, out)
			}
		})
	}
}

func TestChildren(t *testing.T) {
	e := stanza.MustParse(`<message><body>a</body><x xmlns="jabber:x:oob"/><x xmlns="jabber:x:oob"/><x xmlns="urn:other"/></message>`)
	if !e.HasX("jabber:x:oob") {
		t.Errorf("Expected HasX to find jabber:x:oob")
	}
	if e.HasX("urn:missing") {
		t.Errorf("Did not expect HasX to find urn:missing")
	}
	if n := len(e.GetX("jabber:x:oob")); n != 2 {
		t.Errorf("Wrong number of extensions: want=2, got=%d", n)
	}
	if p := e.Payload(); p == nil || p.Name.Local != "body" {
		t.Errorf("Wrong payload: %v", p)
	}

	e.SetChildText("body", "b").SetChildText("subject", "s")
	if body := e.ChildText("body"); body != "b" {
		t.Errorf("Wrong body: want=b, got=%s", body)
	}
	if subj := e.ChildText("subject"); subj != "s" {
		t.Errorf("Wrong subject: want=s, got=%s", subj)
	}
	e.SetChildText("body", "")
	if e.Child("", "body") != nil {
		t.Errorf("Expected empty text to remove body")
	}
	e.RemoveChildren("jabber:x:oob", "x")
	if len(e.Children) != 2 {
		t.Errorf("Wrong number of children after removal: want=2, got=%d", len(e.Children))
	}
}

func TestCopy(t *testing.T) {
	orig := stanza.MustParse(`<iq id="1"><query xmlns="jabber:iq:roster"><item jid="a@example.net"/></query></iq>`)
	c := orig.Copy()
	c.SetID("2")
	c.Payload().Payload().SetAttribute("jid", "b@example.net")
	if orig.ID() != "1" {
		t.Errorf("Copy shares attributes with the original")
	}
	if jid := orig.Payload().Payload().Attribute("jid"); jid != "a@example.net" {
		t.Errorf("Copy shares children with the original: %s", jid)
	}
}

func TestLang(t *testing.T) {
	e := stanza.NewMessage(stanza.ChatMessage, "a@example.net")
	if e.Lang() != language.Und {
		t.Errorf("Expected undefined language, got %v", e.Lang())
	}
	e.SetLang(language.German)
	if e.Lang() != language.German {
		t.Errorf("Wrong language: want=de, got=%v", e.Lang())
	}
	if out := e.XML(); !strings.Contains(out, `xml:lang="de"`) {
		t.Errorf("Expected xml:lang attribute in output, got %s", out)
	}
	e.SetLang(language.Und)
	if len(e.Attr) != 2 {
		t.Errorf("Expected language to be removed, got %v", e.Attr)
	}
}

func TestInnerText(t *testing.T) {
	e := stanza.MustParse(`<a>x<b>y</b><c>z</c></a>`)
	if txt := e.InnerText(); txt != "xyz" {
		t.Errorf("Wrong inner text: want=xyz, got=%s", txt)
	}
}

func TestTypes(t *testing.T) {
	if typ := stanza.PresenceTypeOf(stanza.NewPresence(stanza.AvailablePresence, "")); typ != stanza.AvailablePresence {
		t.Errorf("Wrong presence type: %s", typ)
	}
	if out := stanza.NewPresence(stanza.AvailablePresence, "").XML(); out != `<presence></presence>` {
		t.Errorf("Available presence should not carry a type: %s", out)
	}
	if typ := stanza.MessageTypeOf(stanza.NewMessage(stanza.NormalMessage, "a@example.net")); typ != stanza.NormalMessage {
		t.Errorf("Wrong message type: %s", typ)
	}
	iq := stanza.NewIQ("", "a@example.net", stanza.Query(ns.Version))
	if typ := stanza.IQTypeOf(iq); typ != stanza.GetIQ {
		t.Errorf("Wrong IQ type: %s", typ)
	}
	if !stanza.GetIQ.ExpectsReply() || !stanza.SetIQ.ExpectsReply() || stanza.ResultIQ.ExpectsReply() {
		t.Errorf("Only get and set IQs expect a reply")
	}
	if b, _ := stanza.IQType("").MarshalText(); string(b) != "get" {
		t.Errorf("Zero IQType should marshal as get, got %s", b)
	}
}
