// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza_test

import (
	"strconv"
	"strings"
	"testing"

	"mellium.im/jabber/stanza"
)

const xpathMessage = `<message type="chat" from="a@example.net/home"><body>hello</body><x xmlns="jabber:x:event"><composing/></x><x xmlns="jabber:x:oob"><url>http://example.net/</url></x></message>`

var matchTests = [...]struct {
	expr  string
	match bool
}{
	0:  {expr: "/message", match: true},
	1:  {expr: "/iq"},
	2:  {expr: "message[@type='chat']", match: true},
	3:  {expr: "/message[@type='groupchat']"},
	4:  {expr: "/message/body", match: true},
	5:  {expr: "/message[body='hello']", match: true},
	6:  {expr: "/message/body[text()='hello']", match: true},
	7:  {expr: "/message/subject"},
	8:  {expr: "//composing", match: true},
	9:  {expr: "/message/*[namespace-uri()='jabber:x:oob']", match: true},
	10: {expr: "/message/*[namespace-uri()='jabber:x:delay']"},
	11: {expr: "count(/message/x)", match: true},
	12: {expr: "count(/message/thread)"},
	13: {expr: "starts-with(/message/@from, 'a@example.net/')", match: true},
	14: {expr: "string(/message/subject)"},
	15: {expr: "/message/x[2]/url", match: true},
	16: {expr: "/message/body/following-sibling::x", match: true},
	17: {expr: "/message/x[1]/preceding-sibling::body", match: true},
	18: {expr: "/message/x[@xmlns='jabber:x:oob']/url", match: true},
	19: {expr: "/message/x[@xmlns='jabber:x:delay']"},
	20: {expr: "/message[@xmlns]"},
	21: {expr: "/message/body[@xmlns]"},
	22: {expr: "/message/x/composing[@xmlns]"},
	23: {expr: "count(/message/x/@xmlns) = 2", match: true},
}

func TestPathMatch(t *testing.T) {
	msg := stanza.MustParse(xpathMessage)
	for i, tc := range matchTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			p, err := stanza.CompilePath(tc.expr)
			if err != nil {
				t.Fatalf("Error compiling %q: %v", tc.expr, err)
			}
			if m := p.Match(msg); m != tc.match {
				t.Errorf("Unexpected match for %q: want=%t, got=%t", tc.expr, tc.match, m)
			}
		})
	}
}

func TestPathSelect(t *testing.T) {
	msg := stanza.MustParse(xpathMessage)
	found := stanza.MustCompilePath("/message/x").Select(msg)
	if len(found) != 2 {
		t.Fatalf("Wrong number of elements: want=2, got=%d", len(found))
	}
	if found[0].Name.Space != "jabber:x:event" || found[1].Name.Space != "jabber:x:oob" {
		t.Errorf("Elements not in document order: %v, %v", found[0].Name, found[1].Name)
	}

	vals := stanza.MustCompilePath("/message/@from | //url").Values(msg)
	if strings.Join(vals, " ") != "a@example.net/home http://example.net/" {
		t.Errorf("Unexpected values: %q", vals)
	}
}

func TestPathXMLNS(t *testing.T) {
	iq := stanza.MustParse(`<iq type="get" id="v1"><query xmlns="jabber:iq:version"/></iq>`)
	for _, expr := range []string{
		`/iq/query[@xmlns="jabber:iq:version"]`,
		`/iq/*[namespace-uri()="jabber:iq:version"]`,
	} {
		if !stanza.MustCompilePath(expr).Match(iq) {
			t.Errorf("Expected %s to match", expr)
		}
	}
	vals := stanza.MustCompilePath("/iq/query/@*").Values(iq)
	if len(vals) != 1 || vals[0] != "jabber:iq:version" {
		t.Errorf("Unexpected attribute values: %q", vals)
	}
}

func TestCompilePathError(t *testing.T) {
	if _, err := stanza.CompilePath("/message["); err == nil {
		t.Errorf("Expected error compiling invalid expression")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustCompilePath to panic")
		}
	}()
	stanza.MustCompilePath("/message[@")
}

func TestPathString(t *testing.T) {
	const expr = "/presence[@type='subscribe']"
	if s := stanza.MustCompilePath(expr).String(); s != expr {
		t.Errorf("Wrong string: want=%q, got=%q", expr, s)
	}
}
