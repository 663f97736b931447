// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xtime_test

import (
	"strconv"
	"testing"
	"time"

	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/xtime"
)

var fixed = time.Date(2026, time.March, 4, 5, 6, 7, 0, time.FixedZone("EST", -5*60*60))

func TestElement(t *testing.T) {
	const want = `<time xmlns="urn:xmpp:time"><tzo>-05:00</tzo><utc>2026-03-04T10:06:07Z</utc></time>`
	if out := xtime.Element(nil, fixed).XML(); out != want {
		t.Errorf("wrong output:\nwant=%s,\n got=%s", want, out)
	}
}

func TestParseRoundTrip(t *testing.T) {
	got, err := xtime.Parse(nil, xtime.Element(nil, fixed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(fixed) {
		t.Errorf("wrong time: want=%v, got=%v", fixed, got)
	}
	if _, off := got.Zone(); off != -5*60*60 {
		t.Errorf("wrong zone offset: want=%d, got=%d", -5*60*60, off)
	}
}

var parseErrTests = [...]string{
	0: `<iq type="result"/>`,
	1: `<time xmlns="urn:xmpp:time"><tzo>bad</tzo><utc>2026-03-04T10:06:07Z</utc></time>`,
	2: `<time xmlns="urn:xmpp:time"><tzo>Z</tzo><utc>bad</utc></time>`,
}

func TestParseErrors(t *testing.T) {
	for i, tc := range parseErrTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if _, err := xtime.Parse(nil, stanza.MustParse(tc)); err == nil {
				t.Errorf("expected error parsing %s", tc)
			}
		})
	}
}

func TestLegacy(t *testing.T) {
	l := xtime.NewLegacy(fixed)
	const want = `<query xmlns="jabber:iq:time"><utc>20260304T10:06:07</utc><tz>EST</tz><display>Wed Mar  4 05:06:07 2026</display></query>`
	if out := l.Element(nil).XML(); out != want {
		t.Errorf("wrong output:\nwant=%s,\n got=%s", want, out)
	}

	iq := stanza.NewIQ(stanza.ResultIQ, "", l.Element(nil))
	got, err := xtime.ParseLegacy(nil, iq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.UTC.Equal(fixed) || got.TZ != "EST" || got.Display != l.Display {
		t.Errorf("wrong legacy time: want=%+v, got=%+v", l, got)
	}
}

var handlerTests = [...]struct {
	req  *stanza.Element
	want string
}{
	0: {
		req:  xtime.Request("me@example.net", false),
		want: `<iq id="1" to="you@example.net" from="me@example.net" type="result"><time xmlns="urn:xmpp:time"><tzo>-05:00</tzo><utc>2026-03-04T10:06:07Z</utc></time></iq>`,
	},
	1: {
		req:  xtime.Request("me@example.net", true),
		want: `<iq id="1" to="you@example.net" from="me@example.net" type="result"><query xmlns="jabber:iq:time"><utc>20260304T10:06:07</utc><tz>EST</tz><display>Wed Mar  4 05:06:07 2026</display></query></iq>`,
	},
}

func TestHandler(t *testing.T) {
	for i, tc := range handlerTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			var out string
			m := mux.New(xtime.Handle(xtime.Handler{
				TimeFunc: func() time.Time { return fixed },
				Send: func(_ string, st *stanza.Element) error {
					out = st.XML()
					return nil
				},
			}))
			handled, err := m.RouteIQ("", tc.req.SetID("1").SetFrom("you@example.net"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !handled {
				t.Fatal("request was not handled")
			}
			if out != tc.want {
				t.Errorf("wrong reply:\nwant=%s,\n got=%s", tc.want, out)
			}
		})
	}
}
