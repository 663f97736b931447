// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"mellium.im/jabber"
	"mellium.im/jabber/disco"
	"mellium.im/jabber/internal/xmpptest"
	"mellium.im/jabber/last"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/roster"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/version"
	"mellium.im/jabber/xmlrpc"
	"mellium.im/jabber/xtime"
)

func process(t *testing.T, c *jabber.Client, tr *xmpptest.Transport, in ...string) {
	t.Helper()
	for _, s := range in {
		tr.Queue(sid, s)
	}
	for tr.Pending() > 0 {
		if _, err := c.Process(0); err != nil {
			t.Fatalf("error processing: %v", err)
		}
	}
}

func TestDispatchOrder(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)

	var order []string
	record := func(name string) mux.Handler {
		return mux.HandlerFunc(func(string, *stanza.Element) error {
			order = append(order, name)
			return nil
		})
	}
	for _, b := range []struct{ expr, name string }{
		{"/message/body", "body"},
		{"/message[@type='chat']", "chat"},
		{"/presence", "presence"},
		{"/message/body", "body2"},
	} {
		if err := c.SetXPathCallback(b.expr, b.name, record(b.name)); err != nil {
			t.Fatalf("error binding %s: %v", b.expr, err)
		}
	}
	c.SetMessageCallback(stanza.ChatMessage, record("tag"))

	process(t, c, tr, `<message type="chat" from="juliet@example.com/balcony"><body>wherefore</body></message>`)
	const want = "body,body2,chat,tag"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("wrong handler order: want=%s, got=%s", want, got)
	}

	order = order[:0]
	c.RemoveXPathCallbacks("/message/body")
	process(t, c, tr, `<message type="chat"><body>again</body></message>`)
	if got := strings.Join(order, ","); got != "chat,tag" {
		t.Errorf("wrong handler order after removal: got=%s", got)
	}
}

func TestHandlerErrorsDoNotStopDispatch(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)

	var n int
	c.SetMessageCallback(stanza.NormalMessage, mux.HandlerFunc(func(string, *stanza.Element) error {
		n++
		return errors.New("handler failed")
	}))
	process(t, c, tr, `<message><body>1</body></message>`, `<message><body>2</body></message>`)
	if n != 2 {
		t.Errorf("wrong number of calls: want=2, got=%d", n)
	}
}

func TestUnwantedDropped(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)
	c.SetCallback("message", nil)

	var n int
	c.SetMessageCallback(stanza.NormalMessage, countHandler(&n))
	process(t, c, tr,
		`<message><body>dropped</body></message>`,
		`<unknown xmlns="urn:example"><nested><deep/></nested></unknown>`,
	)
	if n != 0 {
		t.Errorf("unwanted message was dispatched")
	}
	if sent := tr.Sent(); len(sent) != 0 {
		t.Errorf("unexpected replies: %v", tr.SentXML())
	}

	// An XPath handler makes every stanza wanted.
	var x int
	if err := c.SetXPathCallback("/unknown", "x", countHandler(&x)); err != nil {
		t.Fatal(err)
	}
	process(t, c, tr, `<unknown xmlns="urn:example"/>`)
	if x != 1 {
		t.Errorf("XPath handler was not called")
	}
}

var iqFallbackTests = [...]struct {
	in    string
	reply bool
}{
	0: {in: `<iq type="get" id="1" from="a@example.net"><query xmlns="urn:example:unknown"/></iq>`, reply: true},
	1: {in: `<iq type="set" id="2" from="a@example.net"><query xmlns="urn:example:unknown"/></iq>`, reply: true},
	2: {in: `<iq type="result" id="3" from="a@example.net"/>`},
	3: {in: `<iq type="error" id="4" from="a@example.net"/>`},
	4: {in: `<iq type="get" id="5" from="a@example.net"/>`, reply: true},
}

func TestIQFallback(t *testing.T) {
	for i, tc := range iqFallbackTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			tr := xmpptest.New()
			c := newClient(t, tr)
			process(t, c, tr, tc.in)

			sent := tr.Sent()
			if !tc.reply {
				if len(sent) != 0 {
					t.Fatalf("unexpected reply: %v", tr.SentXML())
				}
				return
			}
			if len(sent) != 1 {
				t.Fatalf("expected one reply, got %v", tr.SentXML())
			}
			if !sent[0].Ignored {
				t.Errorf("automatic reply counted as activity")
			}
			in := stanza.MustParse(tc.in)
			out := sent[0].Stanza
			if out.ID() != in.ID() || out.To() != "a@example.net" {
				t.Errorf("reply not addressed to request: %s", out)
			}
			se, ok := stanza.UnmarshalError(out)
			if !ok {
				t.Fatalf("reply is not an error: %s", out)
			}
			if se.Condition != stanza.ServiceUnavailable || se.Type != stanza.Cancel || se.LegacyCode() != 503 {
				t.Errorf("wrong error: %+v", se)
			}
		})
	}
}

var subscriptionTests = [...]struct {
	policy jabber.SubscriptionPolicy
	in     string
	want   string
}{
	0: {policy: jabber.Accept, in: "subscribe", want: "subscribed"},
	1: {policy: jabber.Accept, in: "unsubscribe", want: "unsubscribed"},
	2: {policy: jabber.Deny, in: "subscribe", want: "unsubscribed"},
	3: {policy: jabber.Deny, in: "unsubscribe", want: "unsubscribed"},
	4: {policy: jabber.Manual, in: "subscribe"},
	5: {policy: jabber.Manual, in: "unsubscribe"},
}

func TestSubscriptions(t *testing.T) {
	for i, tc := range subscriptionTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			tr := xmpptest.New()
			c := newClient(t, tr, jabber.Subscriptions(tc.policy))
			process(t, c, tr, `<presence type="`+tc.in+`" from="romeo@example.net"/>`)
			sent := tr.Sent()
			if tc.want == "" {
				if len(sent) != 0 {
					t.Fatalf("unexpected reply: %v", tr.SentXML())
				}
				return
			}
			if len(sent) != 1 {
				t.Fatalf("expected one reply, got %v", tr.SentXML())
			}
			out := sent[0].Stanza
			if out.Type() != tc.want || out.To() != "romeo@example.net" {
				t.Errorf("wrong reply: %s", out)
			}
		})
	}
}

func TestPresenceTracking(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)

	var routed int
	c.SetPresenceCallback(stanza.AvailablePresence, countHandler(&routed))
	process(t, c, tr,
		`<presence from="juliet@example.com/balcony"><priority>1</priority></presence>`,
		`<presence from="juliet@example.com/chamber"><priority>5</priority></presence>`,
	)
	if routed != 2 {
		t.Errorf("wrong number of routed presences: want=2, got=%d", routed)
	}
	best := c.Presence().Query("juliet@example.com")
	if best == nil || best.From() != "juliet@example.com/chamber" {
		t.Errorf("wrong highest priority presence: %v", best)
	}

	process(t, c, tr, `<presence type="unavailable" from="juliet@example.com/chamber"/>`)
	if res := c.Presence().Resources("juliet@example.com"); len(res) != 1 || res[0] != "balcony" {
		t.Errorf("wrong resources: %v", res)
	}

	untracked := newClient(t, tr, jabber.TrackPresence(false))
	process(t, untracked, tr, `<presence from="romeo@example.net/a"/>`)
	if untracked.Presence().Len() != 0 {
		t.Errorf("presence tracked with tracking disabled")
	}
}

func TestRosterPush(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)
	process(t, c, tr, `<iq type="set" id="push1"><query xmlns="jabber:iq:roster"><item jid="nurse@example.com" name="Nurse" subscription="both"><group>Servants</group></item></query></iq>`)

	item, ok := c.Roster().Get("nurse@example.com")
	if !ok {
		t.Fatalf("roster push not applied")
	}
	if item.Name != "Nurse" || item.Subscription != roster.Both || len(item.Groups) != 1 || item.Groups[0] != "Servants" {
		t.Errorf("wrong item: %+v", item)
	}
	last := tr.Last()
	if last == nil || last.Type() != "result" || last.ID() != "push1" {
		t.Errorf("push was not acknowledged: %v", last)
	}

	process(t, c, tr, `<iq type="set" id="push2"><query xmlns="jabber:iq:roster"><item jid="nurse@example.com" subscription="remove"/></query></iq>`)
	if c.Roster().Exists("nurse@example.com") {
		t.Errorf("roster removal not applied")
	}
}

var rosterPushSenderTests = [...]struct {
	from   string
	to     string
	accept bool
}{
	0: {from: "", to: "juliet@example.com/balcony", accept: true},
	1: {from: "juliet@example.com", to: "juliet@example.com/balcony", accept: true},
	2: {from: "evil@attacker.example", to: "juliet@example.com/balcony", accept: false},
	3: {from: "juliet@example.com/chamber", to: "juliet@example.com/balcony", accept: false},
	4: {from: "example.com", to: "juliet@example.com/balcony", accept: false},
	5: {from: "juliet@example.com", to: "", accept: false},
}

func TestRosterPushSender(t *testing.T) {
	for i, tc := range rosterPushSenderTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			tr := xmpptest.New()
			c := newClient(t, tr)
			push := stanza.MustParse(`<iq type="set" id="push"><query xmlns="jabber:iq:roster"><item jid="mallory@evil.example" subscription="both"/></query></iq>`)
			push.SetFrom(tc.from).SetTo(tc.to)
			process(t, c, tr, push.XML())

			if got := c.Roster().Len(); (got == 1) != tc.accept {
				t.Errorf("wrong roster size: accept=%t, len=%d", tc.accept, got)
			}
			last := tr.Last()
			if last == nil || last.ID() != "push" {
				t.Fatalf("push was not answered: %v", last)
			}
			want := "result"
			if !tc.accept {
				want = "error"
			}
			if last.Type() != want {
				t.Errorf("wrong reply type: want=%s, got=%s", want, last.Type())
			}
			if se, ok := stanza.UnmarshalError(last); ok && se.Condition != stanza.ServiceUnavailable {
				t.Errorf("wrong error condition: %v", se)
			}
		})
	}
}

func TestRPCHandler(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr, jabber.Method("echo", func(_ *stanza.Element, params []any) ([]any, error) {
		return params, nil
	}))

	call := func(method string) *stanza.Element {
		t.Helper()
		q, err := xmlrpc.EncodeCall(method, "hi")
		if err != nil {
			t.Fatalf("error encoding call: %v", err)
		}
		tr.Reset()
		process(t, c, tr, stanza.NewIQ(stanza.SetIQ, "", q).SetID("rpc").SetFrom("a@example.net").XML())
		return tr.Last()
	}

	out, err := xmlrpc.ParseResponse(call("echo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != "hi" {
		t.Errorf("wrong response params: %v", out)
	}

	_, err = xmlrpc.ParseResponse(call("missing"))
	var fault xmlrpc.Fault
	if !errors.As(err, &fault) || fault.Code != xmlrpc.FaultNotFound {
		t.Errorf("wrong error: want fault %d, got %v", xmlrpc.FaultNotFound, err)
	}
}

func TestLastActivityHandler(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)
	tr.SetLastActivity(sid, time.Now().Add(-90*time.Second))

	process(t, c, tr, `<iq type="get" id="l1" from="a@example.net"><query xmlns="jabber:iq:last"/></iq>`)
	q, err := last.Parse(nil, tr.Last())
	if err != nil {
		t.Fatalf("error parsing reply: %v", err)
	}
	if q.Seconds < 90*time.Second {
		t.Errorf("wrong idle time: %v", q.Seconds)
	}
	// Answering must not reset the idle time.
	if idle := time.Since(tr.LastActivity(sid)); idle < 90*time.Second {
		t.Errorf("automatic reply reset last activity")
	}
}

func TestDefaultHandlers(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr,
		jabber.Software("Romeo", "1.0", "Verona"),
		jabber.Identity("client", "bot", "Romeo"),
	)

	process(t, c, tr, `<iq type="get" id="v" from="a@example.net"><query xmlns="jabber:iq:version"/></iq>`)
	v, ok := version.Parse(nil, tr.Last())
	if !ok || v != (version.Query{Name: "Romeo", Version: "1.0", OS: "Verona"}) {
		t.Errorf("wrong version reply: %s", tr.Last())
	}

	process(t, c, tr, `<iq type="get" id="t" from="a@example.net"><time xmlns="urn:xmpp:time"/></iq>`)
	if _, err := xtime.Parse(nil, tr.Last()); err != nil {
		t.Errorf("bad time reply %s: %v", tr.Last(), err)
	}
	process(t, c, tr, `<iq type="get" id="lt" from="a@example.net"><query xmlns="jabber:iq:time"/></iq>`)
	if _, err := xtime.ParseLegacy(nil, tr.Last()); err != nil {
		t.Errorf("bad legacy time reply %s: %v", tr.Last(), err)
	}

	process(t, c, tr, `<iq type="get" id="p" from="a@example.net"><ping xmlns="urn:xmpp:ping"/></iq>`)
	if r := tr.Last(); r.Type() != "result" || r.ID() != "p" {
		t.Errorf("bad ping reply: %s", r)
	}

	process(t, c, tr, `<iq type="get" id="d" from="a@example.net"><query xmlns="http://jabber.org/protocol/disco#info"/></iq>`)
	info, err := disco.ParseInfo(nil, tr.Last())
	if err != nil {
		t.Fatalf("bad disco reply %s: %v", tr.Last(), err)
	}
	for _, f := range []string{disco.NSInfo, disco.NSItems, version.NS, xtime.NS, xtime.NSLegacy, last.NS, roster.NS, xmlrpc.NS, "urn:xmpp:ping"} {
		if !info.HasFeature(f) {
			t.Errorf("missing feature %s", f)
		}
	}
	if len(info.Identities) != 1 || info.Identities[0] != (disco.Identity{Category: "client", Type: "bot", Name: "Romeo"}) {
		t.Errorf("wrong identities: %+v", info.Identities)
	}
}

func TestReplaceDefault(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)

	var n int
	c.SetIQCallback(version.NS, stanza.GetIQ, countHandler(&n))
	process(t, c, tr, `<iq type="get" id="v" from="a@example.net"><query xmlns="jabber:iq:version"/></iq>`)
	if n != 1 || len(tr.Sent()) != 0 {
		t.Errorf("default handler was not replaced: calls=%d, sent=%v", n, tr.SentXML())
	}

	c.SetIQCallback(version.NS, stanza.GetIQ, nil)
	process(t, c, tr, `<iq type="get" id="v2" from="a@example.net"><query xmlns="jabber:iq:version"/></iq>`)
	if se, ok := stanza.UnmarshalError(tr.Last()); !ok || se.Condition != stanza.ServiceUnavailable {
		t.Errorf("removed handler did not fall back to service-unavailable: %v", tr.Last())
	}
}

func TestDispatchTokensSkipsLeadingTokens(t *testing.T) {
	tr := xmpptest.New()
	c := newClient(t, tr)

	var n int
	c.SetMessageCallback(stanza.NormalMessage, countHandler(&n))
	process(t, c, tr, `<!-- hello -->  <message><body>hi</body></message>`)
	if n != 1 {
		t.Errorf("message after comment was not dispatched")
	}
}
