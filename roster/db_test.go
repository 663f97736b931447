// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package roster_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mellium.im/jabber/roster"
	"mellium.im/jabber/stanza"
)

func TestApplyDelta(t *testing.T) {
	db := roster.NewDB()
	db.ApplyDelta(map[string]roster.Item{
		"juliet@example.com":   {Name: "Juliet", Subscription: roster.Both, Groups: []string{"Friends"}},
		"benvolio@example.org": {Subscription: roster.To, Groups: []string{"Friends", "Montagues"}},
	})
	require.Equal(t, 2, db.Len())
	require.Equal(t, []string{"benvolio@example.org", "juliet@example.com"}, db.JIDs())
	require.Equal(t, []string{"Friends", "Montagues"}, db.Groups())
	require.Equal(t, []string{"benvolio@example.org", "juliet@example.com"}, db.Group("Friends"))

	// Upserts replace the record wholesale.
	db.ApplyDelta(map[string]roster.Item{
		"juliet@example.com/balcony": {Subscription: roster.From},
	})
	item, ok := db.Get("juliet@example.com")
	require.True(t, ok)
	require.Equal(t, roster.Item{JID: "juliet@example.com", Subscription: roster.From}, item)

	db.ApplyDelta(map[string]roster.Item{
		"benvolio@example.org": {Subscription: roster.Remove},
		"nobody@example.org":   {Subscription: roster.Remove},
	})
	require.False(t, db.Exists("benvolio@example.org"))
	require.Equal(t, 1, db.Len())

	db.Delete("juliet@example.com")
	require.Zero(t, db.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	db := roster.NewDB()
	db.ApplyDelta(map[string]roster.Item{"a@example.net": {Groups: []string{"x"}}})
	item, _ := db.Get("a@example.net")
	item.Groups[0] = "changed"
	again, _ := db.Get("a@example.net")
	require.Equal(t, []string{"x"}, again.Groups)
}

func TestApplyIQ(t *testing.T) {
	nss := stanza.DefaultNamespaces()
	db := roster.NewDB()
	db.ApplyDelta(map[string]roster.Item{"stale@example.net": {Subscription: roster.Both}})

	result := stanza.MustParse(`<iq type="result"><query xmlns="jabber:iq:roster"><item jid="a@example.net" subscription="both"/><item jid="b@example.net" subscription="to"/></query></iq>`)
	require.Len(t, db.ApplyIQ(nss, result), 2)
	require.Equal(t, []string{"a@example.net", "b@example.net"}, db.JIDs())

	push := stanza.MustParse(`<iq type="set"><query xmlns="jabber:iq:roster"><item jid="a@example.net" subscription="remove"/><item jid="c@example.net" name="C"/></query></iq>`)
	db.ApplyIQ(nss, push)
	require.Equal(t, []string{"b@example.net", "c@example.net"}, db.JIDs())
	c, _ := db.Get("c@example.net")
	require.Equal(t, "C", c.Name)

	db.Clear()
	require.Zero(t, db.Len())
}
