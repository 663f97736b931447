// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package roster

import (
	"slices"
	"sort"
	"sync"

	"mellium.im/xmpp/jid"

	"mellium.im/jabber/stanza"
)

// DB is an in-memory roster keyed by bare JID.
// It is safe for concurrent use.
type DB struct {
	mu    sync.RWMutex
	items map[string]Item
}

// NewDB returns an empty roster database.
func NewDB() *DB {
	return &DB{items: make(map[string]Item)}
}

// normalize returns the bare form of addr, or addr itself if it is not a
// valid JID.
func normalize(addr string) string {
	j, err := jid.Parse(addr)
	if err != nil {
		return addr
	}
	return j.Bare().String()
}

// ApplyDelta updates the roster with items keyed by JID.
// Items with a subscription of Remove delete the contact and every other item
// replaces the stored record wholesale.
func (db *DB) ApplyDelta(items map[string]Item) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for addr, item := range items {
		db.apply(addr, item)
	}
}

func (db *DB) apply(addr string, item Item) {
	key := normalize(addr)
	if item.Subscription == Remove {
		delete(db.items, key)
		return
	}
	item.JID = key
	item.Groups = slices.Clone(item.Groups)
	db.items[key] = item
}

// ApplyIQ updates the roster from a roster push (type set) or the result of a
// roster request.
// A result replaces the entire roster.
// It returns the items that were applied.
func (db *DB) ApplyIQ(nss stanza.Namespaces, iq *stanza.Element) []Item {
	items, _ := Parse(nss, iq)
	db.mu.Lock()
	defer db.mu.Unlock()
	if stanza.IQTypeOf(iq) == stanza.ResultIQ {
		db.items = make(map[string]Item, len(items))
	}
	for _, item := range items {
		db.apply(item.JID, item)
	}
	return items
}

// Get returns the record for addr.
func (db *DB) Get(addr string) (Item, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	item, ok := db.items[normalize(addr)]
	if ok {
		item.Groups = slices.Clone(item.Groups)
	}
	return item, ok
}

// Exists reports whether addr is in the roster.
func (db *DB) Exists(addr string) bool {
	_, ok := db.Get(addr)
	return ok
}

// Delete removes addr from the roster.
func (db *DB) Delete(addr string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.items, normalize(addr))
}

// Clear removes every record.
func (db *DB) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.items = make(map[string]Item)
}

// Len returns the number of contacts.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.items)
}

// JIDs returns the JID of every contact in sorted order.
func (db *DB) JIDs() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	jids := make([]string, 0, len(db.items))
	for j := range db.items {
		jids = append(jids, j)
	}
	sort.Strings(jids)
	return jids
}

// Groups returns the name of every group in sorted order.
func (db *DB) Groups() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	seen := make(map[string]struct{})
	var groups []string
	for _, item := range db.items {
		for _, g := range item.Groups {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	return groups
}

// Group returns the JIDs of the contacts in group, in sorted order.
func (db *DB) Group(group string) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var jids []string
	for j, item := range db.items {
		if slices.Contains(item.Groups, group) {
			jids = append(jids, j)
		}
	}
	sort.Strings(jids)
	return jids
}
