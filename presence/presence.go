// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package presence tracks the presence of contacts across all of their
// resources.
//
// For each bare JID the DB keeps the latest available presence of every
// resource grouped by priority.
// Presence stanzas with the same priority are kept in the order they arrived
// so that the resource that has been at the highest priority the longest is
// the one reported by Query.
package presence // import "mellium.im/jabber/presence"

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"mellium.im/xmpp/jid"

	"mellium.im/jabber/stanza"
)

// Option configures a DB.
type Option func(*DB)

// LexicalPriority compares priorities as strings instead of integers.
// This reproduces the ordering of older clients in which "9" outranks "10".
func LexicalPriority() Option {
	return func(db *DB) {
		db.lexical = true
	}
}

type entry struct {
	resource string
	st       *stanza.Element
}

type record struct {
	priority map[string]string // resource to priority key
	buckets  map[string][]entry
}

// DB is an in-memory presence database.
// It is safe for concurrent use.
type DB struct {
	mu      sync.RWMutex
	lexical bool
	records map[string]*record
}

// New returns an empty presence database.
func New(opts ...Option) *DB {
	db := &DB{records: make(map[string]*record)}
	for _, o := range opts {
		o(db)
	}
	return db
}

func (db *DB) key(priority string) string {
	priority = strings.TrimSpace(priority)
	if db.lexical {
		if priority == "" {
			return "0"
		}
		return priority
	}
	n, _ := strconv.Atoi(priority)
	return strconv.Itoa(n)
}

func (db *DB) compare(a, b string) int {
	if db.lexical {
		return strings.Compare(a, b)
	}
	na, _ := strconv.Atoi(a)
	nb, _ := strconv.Atoi(b)
	return cmp.Compare(na, nb)
}

// Apply records a presence stanza and returns the presence that now has the
// highest priority for the sender's bare JID.
//
// Only available and unavailable presence (including presence with no type)
// changes the database; any other stanza is returned unchanged, as is a
// stanza without a valid from address.
// If the sender no longer has any available resources, st is returned.
func (db *DB) Apply(st *stanza.Element) *stanza.Element {
	typ := stanza.PresenceTypeOf(st)
	if typ != stanza.AvailablePresence && typ != stanza.UnavailablePresence {
		return st
	}
	j, err := jid.Parse(st.From())
	if err != nil {
		return st
	}
	bare := j.Bare().String()
	res := j.Resourcepart()

	db.mu.Lock()
	defer db.mu.Unlock()

	db.remove(bare, res)
	if typ == stanza.AvailablePresence {
		rec, ok := db.records[bare]
		if !ok {
			rec = &record{
				priority: make(map[string]string),
				buckets:  make(map[string][]entry),
			}
			db.records[bare] = rec
		}
		k := db.key(st.ChildText("priority"))
		rec.priority[res] = k
		rec.buckets[k] = append(rec.buckets[k], entry{resource: res, st: st})
	}

	if best := db.query(bare); best != nil {
		return best
	}
	return st
}

func (db *DB) remove(bare, res string) {
	rec, ok := db.records[bare]
	if !ok {
		return
	}
	k, ok := rec.priority[res]
	if !ok {
		return
	}
	delete(rec.priority, res)
	bucket := rec.buckets[k]
	for i, e := range bucket {
		if e.resource == res {
			bucket = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(rec.buckets, k)
	} else {
		rec.buckets[k] = bucket
	}
	if len(rec.priority) == 0 {
		delete(db.records, bare)
	}
}

// sortedKeys returns the priorities of rec from highest to lowest.
func (db *DB) sortedKeys(rec *record) []string {
	keys := make([]string, 0, len(rec.buckets))
	for k := range rec.buckets {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return db.compare(b, a)
	})
	return keys
}

func (db *DB) query(bare string) *stanza.Element {
	rec, ok := db.records[bare]
	if !ok {
		return nil
	}
	var best string
	found := false
	for k := range rec.buckets {
		if !found || db.compare(k, best) > 0 {
			best = k
			found = true
		}
	}
	if !found {
		return nil
	}
	return rec.buckets[best][0].st
}

func bareOf(addr string) (string, bool) {
	j, err := jid.Parse(addr)
	if err != nil {
		return "", false
	}
	return j.Bare().String(), true
}

// Query returns the presence of the resource of addr's bare JID with the
// highest priority.
// Among resources with the same priority the one that has been there longest
// wins.
// If no resource is available, Query returns nil.
func (db *DB) Query(addr string) *stanza.Element {
	bare, ok := bareOf(addr)
	if !ok {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.query(bare)
}

// Resource returns the presence of a single resource.
func (db *DB) Resource(full string) *stanza.Element {
	j, err := jid.Parse(full)
	if err != nil {
		return nil
	}
	bare, res := j.Bare().String(), j.Resourcepart()
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.records[bare]
	if !ok {
		return nil
	}
	k, ok := rec.priority[res]
	if !ok {
		return nil
	}
	for _, e := range rec.buckets[k] {
		if e.resource == res {
			return e.st
		}
	}
	return nil
}

// Priority returns the highest priority advertised by any resource of addr's
// bare JID.
func (db *DB) Priority(addr string) (int, bool) {
	bare, ok := bareOf(addr)
	if !ok {
		return 0, false
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.records[bare]
	if !ok {
		return 0, false
	}
	keys := db.sortedKeys(rec)
	n, _ := strconv.Atoi(keys[0])
	return n, true
}

// Resources returns the available resources of addr's bare JID ordered by
// priority, highest first, and then by arrival.
// A presence sent from the bare JID itself is not listed.
func (db *DB) Resources(addr string) []string {
	bare, ok := bareOf(addr)
	if !ok {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.records[bare]
	if !ok {
		return nil
	}
	var res []string
	for _, k := range db.sortedKeys(rec) {
		for _, e := range rec.buckets[k] {
			if e.resource != "" {
				res = append(res, e.resource)
			}
		}
	}
	return res
}

// Delete removes every resource of addr's bare JID.
func (db *DB) Delete(addr string) {
	bare, ok := bareOf(addr)
	if !ok {
		return
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.records, bare)
}

// Clear removes every record.
func (db *DB) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records = make(map[string]*record)
}

// Len returns the number of bare JIDs with at least one available resource.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}
