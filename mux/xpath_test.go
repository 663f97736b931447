// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package mux_test

import (
	"reflect"
	"testing"

	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

func recorder(calls *[]string, name string) mux.HandlerFunc {
	return func(string, *stanza.Element) error {
		*calls = append(*calls, name)
		return nil
	}
}

func runAll(r *mux.Registry, st *stanza.Element) {
	for _, h := range r.XPathHandlers(st) {
		h.HandleStanza("", st)
	}
}

func TestXPathOrder(t *testing.T) {
	var calls []string
	r := mux.New()
	if r.HasXPath() {
		t.Fatalf("New registry should have no XPath handlers")
	}
	for _, b := range []struct{ expr, name string }{
		{"/message", "a"},
		{"//body", "b"},
		{"/message", "c"},
		{"/presence", "d"},
		{"/message[@type='chat']", "e"},
	} {
		if err := r.SetXPath(b.expr, b.name, recorder(&calls, b.name)); err != nil {
			t.Fatalf("Error binding %q: %v", b.expr, err)
		}
	}
	if !r.HasXPath() {
		t.Fatalf("Expected XPath handlers")
	}

	runAll(r, stanza.MustParse(`<message type="chat"><body>hi</body></message>`))
	if want := []string{"a", "c", "b", "e"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("Wrong call order: want=%v, got=%v", want, calls)
	}

	calls = nil
	r.SetXPath("/message", "a", recorder(&calls, "a2"))
	r.SetXPath("/message", "c", nil)
	runAll(r, stanza.MustParse(`<message><body>hi</body></message>`))
	if want := []string{"a2", "b"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("Wrong calls after rebinding: want=%v, got=%v", want, calls)
	}

	calls = nil
	r.RemoveXPath("/message")
	r.SetXPath("//body", "b", nil)
	r.RemoveXPath("/presence")
	r.RemoveXPath("/message[@type='chat']")
	runAll(r, stanza.MustParse(`<message type="chat"><body>hi</body></message>`))
	if len(calls) != 0 {
		t.Errorf("Expected no calls after removal, got %v", calls)
	}
	if r.HasXPath() {
		t.Errorf("Expected every XPath handler to be removed")
	}
}

func TestXPathBadExpr(t *testing.T) {
	r := mux.New()
	if err := r.SetXPath("/iq[", "x", passHandler); err == nil {
		t.Errorf("Expected error for bad expression")
	}
	if r.HasXPath() {
		t.Errorf("Bad expression should not be registered")
	}
}
