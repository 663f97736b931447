// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package register_test

import (
	"reflect"
	"testing"

	"mellium.im/jabber/register"
	"mellium.im/jabber/stanza"
)

func TestSet(t *testing.T) {
	iq := register.Set(nil, "example.net", map[string]string{
		"username": "juliet",
		"password": "R0m30",
		"email":    "juliet@example.net",
	})
	const want = `<iq type="set" to="example.net"><query xmlns="jabber:iq:register"><email>juliet@example.net</email><password>R0m30</password><username>juliet</username></query></iq>`
	if out := iq.XML(); out != want {
		t.Errorf("wrong output:\nwant=%s,\n got=%s", want, out)
	}
}

func TestSetUnknownFieldPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for unknown field")
		}
	}()
	register.Set(nil, "example.net", map[string]string{"shoe_size": "9"})
}

func TestRemove(t *testing.T) {
	const want = `<iq type="set" to="example.net"><query xmlns="jabber:iq:register"><remove></remove></query></iq>`
	if out := register.Remove(nil, "example.net").XML(); out != want {
		t.Errorf("wrong output:\nwant=%s,\n got=%s", want, out)
	}
}

func TestParse(t *testing.T) {
	const in = `<iq type="result" id="reg1"><query xmlns="jabber:iq:register">
<registered/>
<instructions>Choose a username and password.</instructions>
<username>juliet</username>
<password/>
<x-color>blue</x-color>
</query></iq>`
	f, err := register.Parse(nil, stanza.MustParse(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := register.Form{
		Instructions: "Choose a username and password.",
		Registered:   true,
		Fields: map[string]string{
			"username": "juliet",
			"password": "",
			"x-color":  "blue",
		},
	}
	if !reflect.DeepEqual(f, want) {
		t.Errorf("wrong form:\nwant=%+v,\n got=%+v", want, f)
	}

	if _, err := register.Parse(nil, stanza.MustParse(`<iq type="result"/>`)); err != register.ErrNoQuery {
		t.Errorf("wrong error: want=%v, got=%v", register.ErrNoQuery, err)
	}
}
