// Copyright 2019 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package attr_test

import (
	"encoding/xml"
	"reflect"
	"strconv"
	"testing"

	"mellium.im/jabber/internal/attr"
)

var attrTests = [...]struct {
	attr  []xml.Attr
	local string
	out   string
	idx   int
}{
	0: {idx: -1},
	1: {idx: -1, local: "test"},
	2: {idx: -1, attr: []xml.Attr{}},
	3: {idx: -1, attr: []xml.Attr{}, local: "test"},
	4: {
		attr:  []xml.Attr{{Name: xml.Name{Local: "test"}, Value: "test"}},
		local: "test",
		out:   "test",
	},
	5: {
		attr: []xml.Attr{
			{Name: xml.Name{Local: "test"}, Value: "test0"},
			{Name: xml.Name{Local: "test"}, Value: "test1"},
		},
		local: "test",
		out:   "test0",
	},
	6: {
		attr: []xml.Attr{
			{Name: xml.Name{Local: "a"}, Value: "test0"},
			{Name: xml.Name{Local: "b"}, Value: "test1"},
		},
		local: "b",
		out:   "test1",
		idx:   1,
	},
	7: {
		attr: []xml.Attr{
			{Name: xml.Name{Space: "urn:example", Local: "id"}, Value: "ns"},
			{Name: xml.Name{Local: "id"}, Value: "plain"},
		},
		local: "id",
		out:   "plain",
		idx:   1,
	},
}

func TestAttr(t *testing.T) {
	for i, tc := range attrTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			idx, out := attr.Get(tc.attr, tc.local)
			if out != tc.out {
				t.Errorf("Wrong output: want=%q, got=%q", tc.out, out)
			}
			if idx != tc.idx {
				t.Errorf("Wrong index: want=%d, got=%d", tc.idx, idx)
			}
		})
	}
}

var setTests = [...]struct {
	in    []xml.Attr
	local string
	value string
	out   []xml.Attr
}{
	0: {local: "id", value: "", out: nil},
	1: {
		local: "id", value: "1",
		out: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "1"}},
	},
	2: {
		in:    []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "1"}},
		local: "id", value: "2",
		out: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: "2"}},
	},
	3: {
		in: []xml.Attr{
			{Name: xml.Name{Local: "to"}, Value: "a"},
			{Name: xml.Name{Local: "id"}, Value: "1"},
			{Name: xml.Name{Local: "type"}, Value: "get"},
		},
		local: "id", value: "",
		out: []xml.Attr{
			{Name: xml.Name{Local: "to"}, Value: "a"},
			{Name: xml.Name{Local: "type"}, Value: "get"},
		},
	},
}

func TestSet(t *testing.T) {
	for i, tc := range setTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			out := attr.Set(tc.in, tc.local, tc.value)
			if len(out) == 0 && len(tc.out) == 0 {
				return
			}
			if !reflect.DeepEqual(out, tc.out) {
				t.Errorf("Wrong attributes: want=%+v, got=%+v", tc.out, out)
			}
		})
	}
}

func TestIsNSDecl(t *testing.T) {
	for i, tc := range [...]struct {
		a    xml.Attr
		decl bool
	}{
		0: {a: xml.Attr{Name: xml.Name{Local: "xmlns"}}, decl: true},
		1: {a: xml.Attr{Name: xml.Name{Space: "xmlns", Local: "stream"}}, decl: true},
		2: {a: xml.Attr{Name: xml.Name{Local: "type"}}},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if got := attr.IsNSDecl(tc.a); got != tc.decl {
				t.Errorf("Wrong result for %+v: want=%t, got=%t", tc.a, tc.decl, got)
			}
		})
	}
}
