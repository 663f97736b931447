// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xmlrpc implements XML-RPC carried in IQ stanzas (XEP-0009).
//
// Values are converted between Go and XML-RPC types with Encode and Decode.
// Strings are inspected when they are encoded: a "type:" prefix naming an
// XML-RPC type forces that type, integers become i4 values, real numbers
// become doubles, and anything else is a string.
package xmlrpc // import "mellium.im/jabber/xmlrpc"

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"mellium.im/jabber/stanza"
)

// DateTimeFormat is the layout of dateTime.iso8601 values.
const DateTimeFormat = "20060102T15:04:05"

// Kind is the type of an XML-RPC value.
type Kind uint8

// A list of value kinds.
const (
	String Kind = iota
	Int
	I4
	Boolean
	Double
	DateTime
	Base64
	Array
	Struct
)

var kindTags = [...]string{
	String:   "string",
	Int:      "int",
	I4:       "i4",
	Boolean:  "boolean",
	Double:   "double",
	DateTime: "dateTime.iso8601",
	Base64:   "base64",
	Array:    "array",
	Struct:   "struct",
}

// String returns the element name used for the kind.
func (k Kind) String() string {
	if int(k) < len(kindTags) {
		return kindTags[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// scalarOrder is the order in which scalar elements are looked for when
// parsing a value.
var scalarOrder = [...]Kind{I4, Int, Boolean, String, Double, DateTime, Base64}

// explicitTypes maps case folded "type:" prefixes to kinds.
var explicitTypes = map[string]Kind{
	"int":      Int,
	"i4":       I4,
	"boolean":  Boolean,
	"string":   String,
	"double":   Double,
	"datetime": DateTime,
	"base64":   Base64,
}

var (
	intPattern  = regexp.MustCompile(`^[+-]?\d+$`)
	realPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

var folder = cases.Fold()

// Errors returned when converting values.
var (
	ErrUnsupported = errors.New("xmlrpc: unsupported Go type")
	ErrBadValue    = errors.New("xmlrpc: malformed value")
)

// Member is a named field of a struct value.
type Member struct {
	Name  string
	Value Value
}

// Value is an XML-RPC value.
// Scalars keep their text as it appears on the wire.
type Value struct {
	Kind   Kind
	Text   string
	Array  []Value
	Struct []Member
}

// Encode converts a Go value to an XML-RPC value.
//
// Strings are typed by inspection (see the package documentation).
// Other supported types are Value, integers that fit in 32 bits (i4), floats (double), bool,
// time.Time, []byte (base64), []Member (struct, in order), slices and arrays
// (array), and maps with string keys (struct, in key order).
func Encode(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return inferString(val), nil
	case bool:
		if val {
			return Value{Kind: Boolean, Text: "1"}, nil
		}
		return Value{Kind: Boolean, Text: "0"}, nil
	case time.Time:
		return Value{Kind: DateTime, Text: val.Format(DateTimeFormat)}, nil
	case []byte:
		return Value{Kind: Base64, Text: base64.StdEncoding.EncodeToString(val)}, nil
	case []Member:
		return Value{Kind: Struct, Struct: val}, nil
	case nil:
		return Value{}, fmt.Errorf("%w: nil", ErrUnsupported)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, fmt.Errorf("%w: %d does not fit in i4", ErrUnsupported, n)
		}
		return Value{Kind: I4, Text: strconv.FormatInt(n, 10)}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return Value{}, fmt.Errorf("%w: %d does not fit in i4", ErrUnsupported, n)
		}
		return Value{Kind: I4, Text: strconv.FormatUint(n, 10)}, nil
	case reflect.Float32, reflect.Float64:
		return Value{Kind: Double, Text: strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits())}, nil
	case reflect.String:
		return inferString(rv.String()), nil
	case reflect.Bool:
		return Encode(rv.Bool())
	case reflect.Slice, reflect.Array:
		arr := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Encode(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, ev)
		}
		return Value{Kind: Array, Array: arr}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key %s", ErrUnsupported, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		members := make([]Member, 0, len(keys))
		for _, k := range keys {
			mv, err := Encode(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Name: k, Value: mv})
		}
		return Value{Kind: Struct, Struct: members}, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, fmt.Errorf("%w: nil", ErrUnsupported)
		}
		return Encode(rv.Elem().Interface())
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupported, v)
}

func inferString(s string) Value {
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if k, ok := explicitTypes[folder.String(prefix)]; ok {
			return Value{Kind: k, Text: rest}
		}
	}
	switch {
	case intPattern.MatchString(s):
		return Value{Kind: I4, Text: s}
	case realPattern.MatchString(s):
		return Value{Kind: Double, Text: s}
	}
	return Value{Kind: String, Text: s}
}

// Decode converts an XML-RPC value to a Go value.
// Integers decode to int, doubles to float64, booleans to bool, date times to
// time.Time, base64 to []byte, arrays to []any, and structs to
// map[string]any.
func Decode(v Value) (any, error) {
	text := strings.TrimSpace(v.Text)
	switch v.Kind {
	case String:
		return v.Text, nil
	case Int, I4:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrBadValue, v.Kind, v.Text)
		}
		return n, nil
	case Boolean:
		switch text {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		}
		return nil, fmt.Errorf("%w: boolean %q", ErrBadValue, v.Text)
	case Double:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: double %q", ErrBadValue, v.Text)
		}
		return f, nil
	case DateTime:
		if t, err := time.Parse(DateTimeFormat, text); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return nil, fmt.Errorf("%w: dateTime.iso8601 %q", ErrBadValue, v.Text)
		}
		return t, nil
	case Base64:
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", ErrBadValue, err)
		}
		return b, nil
	case Array:
		arr := make([]any, 0, len(v.Array))
		for _, av := range v.Array {
			d, err := Decode(av)
			if err != nil {
				return nil, err
			}
			arr = append(arr, d)
		}
		return arr, nil
	case Struct:
		m := make(map[string]any, len(v.Struct))
		for _, member := range v.Struct {
			d, err := Decode(member.Value)
			if err != nil {
				return nil, err
			}
			m[member.Name] = d
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %s", ErrBadValue, v.Kind)
}

func newElement(local string) *stanza.Element {
	return stanza.NewElement(xmlName(local))
}

func textElement(local, text string) *stanza.Element {
	e := newElement(local)
	e.Text = text
	return e
}

// Element returns the value as a <value/> element.
func (v Value) Element() *stanza.Element {
	val := newElement("value")
	switch v.Kind {
	case Array:
		data := newElement("data")
		for _, av := range v.Array {
			data.AddChild(av.Element())
		}
		val.AddChild(newElement("array").AddChild(data))
	case Struct:
		s := newElement("struct")
		for _, m := range v.Struct {
			s.AddChild(newElement("member").AddChild(textElement("name", m.Name), m.Value.Element()))
		}
		val.AddChild(s)
	default:
		val.AddChild(textElement(v.Kind.String(), v.Text))
	}
	return val
}

// ParseValue reads a value from a <value/> element.
// The first scalar child found among i4, int, boolean, string, double,
// dateTime.iso8601, and base64 is used; if there is none, and no array or
// struct, the text of the value element is taken as a string.
func ParseValue(e *stanza.Element) (Value, error) {
	if e == nil || e.Name.Local != "value" {
		return Value{}, fmt.Errorf("%w: expected <value>", ErrBadValue)
	}
	if a := e.Child("", "array"); a != nil {
		v := Value{Kind: Array, Array: []Value{}}
		data := a.Child("", "data")
		if data == nil {
			return v, nil
		}
		for _, c := range data.Children {
			if c.Name.Local != "value" {
				continue
			}
			av, err := ParseValue(c)
			if err != nil {
				return Value{}, err
			}
			v.Array = append(v.Array, av)
		}
		return v, nil
	}
	if s := e.Child("", "struct"); s != nil {
		v := Value{Kind: Struct, Struct: []Member{}}
		for _, c := range s.Children {
			if c.Name.Local != "member" {
				continue
			}
			mv, err := ParseValue(c.Child("", "value"))
			if err != nil {
				return Value{}, err
			}
			v.Struct = append(v.Struct, Member{Name: strings.TrimSpace(c.ChildText("name")), Value: mv})
		}
		return v, nil
	}
	for _, k := range scalarOrder {
		if c := e.Child("", k.String()); c != nil {
			return Value{Kind: k, Text: c.Text}, nil
		}
	}
	return Value{Kind: String, Text: e.Text}, nil
}
