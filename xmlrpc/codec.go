// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlrpc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// NS is the namespace of XML-RPC payloads.
const NS = ns.RPC

// Errors returned when parsing calls and responses.
var (
	ErrNoQuery        = errors.New("xmlrpc: no jabber:iq:rpc payload")
	ErrNoMethodCall   = errors.New("xmlrpc: missing methodCall")
	ErrNoMethodName   = errors.New("xmlrpc: missing methodName")
	ErrNoResponse     = errors.New("xmlrpc: missing methodResponse")
	ErrEmptyResponse  = errors.New("xmlrpc: methodResponse has neither fault nor params")
	errMalformedFault = errors.New("xmlrpc: malformed fault")
)

func xmlName(local string) xml.Name {
	return xml.Name{Space: NS, Local: local}
}

// Fault is an application level error returned by a method.
type Fault struct {
	Code   int
	String string
}

// Error satisfies the error interface.
func (f Fault) Error() string {
	return "xmlrpc: fault " + strconv.Itoa(f.Code) + ": " + f.String
}

// Call is a method call.
type Call struct {
	Method string
	Params []Value
}

// Response is the result of a method call.
// If Fault is set, Params are ignored.
type Response struct {
	Params []any
	Fault  *Fault
}

func paramsElement(params []Value) *stanza.Element {
	ps := newElement("params")
	for _, p := range params {
		ps.AddChild(newElement("param").AddChild(p.Element()))
	}
	return ps
}

func encodeParams(params []any) ([]Value, error) {
	vals := make([]Value, 0, len(params))
	for i, p := range params {
		v, err := Encode(p)
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: param %d: %w", i, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// EncodeCall returns a query payload calling the named method.
func EncodeCall(method string, params ...any) (*stanza.Element, error) {
	vals, err := encodeParams(params)
	if err != nil {
		return nil, err
	}
	return Call{Method: method, Params: vals}.Element(), nil
}

// Element returns the call as a query payload.
func (c Call) Element() *stanza.Element {
	call := newElement("methodCall").AddChild(textElement("methodName", c.Method))
	if len(c.Params) > 0 {
		call.AddChild(paramsElement(c.Params))
	}
	return stanza.NewElement(xmlName("query")).AddChild(call)
}

// EncodeResponse returns a query payload answering a call.
// A fault takes precedence over params.
func EncodeResponse(r Response) (*stanza.Element, error) {
	if r.Fault != nil {
		return EncodeFault(*r.Fault), nil
	}
	vals, err := encodeParams(r.Params)
	if err != nil {
		return nil, err
	}
	resp := newElement("methodResponse").AddChild(paramsElement(vals))
	return stanza.NewElement(xmlName("query")).AddChild(resp), nil
}

// EncodeFault returns a query payload carrying a fault.
func EncodeFault(f Fault) *stanza.Element {
	v := Value{Kind: Struct, Struct: []Member{
		{Name: "faultCode", Value: Value{Kind: Int, Text: strconv.Itoa(f.Code)}},
		{Name: "faultString", Value: Value{Kind: String, Text: f.String}},
	}}
	resp := newElement("methodResponse").AddChild(newElement("fault").AddChild(v.Element()))
	return stanza.NewElement(xmlName("query")).AddChild(resp)
}

func query(e *stanza.Element) *stanza.Element {
	if e == nil {
		return nil
	}
	if e.Name.Space == NS && e.Name.Local == "query" {
		return e
	}
	return e.Child(NS, "query")
}

func parseParams(e *stanza.Element) ([]Value, error) {
	var vals []Value
	if e == nil {
		return vals, nil
	}
	for _, p := range e.Children {
		if p.Name.Local != "param" {
			continue
		}
		v, err := ParseValue(p.Child("", "value"))
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// ParseCall reads a method call from an IQ or its query payload.
func ParseCall(e *stanza.Element) (Call, error) {
	q := query(e)
	if q == nil {
		return Call{}, ErrNoQuery
	}
	mc := q.Child("", "methodCall")
	if mc == nil {
		return Call{}, ErrNoMethodCall
	}
	name := strings.TrimSpace(mc.ChildText("methodName"))
	if name == "" {
		return Call{}, ErrNoMethodName
	}
	params, err := parseParams(mc.Child("", "params"))
	if err != nil {
		return Call{}, err
	}
	return Call{Method: name, Params: params}, nil
}

// ParseResponse reads the result of a method call from an IQ or its query
// payload and decodes its params.
// If the response carries a fault it is returned as the error (of type Fault).
// A response with neither a fault nor params results in ErrEmptyResponse.
func ParseResponse(e *stanza.Element) ([]any, error) {
	q := query(e)
	if q == nil {
		return nil, ErrNoQuery
	}
	resp := q.Child("", "methodResponse")
	if resp == nil {
		return nil, ErrNoResponse
	}
	if f := resp.Child("", "fault"); f != nil {
		return nil, parseFault(f)
	}
	ps := resp.Child("", "params")
	if ps == nil {
		return nil, ErrEmptyResponse
	}
	vals, err := parseParams(ps)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		d, err := Decode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseFault(f *stanza.Element) error {
	v, err := ParseValue(f.Child("", "value"))
	if err != nil {
		return err
	}
	d, err := Decode(v)
	if err != nil {
		return err
	}
	m, ok := d.(map[string]any)
	if !ok {
		return errMalformedFault
	}
	var fault Fault
	switch code := m["faultCode"].(type) {
	case int:
		fault.Code = code
	case float64:
		fault.Code = int(code)
	case string:
		fault.Code, _ = strconv.Atoi(code)
	}
	fault.String, _ = m["faultString"].(string)
	return fault
}
