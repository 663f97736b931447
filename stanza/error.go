// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"encoding/xml"
	"strconv"

	"mellium.im/xmlstream"

	"mellium.im/jabber/internal/ns"
)

// ErrorType is the type of an stanza error payloads.
// It should normally be one of the constants defined in this package.
type ErrorType string

const (
	// Cancel indicates that the error cannot be remedied and the operation should
	// not be retried.
	Cancel ErrorType = "cancel"

	// Auth indicates that an operation should be retried after providing
	// credentials.
	Auth ErrorType = "auth"

	// Continue indicates that the operation can proceed (the condition was only a
	// warning).
	Continue ErrorType = "continue"

	// Modify indicates that the operation can be retried after changing the data
	// sent.
	Modify ErrorType = "modify"

	// Wait is indicates that an error is temporary and may be retried.
	Wait ErrorType = "wait"
)

// Condition represents a more specific stanza error condition that can be
// encapsulated by an <error/> element.
type Condition string

// A list of stanza error conditions defined in RFC 6120 §8.3.3
const (
	BadRequest            Condition = "bad-request"
	Conflict              Condition = "conflict"
	FeatureNotImplemented Condition = "feature-not-implemented"
	Forbidden             Condition = "forbidden"
	Gone                  Condition = "gone"
	InternalServerError   Condition = "internal-server-error"
	ItemNotFound          Condition = "item-not-found"
	JIDMalformed          Condition = "jid-malformed"
	NotAcceptable         Condition = "not-acceptable"
	NotAllowed            Condition = "not-allowed"
	NotAuthorized         Condition = "not-authorized"
	PolicyViolation       Condition = "policy-violation"
	RecipientUnavailable  Condition = "recipient-unavailable"
	Redirect              Condition = "redirect"
	RegistrationRequired  Condition = "registration-required"
	RemoteServerNotFound  Condition = "remote-server-not-found"
	RemoteServerTimeout   Condition = "remote-server-timeout"
	ResourceConstraint    Condition = "resource-constraint"
	ServiceUnavailable    Condition = "service-unavailable"
	SubscriptionRequired  Condition = "subscription-required"
	UndefinedCondition    Condition = "undefined-condition"
	UnexpectedRequest     Condition = "unexpected-request"
)

// legacyCodes maps conditions to the numeric codes used by pre-RFC 3920
// entities (XEP-0086).
var legacyCodes = map[Condition]int{
	BadRequest:            400,
	Conflict:              409,
	FeatureNotImplemented: 501,
	Forbidden:             403,
	Gone:                  302,
	InternalServerError:   500,
	ItemNotFound:          404,
	JIDMalformed:          400,
	NotAcceptable:         406,
	NotAllowed:            405,
	NotAuthorized:         401,
	RecipientUnavailable:  404,
	Redirect:              302,
	RegistrationRequired:  407,
	RemoteServerNotFound:  404,
	RemoteServerTimeout:   504,
	ResourceConstraint:    500,
	ServiceUnavailable:    503,
	SubscriptionRequired:  407,
	UndefinedCondition:    500,
	UnexpectedRequest:     400,
}

// Error is a stanza level error.
// It carries both the RFC 6120 type and condition and the legacy numeric code
// so that errors from older entities can be reported as a (code, message)
// pair.
type Error struct {
	Code      int
	By        string
	Type      ErrorType
	Condition Condition
	Text      string
}

// Error satisfies the error interface by returning the condition and text.
func (se Error) Error() string {
	s := string(se.Condition)
	if s == "" && se.Code != 0 {
		s = strconv.Itoa(se.Code)
	}
	switch {
	case se.Text == "":
		return s
	case s == "":
		return se.Text
	}
	return s + ": " + se.Text
}

// LegacyCode returns the numeric code of the error, deriving it from the
// condition if no code was set.
func (se Error) LegacyCode() int {
	if se.Code != 0 {
		return se.Code
	}
	return legacyCodes[se.Condition]
}

// Element returns the error payload as an element tree.
func (se Error) Element() *Element {
	e := &Element{Name: xml.Name{Local: "error"}}
	if code := se.LegacyCode(); code != 0 {
		e.SetAttribute("code", strconv.Itoa(code))
	}
	e.SetAttribute("type", string(se.Type)).SetAttribute("by", se.By)
	if se.Condition != "" {
		e.AddChild(&Element{Name: xml.Name{Space: ns.Stanza, Local: string(se.Condition)}})
	}
	if se.Text != "" {
		e.AddChild(&Element{Name: xml.Name{Space: ns.Stanza, Local: "text"}, Text: se.Text})
	}
	return e
}

// TokenReader satisfies the xmlstream.Marshaler interface for Error.
func (se Error) TokenReader() xml.TokenReader {
	return se.Element().TokenReader()
}

// WriteXML satisfies the xmlstream.WriterTo interface.
// It is like MarshalXML except it writes tokens to w.
func (se Error) WriteXML(w xmlstream.TokenWriter) (n int, err error) {
	return xmlstream.Copy(w, se.TokenReader())
}

// UnmarshalError returns the stanza error carried by a stanza of type "error".
// If the stanza is not an error, ok is false.
// Errors from legacy entities that only carry a numeric code and text are
// reported with an empty condition.
func UnmarshalError(st *Element) (se Error, ok bool) {
	if st == nil || st.Type() != "error" {
		return se, false
	}
	e := st.Child("", "error")
	if e == nil {
		return Error{Type: Cancel, Condition: UndefinedCondition}, true
	}
	se.Type = ErrorType(e.Attribute("type"))
	se.By = e.Attribute("by")
	if code, err := strconv.Atoi(e.Attribute("code")); err == nil {
		se.Code = code
	}
	for _, c := range e.Children {
		if c.Name.Space != ns.Stanza {
			continue
		}
		if c.Name.Local == "text" {
			se.Text = c.Text
			continue
		}
		if se.Condition == "" {
			se.Condition = Condition(c.Name.Local)
		}
	}
	if se.Text == "" && len(e.Children) == 0 {
		se.Text = e.Text
	}
	return se, true
}

// ErrorReply returns an error reply to st carrying se.
// The original payload is not echoed back.
func ErrorReply(st *Element, se Error) *Element {
	return st.Reply(string(ErrorIQ)).AddChild(se.Element())
}
