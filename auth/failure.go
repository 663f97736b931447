// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package auth

import (
	"encoding/xml"

	"golang.org/x/text/language"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// Condition represents a SASL error condition that can be encapsulated by a
// <failure/> element.
type Condition string

// Standard SASL error conditions.
const (
	Aborted              Condition = "aborted"
	AccountDisabled      Condition = "account-disabled"
	CredentialsExpired   Condition = "credentials-expired"
	EncryptionRequired   Condition = "encryption-required"
	IncorrectEncoding    Condition = "incorrect-encoding"
	InvalidAuthzID       Condition = "invalid-authzid"
	InvalidMechanism     Condition = "invalid-mechanism"
	MalformedRequest     Condition = "malformed-request"
	MechanismTooWeak     Condition = "mechanism-too-weak"
	NotAuthorized        Condition = "not-authorized"
	TemporaryAuthFailure Condition = "temporary-auth-failure"
)

// Failure is a SASL error reported by the server.
type Failure struct {
	Condition Condition
	Lang      language.Tag
	Text      string
}

// Error satisfies the error interface for a Failure. It returns the text string
// if set, or the condition otherwise.
func (f Failure) Error() string {
	if f.Text != "" {
		return f.Text
	}
	return string(f.Condition)
}

// Element returns the failure as a <failure/> element.
func (f Failure) Element() *stanza.Element {
	e := stanza.NewElement(xml.Name{Space: ns.SASL, Local: "failure"})
	if f.Condition != "" {
		e.AddChild(stanza.NewElement(xml.Name{Space: ns.SASL, Local: string(f.Condition)}))
	}
	if f.Text != "" {
		text := &stanza.Element{Name: xml.Name{Space: ns.SASL, Local: "text"}, Text: f.Text}
		if f.Lang != language.Und {
			text.SetLang(f.Lang)
		}
		e.AddChild(text)
	}
	return e
}

// ParseFailure reads a <failure/> element.
//
// If multiple text elements are present, the one whose xml:lang most closely
// matches pref is selected.
func ParseFailure(e *stanza.Element, pref language.Tag) Failure {
	var f Failure
	var tags []language.Tag
	data := make(map[language.Tag]string)
	for _, c := range e.Children {
		if c.Name.Local != "text" {
			if f.Condition == "" {
				f.Condition = Condition(c.Name.Local)
			}
			continue
		}
		tag := c.Lang()
		tags = append(tags, tag)
		data[tag] = c.Text
	}
	if len(tags) == 0 {
		return f
	}
	_, idx, _ := language.NewMatcher(tags).Match(pref)
	f.Lang = tags[idx]
	f.Text = data[f.Lang]
	return f
}
