// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package auth

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"strings"

	"golang.org/x/text/language"

	"mellium.im/jabber/internal/ns"
	"mellium.im/jabber/stanza"
)

// ErrUnexpectedElement is returned by ParseStep when given an element that is
// not part of a SASL exchange.
var ErrUnexpectedElement = errors.New("auth: unexpected element in SASL exchange")

// The tags of the elements a server sends during a SASL exchange.
const (
	TagChallenge = "challenge"
	TagSuccess   = "success"
	TagFailure   = "failure"
)

func encode(data []byte) string {
	// RFC6120 §6.4.2:
	//     If the initiating entity needs to send a zero-length initial
	//     response, it MUST transmit the response as a single equals sign
	//     character ("="), which indicates that the response is present but
	//     contains no data.
	if len(data) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Start returns the <auth/> element that starts a SASL exchange using the
// named mechanism with an initial response.
func Start(mechanism string, initial []byte) *stanza.Element {
	return &stanza.Element{
		Name: xml.Name{Space: ns.SASL, Local: "auth"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "mechanism"}, Value: mechanism}},
		Text: encode(initial),
	}
}

// Response returns a <response/> element answering a challenge.
func Response(data []byte) *stanza.Element {
	return &stanza.Element{
		Name: xml.Name{Space: ns.SASL, Local: "response"},
		Text: encode(data),
	}
}

// Abort returns an <abort/> element that cancels a SASL exchange.
func Abort() *stanza.Element {
	return stanza.NewElement(xml.Name{Space: ns.SASL, Local: "abort"})
}

// ParseStep decodes a <challenge/>, <success/>, or <failure/> element.
// Success reports whether the element was a success (which may carry
// additional data), and a failure is returned as a Failure error.
func ParseStep(e *stanza.Element, lang language.Tag) (data []byte, success bool, err error) {
	if e == nil || (e.Name.Space != "" && e.Name.Space != ns.SASL) {
		return nil, false, ErrUnexpectedElement
	}
	switch e.Name.Local {
	case TagChallenge, TagSuccess:
		text := strings.TrimSpace(e.Text)
		if text != "" && text != "=" {
			data, err = base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, false, Failure{Condition: IncorrectEncoding}
			}
		}
		return data, e.Name.Local == TagSuccess, nil
	case TagFailure:
		return nil, false, ParseFailure(e, lang)
	}
	return nil, false, ErrUnexpectedElement
}
