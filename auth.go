// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"context"
	"fmt"

	"mellium.im/sasl"

	"mellium.im/jabber/auth"
	"mellium.im/jabber/mux"
	"mellium.im/jabber/stanza"
)

// AuthSend logs in using the legacy jabber:iq:auth protocol.
//
// The methods offered for c.Username are requested first and the password is
// sent as a digest when the server supports it and the ID of the stream is
// known.
// If streamID is empty and the transport has a StreamID method its result is
// used.
func (c *Client) AuthSend(ctx context.Context, to string, cred auth.Credentials, streamID string) error {
	if streamID == "" {
		if s, ok := c.t.(interface{ StreamID() string }); ok {
			streamID = s.StreamID()
		}
	}
	reply, err := c.request(ctx, auth.Request(c.nss, to, cred.Username))
	if err != nil {
		return err
	}
	methods, err := auth.ParseMethods(c.nss, reply)
	if err != nil {
		return err
	}
	_, err = c.request(ctx, auth.Query(c.nss, to, cred, streamID, methods.Digest))
	if err != nil {
		return err
	}
	c.logger.Info("authenticated", "method", "jabber:iq:auth", "user", cred.Username)
	return nil
}

// AuthSASL authenticates using the provided SASL mechanism.
//
// While the exchange is in progress the handlers bound to the challenge,
// success, and failure tags are replaced; they are restored before AuthSASL
// returns.
// A <failure/> from the server is returned as an auth.Failure.
func (c *Client) AuthSASL(ctx context.Context, m sasl.Mechanism, opts ...sasl.Option) error {
	var steps []*stanza.Element
	collect := mux.HandlerFunc(func(_ string, st *stanza.Element) error {
		steps = append(steps, st)
		return nil
	})
	tags := []string{auth.TagChallenge, auth.TagSuccess, auth.TagFailure}
	for _, tag := range tags {
		if old, ok := c.mux.TagHandler(tag); ok {
			defer c.mux.SetTag(tag, old)
		} else {
			defer c.mux.SetTag(tag, nil)
		}
		c.mux.SetTag(tag, collect)
	}

	client := sasl.NewClient(m, opts...)
	more, resp, err := client.Step(nil)
	if err != nil {
		return err
	}
	if err = c.Send(auth.Start(m.Name, resp)); err != nil {
		return err
	}

	for {
		err = c.pump(ctx, func() bool { return len(steps) > 0 })
		if err != nil {
			if e := c.Send(auth.Abort()); e != nil {
				c.logger.Debug("error aborting SASL exchange", "err", e)
			}
			return err
		}
		el := steps[0]
		steps = steps[1:]

		data, success, err := auth.ParseStep(el, c.lang)
		if err != nil {
			return err
		}
		if success {
			// Additional data with success is the final server message, which some
			// mechanisms must verify.
			if more && len(data) > 0 {
				if _, _, err = client.Step(data); err != nil {
					return err
				}
			}
			c.logger.Info("authenticated", "method", "sasl", "mechanism", m.Name)
			return nil
		}
		if !more {
			return fmt.Errorf("jabber: unexpected challenge after final SASL response: %w", auth.ErrUnexpectedElement)
		}
		more, resp, err = client.Step(data)
		if err != nil {
			return err
		}
		if err = c.Send(auth.Response(resp)); err != nil {
			return err
		}
	}
}
