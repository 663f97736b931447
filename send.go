// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"context"
	"fmt"
	"time"

	"mellium.im/jabber/correlate"
	"mellium.im/jabber/stanza"
	"mellium.im/jabber/transport"
)

// Send transmits st on the client's session without tracking a reply.
func (c *Client) Send(st *stanza.Element) error {
	return c.t.Send(c.sid, st.TokenReader())
}

// reply sends st with activity tracking suspended so that automatic answers
// do not reset the idle time reported to last activity requests.
func (c *Client) reply(sid string, st *stanza.Element) error {
	c.t.IgnoreActivity(sid, true)
	defer c.t.IgnoreActivity(sid, false)
	return c.t.Send(sid, st.TokenReader())
}

// SendWithID sends st and registers its ID so that the reply is captured
// instead of being dispatched to handlers.
// If st has no ID one is generated.
// The reply can be collected with ReceivedID, GetID, or WaitForID.
func (c *Client) SendWithID(st *stanza.Element) (string, error) {
	id := st.ID()
	if id == "" {
		id = c.ids.NewID()
		st.SetID(id)
	}
	if err := c.ids.Register(st.Tag(), id); err != nil {
		return "", fmt.Errorf("jabber: registering id %q: %w", id, err)
	}
	if err := c.Send(st); err != nil {
		c.ids.Forget(id)
		return "", err
	}
	return id, nil
}

// SendPassThrough sends st with a generated ID (if it has none) but does not
// register it, so the reply is dispatched like any other stanza.
func (c *Client) SendPassThrough(st *stanza.Element) (string, error) {
	id := st.ID()
	if id == "" {
		id = c.ids.NewID()
		st.SetID(id)
	}
	return id, c.Send(st)
}

// SendAndReceiveWithID sends st and blocks until the reply arrives, the
// timeout or context deadline passes, or the transport fails.
func (c *Client) SendAndReceiveWithID(ctx context.Context, st *stanza.Element) (*stanza.Element, error) {
	id, err := c.SendWithID(st)
	if err != nil {
		return nil, err
	}
	return c.WaitForID(ctx, id)
}

// ReceivedID reports whether the reply to id has arrived.
func (c *Client) ReceivedID(id string) bool {
	return c.ids.State(id) == correlate.Answered
}

// GetID returns the reply to id if it has arrived.
// Once returned the reply is forgotten.
func (c *Client) GetID(id string) (*stanza.Element, bool) {
	return c.ids.Take(id)
}

// CleanID stops waiting for id.
// A reply that arrives later is dispatched like any other stanza.
func (c *Client) CleanID(id string) {
	c.ids.Forget(id)
}

// WaitForID pumps the transport until the reply to id arrives and returns it.
//
// If the client timeout or the context deadline passes first, whichever is
// sooner, id is marked as timed out so that a late reply is discarded, and
// ErrTimeout is returned.
// Canceling ctx has the same effect with ctx.Err() being returned instead.
// A fatal transport error is returned wrapped in ErrFatal.
func (c *Client) WaitForID(ctx context.Context, id string) (*stanza.Element, error) {
	switch c.ids.State(id) {
	case correlate.Unregistered:
		return nil, fmt.Errorf("%w: %q", ErrUnknownID, id)
	case correlate.TimedOut:
		return nil, ErrTimeout
	}

	err := c.pump(ctx, func() bool {
		return c.ids.State(id) != correlate.Pending
	})
	if reply, ok := c.ids.Take(id); ok {
		return reply, nil
	}
	c.ids.Expire(id)
	if err == nil {
		err = ErrTimeout
	}
	return nil, err
}

// pump processes inbound stanzas until done reports true.
// It returns ErrTimeout, the context error, or a fatal transport error.
func (c *Client) pump(ctx context.Context, done func() bool) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	for !done() {
		if c.update != nil {
			c.update()
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrTimeout
			}
			return ctx.Err()
		default:
		}
		wait := c.poll
		if remaining < wait {
			wait = remaining
		}
		status, err := c.t.Process(wait, c)
		if status == transport.Fatal {
			return fmt.Errorf("%w: %w", ErrFatal, err)
		}
		if err != nil {
			c.processError(err)
		}
	}
	return nil
}

// Process pumps the transport once, dispatching at most the stanzas that are
// available within timeout.
// A timeout of zero polls without blocking.
func (c *Client) Process(timeout time.Duration) (transport.Status, error) {
	return c.t.Process(timeout, c)
}

// Serve pumps the transport until ctx is canceled or the transport fails.
// A fatal transport error is returned wrapped in ErrFatal.
func (c *Client) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if c.update != nil {
			c.update()
		}
		status, err := c.t.Process(c.poll, c)
		if status == transport.Fatal {
			return fmt.Errorf("%w: %w", ErrFatal, err)
		}
		if err != nil {
			c.processError(err)
		}
	}
}

// processError logs input that could not be dispatched.
// The stream is still usable so pumping continues.
func (c *Client) processError(err error) {
	c.logger.Warn("error processing input", "sid", c.sid, "err", err)
}

// request sends st, waits for the reply, and converts error replies into a
// stanza.Error.
func (c *Client) request(ctx context.Context, st *stanza.Element) (*stanza.Element, error) {
	reply, err := c.SendAndReceiveWithID(ctx, st)
	if err != nil {
		return nil, err
	}
	if se, ok := stanza.UnmarshalError(reply); ok {
		return reply, se
	}
	return reply, nil
}
