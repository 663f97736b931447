// Copyright 2020 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package jabber

import (
	"context"

	"mellium.im/jabber/stanza"
	"mellium.im/jabber/xmlrpc"
)

// RPCCall invokes an XML-RPC method on "to" and returns the decoded params of
// the response.
// A fault is returned as an xmlrpc.Fault error.
func (c *Client) RPCCall(ctx context.Context, to, method string, params ...any) ([]any, error) {
	q, err := xmlrpc.EncodeCall(method, params...)
	if err != nil {
		return nil, err
	}
	reply, err := c.request(ctx, stanza.NewIQ(stanza.SetIQ, to, q))
	if err != nil {
		return nil, err
	}
	return xmlrpc.ParseResponse(reply)
}
