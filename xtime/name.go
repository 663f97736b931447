// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xtime

import (
	"encoding/xml"
)

func xmlName(local string) xml.Name {
	return xml.Name{Space: NS, Local: local}
}
