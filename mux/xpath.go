// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package mux

import (
	"fmt"

	"mellium.im/jabber/stanza"
)

type namedHandler struct {
	name string
	h    Handler
}

type xpathEntry struct {
	expr     string
	path     *stanza.Path
	handlers []namedHandler
}

// SetXPath binds h under name to stanzas matching the XPath expression expr.
// Several handlers may share one expression as long as their names differ.
// Rebinding an existing name replaces the handler in place, keeping its
// position, and a nil handler removes the name.
func (r *Registry) SetXPath(expr, name string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, e := range r.xpath {
		if e.expr == expr {
			idx = i
			break
		}
	}

	if h == nil {
		if idx == -1 {
			return nil
		}
		e := r.xpath[idx]
		for i, nh := range e.handlers {
			if nh.name == name {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				break
			}
		}
		if len(e.handlers) == 0 {
			r.xpath = append(r.xpath[:idx:idx], r.xpath[idx+1:]...)
		}
		return nil
	}

	if idx == -1 {
		path, err := stanza.CompilePath(expr)
		if err != nil {
			return fmt.Errorf("mux: bad XPath expression %q: %w", expr, err)
		}
		r.xpath = append(r.xpath, &xpathEntry{expr: expr, path: path})
		idx = len(r.xpath) - 1
	}
	e := r.xpath[idx]
	for i, nh := range e.handlers {
		if nh.name == name {
			e.handlers[i].h = h
			return nil
		}
	}
	e.handlers = append(e.handlers, namedHandler{name: name, h: h})
	return nil
}

// RemoveXPath removes every handler bound to expr.
func (r *Registry) RemoveXPath(expr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.xpath {
		if e.expr == expr {
			r.xpath = append(r.xpath[:i:i], r.xpath[i+1:]...)
			return
		}
	}
}

// HasXPath reports whether any XPath handler is bound.
func (r *Registry) HasXPath() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.xpath) > 0
}

// XPathHandlers returns the handlers whose expressions match st, in the order
// their expressions (and, within an expression, their names) were first bound.
func (r *Registry) XPathHandlers(st *stanza.Element) []Handler {
	r.mu.RLock()
	entries := make([]xpathEntry, 0, len(r.xpath))
	for _, e := range r.xpath {
		entries = append(entries, xpathEntry{
			path:     e.path,
			handlers: append([]namedHandler(nil), e.handlers...),
		})
	}
	r.mu.RUnlock()

	var matched []Handler
	for _, e := range entries {
		if !e.path.Match(st) {
			continue
		}
		for _, nh := range e.handlers {
			matched = append(matched, nh.h)
		}
	}
	return matched
}
