// Copyright 2026 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package stanza

import (
	"math"

	"github.com/antchfx/xpath"

	"mellium.im/jabber/internal/attr"
)

// Path is a compiled XPath expression that can be evaluated against element
// trees.
// The document node of the tree is a virtual root whose only child is the
// element being evaluated, so both "/message/body" and "message/body" select
// the body of a message stanza.
// Element namespaces can be matched with namespace-uri() or, as with older
// clients, with an xmlns attribute that is present wherever an element's
// namespace differs from its parent's: "/iq/query[@xmlns='jabber:iq:roster']".
type Path struct {
	expr *xpath.Expr
}

// CompilePath compiles an XPath 1.0 expression.
func CompilePath(expr string) (*Path, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Path{expr: e}, nil
}

// MustCompilePath is like CompilePath but panics if the expression cannot be
// compiled.
func MustCompilePath(expr string) *Path {
	p, err := CompilePath(expr)
	if err != nil {
		panic("stanza: MustCompilePath(" + expr + "): " + err.Error())
	}
	return p
}

// String returns the source text of the expression.
func (p *Path) String() string {
	return p.expr.String()
}

// Match reports whether the expression matches e.
// Node-set results match when non-empty, strings when non-empty, numbers when
// non-zero, and booleans when true.
func (p *Path) Match(e *Element) bool {
	if e == nil {
		return false
	}
	switch v := p.expr.Evaluate(newNavigator(e)).(type) {
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	case *xpath.NodeIterator:
		return v.MoveNext()
	}
	return false
}

// Select returns every element selected by the expression in document order.
// Attribute and text nodes in the result are skipped.
func (p *Path) Select(e *Element) []*Element {
	if e == nil {
		return nil
	}
	var found []*Element
	iter := p.expr.Select(newNavigator(e))
	for iter.MoveNext() {
		n, ok := iter.Current().(*navigator)
		if !ok || n.NodeType() != xpath.ElementNode {
			continue
		}
		found = append(found, n.cur())
	}
	return found
}

// Values returns the string value of every node selected by the expression.
func (p *Path) Values(e *Element) []string {
	if e == nil {
		return nil
	}
	var vals []string
	iter := p.expr.Select(newNavigator(e))
	for iter.MoveNext() {
		vals = append(vals, iter.Current().Value())
	}
	return vals
}

// navigator implements xpath.NodeNavigator over an element tree.
// An element with character data has one text node, which comes before its
// child elements.
type navigator struct {
	doc  *Element
	path []*Element // ancestor-or-self elements of the current node
	pos  []int      // position of each path entry among its parent's nodes
	text bool
	attr int
}

func newNavigator(doc *Element) *navigator {
	return &navigator{doc: doc, attr: -1}
}

func (n *navigator) cur() *Element {
	if len(n.path) == 0 {
		return nil
	}
	return n.path[len(n.path)-1]
}

func (n *navigator) parent() *Element {
	if len(n.path) < 2 {
		return nil
	}
	return n.path[len(n.path)-2]
}

func textOffset(e *Element) int {
	if e.Text != "" {
		return 1
	}
	return 0
}

func (n *navigator) NodeType() xpath.NodeType {
	switch {
	case len(n.path) == 0:
		return xpath.RootNode
	case n.attr >= 0:
		return xpath.AttributeNode
	case n.text:
		return xpath.TextNode
	}
	return xpath.ElementNode
}

func (n *navigator) LocalName() string {
	switch n.NodeType() {
	case xpath.AttributeNode:
		if n.onXMLNS() {
			return "xmlns"
		}
		return n.cur().Attr[n.attr].Name.Local
	case xpath.ElementNode:
		return n.cur().Name.Local
	}
	return ""
}

func (n *navigator) Prefix() string {
	return ""
}

func (n *navigator) NamespaceURL() string {
	switch n.NodeType() {
	case xpath.AttributeNode:
		if n.onXMLNS() {
			return ""
		}
		return n.cur().Attr[n.attr].Name.Space
	case xpath.ElementNode:
		return n.cur().Name.Space
	}
	return ""
}

func (n *navigator) Value() string {
	switch n.NodeType() {
	case xpath.RootNode:
		return n.doc.InnerText()
	case xpath.AttributeNode:
		if n.onXMLNS() {
			return n.cur().Name.Space
		}
		return n.cur().Attr[n.attr].Value
	case xpath.TextNode:
		return n.cur().Text
	}
	return n.cur().InnerText()
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	c.path = append([]*Element(nil), n.path...)
	c.pos = append([]int(nil), n.pos...)
	return &c
}

func (n *navigator) MoveToRoot() {
	n.path = n.path[:0]
	n.pos = n.pos[:0]
	n.text = false
	n.attr = -1
}

func (n *navigator) MoveToParent() bool {
	switch {
	case n.attr >= 0:
		n.attr = -1
	case n.text:
		n.text = false
	case len(n.path) == 0:
		return false
	default:
		n.pop()
	}
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	if n.NodeType() != xpath.ElementNode && n.attr < 0 {
		return false
	}
	e := n.cur()
	for i := n.attr + 1; i < len(e.Attr); i++ {
		if attr.IsNSDecl(e.Attr[i]) {
			continue
		}
		n.attr = i
		return true
	}
	if n.attr < len(e.Attr) && n.declaresNS() {
		n.attr = len(e.Attr)
		return true
	}
	return false
}

// declaresNS reports whether the current element would carry an xmlns
// attribute when encoded, that is whether its namespace differs from its
// parent's.
// Declarations are dropped when decoding so this attribute is synthesized
// after the real ones, letting expressions such as query[@xmlns='...'] match.
func (n *navigator) declaresNS() bool {
	e := n.cur()
	if e.Name.Space == "" {
		return false
	}
	p := n.parent()
	return p == nil || p.Name.Space != e.Name.Space
}

func (n *navigator) onXMLNS() bool {
	return n.attr == len(n.cur().Attr)
}

func (n *navigator) MoveToChild() bool {
	switch n.NodeType() {
	case xpath.RootNode:
		n.push(n.doc, 0)
		return true
	case xpath.ElementNode:
		e := n.cur()
		if e.Text != "" {
			n.text = true
			return true
		}
		if len(e.Children) > 0 {
			n.push(e.Children[0], 0)
			return true
		}
	}
	return false
}

func (n *navigator) MoveToFirst() bool {
	switch n.NodeType() {
	case xpath.TextNode:
		return true
	case xpath.ElementNode:
		p := n.parent()
		if p == nil {
			return true
		}
		if p.Text != "" {
			n.pop()
			n.text = true
			return true
		}
		n.path[len(n.path)-1] = p.Children[0]
		n.pos[len(n.pos)-1] = 0
		return true
	}
	return false
}

func (n *navigator) MoveToNext() bool {
	switch n.NodeType() {
	case xpath.TextNode:
		e := n.cur()
		if len(e.Children) == 0 {
			return false
		}
		n.text = false
		n.push(e.Children[0], 1)
		return true
	case xpath.ElementNode:
		p := n.parent()
		if p == nil {
			return false
		}
		last := len(n.path) - 1
		i := n.pos[last] - textOffset(p) + 1
		if i >= len(p.Children) {
			return false
		}
		n.path[last] = p.Children[i]
		n.pos[last]++
		return true
	}
	return false
}

func (n *navigator) MoveToPrevious() bool {
	if n.NodeType() != xpath.ElementNode {
		return false
	}
	p := n.parent()
	if p == nil {
		return false
	}
	last := len(n.path) - 1
	i := n.pos[last] - textOffset(p)
	switch {
	case i > 0:
		n.path[last] = p.Children[i-1]
		n.pos[last]--
		return true
	case p.Text != "":
		n.pop()
		n.text = true
		return true
	}
	return false
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.doc != n.doc {
		return false
	}
	n.path = append(n.path[:0], o.path...)
	n.pos = append(n.pos[:0], o.pos...)
	n.text = o.text
	n.attr = o.attr
	return true
}

func (n *navigator) push(e *Element, pos int) {
	n.path = append(n.path, e)
	n.pos = append(n.pos, pos)
}

func (n *navigator) pop() {
	n.path = n.path[:len(n.path)-1]
	n.pos = n.pos[:len(n.pos)-1]
}
