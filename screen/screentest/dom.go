// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package screentest implements an in-memory page for testing page objects
// without a browser.
package screentest

import (
	"context"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/zeebo/errs"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrSelector is returned for selectors that can not be compiled.
var ErrSelector = errs.Class("invalid selector")

// Node is an element of the in-memory page. Selectors are matched against
// the html element backing the node, so any css selector works.
type Node struct {
	// Content is returned as the displayed text of the node.
	Content string
	Hidden  bool
	// OnClick is called when the node is clicked.
	OnClick func(ctx context.Context) error
	// OnRead is called before the displayed text is read, an error fails the read.
	OnRead func(ctx context.Context) error

	Children []*Node
	parent   *Node
	element  *html.Node
}

// El creates a node from a compound of an optional tag and classes, e.g.
// "li.row.active" or ".row". The tag defaults to div.
func El(compound string, children ...*Node) *Node {
	tag, classes := "div", ""
	if i := strings.IndexByte(compound, '.'); i >= 0 {
		if i > 0 {
			tag = compound[:i]
		}
		classes = strings.Join(strings.FieldsFunc(compound[i:], func(r rune) bool { return r == '.' }), " ")
	} else if compound != "" {
		tag = compound
	}

	element := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if classes != "" {
		element.Attr = append(element.Attr, html.Attribute{Key: "class", Val: classes})
	}

	node := &Node{element: element}
	node.Append(children...)
	return node
}

// Append adds children to the node.
func (node *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		child.Remove()
		child.parent = node
		node.Children = append(node.Children, child)
		node.element.AppendChild(child.element)
	}
	return node
}

// Remove detaches the node from its parent.
func (node *Node) Remove() {
	if node.parent == nil {
		return
	}
	siblings := node.parent.Children
	for i, sibling := range siblings {
		if sibling == node {
			node.parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	node.parent.element.RemoveChild(node.element)
	node.parent = nil
}

// WithText sets the displayed text.
func (node *Node) WithText(text string) *Node {
	node.Content = text
	return node
}

// WithHidden marks the node hidden.
func (node *Node) WithHidden(hidden bool) *Node {
	node.Hidden = hidden
	return node
}

// WithClick sets the click handler.
func (node *Node) WithClick(fn func(ctx context.Context) error) *Node {
	node.OnClick = fn
	return node
}

// WithRead sets the read hook.
func (node *Node) WithRead(fn func(ctx context.Context) error) *Node {
	node.OnRead = fn
	return node
}

// WithAttr sets an attribute of the backing element.
func (node *Node) WithAttr(key, value string) *Node {
	for i := range node.element.Attr {
		if node.element.Attr[i].Key == key {
			node.element.Attr[i].Val = value
			return node
		}
	}
	node.element.Attr = append(node.element.Attr, html.Attribute{Key: key, Val: value})
	return node
}

// Attr returns the value of an attribute.
func (node *Node) Attr(key string) (string, bool) {
	for _, attr := range node.element.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasClass returns whether node has the class.
func (node *Node) HasClass(class string) bool {
	classes, _ := node.Attr("class")
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

// Visible returns whether the node and all its ancestors are shown.
func (node *Node) Visible() bool {
	for n := node; n != nil; n = n.parent {
		if n.Hidden {
			return false
		}
	}
	return true
}

// Attached returns whether the node is still part of the tree rooted at root.
func (node *Node) Attached(root *Node) bool {
	for n := node; n != nil; n = n.parent {
		if n == root {
			return true
		}
	}
	return false
}

// String returns the css notation of the node.
func (node *Node) String() string {
	classes, _ := node.Attr("class")
	if classes == "" {
		return node.element.Data
	}
	return node.element.Data + "." + strings.Join(strings.Fields(classes), ".")
}

// QueryAll returns all descendants of node, in document order, that match
// the selector. Like querySelectorAll, combinators may match ancestors
// outside of node.
func (node *Node) QueryAll(selector string) ([]*Node, error) {
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil, ErrSelector.New("%q: %w", selector, err)
	}

	matched := map[*html.Node]bool{}
	for _, element := range compiled.MatchAll(node.element) {
		if element != node.element {
			matched[element] = true
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	var found []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children {
			if matched[child.element] {
				found = append(found, child)
			}
			walk(child)
		}
	}
	walk(node)
	return found, nil
}
