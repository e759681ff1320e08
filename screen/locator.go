// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package screen

import (
	"strconv"
	"strings"
)

type opKind int

const (
	opQuery opKind = iota
	opVisible
	opNth
	opLast
)

type op struct {
	kind     opKind
	selector string
	index    int
}

// Locator describes how to find elements on a page. It is resolved against
// the live page every time an action runs, so it never holds stale nodes.
//
// The zero Locator resolves to the document itself.
type Locator struct {
	ops []op
}

// Locate returns a locator matching all elements for the css selector.
func Locate(selector string) Locator {
	return Locator{}.Locate(selector)
}

// Locate returns a locator matching descendants of the current matches.
func (loc Locator) Locate(selector string) Locator {
	return loc.with(op{kind: opQuery, selector: selector})
}

// Visible keeps only the matches that are currently visible.
func (loc Locator) Visible() Locator {
	return loc.with(op{kind: opVisible})
}

// Nth picks a single match by index. Negative index counts from the end.
func (loc Locator) Nth(index int) Locator {
	return loc.with(op{kind: opNth, index: index})
}

// First is a shorthand for Nth(0).
func (loc Locator) First() Locator {
	return loc.Nth(0)
}

// Last picks the last match.
func (loc Locator) Last() Locator {
	return loc.with(op{kind: opLast})
}

func (loc Locator) with(next op) Locator {
	ops := make([]op, len(loc.ops), len(loc.ops)+1)
	copy(ops, loc.ops)
	return Locator{ops: append(ops, next)}
}

// String implements fmt.Stringer.
func (loc Locator) String() string {
	if len(loc.ops) == 0 {
		return "document"
	}

	parts := make([]string, 0, len(loc.ops))
	for _, o := range loc.ops {
		switch o.kind {
		case opQuery:
			parts = append(parts, "css="+o.selector)
		case opVisible:
			parts = append(parts, "visible=true")
		case opNth:
			parts = append(parts, "nth="+strconv.Itoa(o.index))
		case opLast:
			parts = append(parts, "last")
		}
	}
	return strings.Join(parts, " >> ")
}
