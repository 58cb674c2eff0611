// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package form normalizes flat browser form payloads into nested documents.

Browser forms submit flat string keys. This package rebuilds the intended
structure so that form posts and JSON bodies validate against the same
schema:

  - Framework-injected keys (prefix "$ACTION") are stripped first.
  - A key repeated in the payload collapses into an array of its values.
  - Dotted keys rebuild nested objects and arrays.

# Key Grammar

A key is a sequence of segments separated by '.':

	key      = segment *("." segment)
	segment  = index / field
	index    = 1*DIGIT          ; addresses an array position
	field    = anything else    ; addresses an object member

"address.city" becomes {"address": {"city": ...}}; "items.0.name" becomes
{"items": [{"name": ...}]}. The grammar is deliberately small and is
unit-tested directly, independent of any web framework form type.
*/
package form

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// frameworkKeyPrefix marks internal keys injected by form tooling that must
// never reach validation.
const frameworkKeyPrefix = "$ACTION"

// Normalize converts flat url.Values into a nested map[string]any document.
//
// Values never fails: unparseable index segments are treated as field names,
// so a hand-crafted hostile payload degrades to a weird-but-harmless shape
// instead of panicking.
func Normalize(values url.Values) map[string]any {
	root := newNode()

	// Deterministic key order keeps array growth stable.
	keys := make([]string, 0, len(values))
	for key := range values {
		if strings.HasPrefix(key, frameworkKeyPrefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := values[key]

		// Repeated keys collapse to an array of their values.
		var value any
		if len(entry) > 1 {
			collapsed := make([]any, len(entry))
			for i, v := range entry {
				collapsed[i] = v
			}
			value = collapsed
		} else if len(entry) == 1 {
			value = entry[0]
		} else {
			continue
		}

		root.set(strings.Split(key, "."), value)
	}

	return root.materializeObject()
}

// # Internal Tree Representation
//
// Keys are first merged into a tree of nodes; arrays and objects are only
// materialized at the end, once every sibling key has been seen. This is
// what lets "items.0.name" and "items.1.name" land in the same slice.

type node struct {
	// value holds a leaf payload. Non-nil only for leaves.
	value any

	// fields holds object members keyed by field name.
	fields map[string]*node

	// indices holds array members keyed by numeric position.
	indices map[int]*node
}

func newNode() *node {
	return &node{
		fields:  make(map[string]*node),
		indices: make(map[int]*node),
	}
}

// set walks the segment path, creating intermediate nodes as needed, and
// places the value at the leaf. A later write to the same exact path wins.
func (n *node) set(segments []string, value any) {
	if len(segments) == 0 {
		n.value = value
		return
	}

	head, rest := segments[0], segments[1:]

	if index, err := strconv.Atoi(head); err == nil && index >= 0 {
		child, ok := n.indices[index]
		if !ok {
			child = newNode()
			n.indices[index] = child
		}
		child.set(rest, value)
		return
	}

	child, ok := n.fields[head]
	if !ok {
		child = newNode()
		n.fields[head] = child
	}
	child.set(rest, value)
}

// materialize converts the node tree into plain maps, slices, and strings.
// A node addressed by both field and index segments materializes as an
// object; the index entries become string-keyed members so no data is lost.
func (n *node) materialize() any {
	if len(n.fields) == 0 && len(n.indices) == 0 {
		return n.value
	}

	if len(n.fields) > 0 {
		return n.materializeObject()
	}

	return n.materializeArray()
}

func (n *node) materializeObject() map[string]any {
	result := make(map[string]any, len(n.fields)+len(n.indices))
	for name, child := range n.fields {
		result[name] = child.materialize()
	}
	for index, child := range n.indices {
		result[strconv.Itoa(index)] = child.materialize()
	}
	return result
}

func (n *node) materializeArray() []any {
	positions := make([]int, 0, len(n.indices))
	for index := range n.indices {
		positions = append(positions, index)
	}
	sort.Ints(positions)

	// Sparse indices compact down; "items.0" and "items.5" yield a
	// two-element slice, mirroring how browsers drop unchecked rows.
	result := make([]any, 0, len(positions))
	for _, index := range positions {
		result = append(result, n.indices[index].materialize())
	}
	return result
}
