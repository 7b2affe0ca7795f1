// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"maps"
	"sort"
)

// Node is a managed host as handed to orchestration tooling.
type Node struct {
	// Name is the unique identity of the node (the PuppetDB certname).
	Name string

	// Hostname is the address used to reach the node.
	Hostname string

	// Username is the remote user applied to every node of an inventory.
	Username string

	// Attributes holds the facts merged onto the node, keyed by fact name.
	Attributes map[string]string
}

// Copy returns a node that shares no mutable state with n.
func (n Node) Copy() Node {
	n.Attributes = maps.Clone(n.Attributes)
	if n.Attributes == nil {
		n.Attributes = map[string]string{}
	}
	return n
}

// NodeSet is a collection of nodes keyed by name.
//
// A NodeSet is filled while an inventory is being built. Once it has been
// published (e.g. returned from a cache) it must be treated as read-only;
// the accessors hand out copies so readers cannot modify the shared instance.
type NodeSet struct {
	nodes map[string]*Node
}

// NewNodeSet creates an empty NodeSet.
func NewNodeSet() *NodeSet {
	return &NodeSet{
		nodes: map[string]*Node{},
	}
}

// Add inserts the node, replacing any node already present with the same name.
func (s *NodeSet) Add(n Node) {
	c := n.Copy()
	s.nodes[c.Name] = &c
}

// SetAttribute sets a single attribute on the named node. It returns false
// if no such node exists.
func (s *NodeSet) SetAttribute(name, key, value string) bool {
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	n.Attributes[key] = value
	return true
}

// Get returns a copy of the named node.
func (s *NodeSet) Get(name string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}
	n, ok := s.nodes[name]
	if !ok {
		return Node{}, false
	}
	return n.Copy(), true
}

// Has reports whether a node with the given name is in the set.
func (s *NodeSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.nodes[name]
	return ok
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.nodes)
}

// Names returns the node names in ascending order.
func (s *NodeSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Nodes returns copies of all nodes ordered by name.
func (s *NodeSet) Nodes() []Node {
	names := s.Names()
	nodes := make([]Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, s.nodes[name].Copy())
	}
	return nodes
}
