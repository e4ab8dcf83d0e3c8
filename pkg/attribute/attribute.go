// Package attribute defines the identity key the Reactor uses for every
// value it stores: a (node, name) pair.
package attribute

import "fmt"

// Node is an opaque identity, typically an AST node. The Reactor never
// inspects a Node's contents; it only uses it as a map key by reference.
// A nil Node denotes a "global" attribute not tied to any particular node.
type Node any

// Attribute is the pair (node, name). Two Attributes are equal only if
// their nodes are the same object (Go's == on interfaces holding pointers
// compares identity for pointer-shaped dynamic types) and their names are
// equal strings. Attribute is safe to use as a map key and is immutable
// once constructed.
type Attribute struct {
	node Node
	name string
}

// New constructs an Attribute for the given node and name.
func New(node Node, name string) Attribute {
	return Attribute{node: node, name: name}
}

// Node returns the attribute's node.
func (a Attribute) Node() Node {
	return a.node
}

// Name returns the attribute's name.
func (a Attribute) Name() string {
	return a.name
}

// String returns a compact diagnostic representation: "(node :: name)".
func (a Attribute) String() string {
	return fmt.Sprintf("(%v :: %s)", a.node, a.name)
}
