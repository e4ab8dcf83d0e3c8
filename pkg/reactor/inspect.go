package reactor

import (
	"fmt"
	"strings"

	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/semerr"
)

// AttributeValue pairs an Attribute with its stored value, returned by
// GetAll.
type AttributeValue struct {
	Attribute attribute.Attribute
	Value     any
}

// Get returns attr's stored value (which may be a *semerr.SemanticError)
// and whether one is present.
func (r *Reactor) Get(attr attribute.Attribute) (any, bool) {
	v, ok := r.attributes[attr]
	return v, ok
}

// GetNode is Get for the (node, name) pair spelled out directly.
func (r *Reactor) GetNode(node attribute.Node, name string) (any, bool) {
	return r.Get(attribute.New(node, name))
}

// GetAll returns every (attribute, value) pair whose attribute's node is
// node, in no particular order.
func (r *Reactor) GetAll(node attribute.Node) []AttributeValue {
	var out []AttributeValue
	for attr, v := range r.attributes {
		if attr.Node() == node {
			out = append(out, AttributeValue{Attribute: attr, Value: v})
		}
	}
	return out
}

// Attributes returns every attribute currently holding a value.
func (r *Reactor) Attributes() []attribute.Attribute {
	out := make([]attribute.Attribute, 0, len(r.attributes))
	for attr := range r.attributes {
		out = append(out, attr)
	}
	return out
}

// Errors returns the root-error set: errors with no cause, whether
// user-signaled or synthesized by the missing-attribute diagnostic. This
// is the natural top-level summary of what went wrong.
func (r *Reactor) Errors() []*semerr.SemanticError {
	out := make([]*semerr.SemanticError, len(r.rootErrors))
	copy(out, r.rootErrors)
	return out
}

// AllErrors returns the union of root errors, every derived error stored
// as an attribute's value, and attributeless-derived errors — the full
// picture for deep diagnostics. Root errors appear once even though they
// may also be an attribute's stored value.
func (r *Reactor) AllErrors() []*semerr.SemanticError {
	seen := make(map[*semerr.SemanticError]bool)
	var all []*semerr.SemanticError

	add := func(e *semerr.SemanticError) {
		if !seen[e] {
			seen[e] = true
			all = append(all, e)
		}
	}

	for _, e := range r.rootErrors {
		add(e)
	}
	for _, v := range r.attributes {
		if e, ok := v.(*semerr.SemanticError); ok && !e.IsRoot() {
			add(e)
		}
	}
	for _, e := range r.attributelessDerived {
		add(e)
	}
	return all
}

// LocationPrinter renders an opaque location handle (typically an AST
// node) as a human-readable string, for ReportErrors.
type LocationPrinter func(location any) string

// ReportErrors formats the root-error set using printLocation for each
// error's effective location.
func (r *Reactor) ReportErrors(printLocation LocationPrinter) string {
	var b strings.Builder
	for _, err := range r.rootErrors {
		loc := err.EffectiveLocation()
		if loc == nil {
			fmt.Fprintf(&b, "error: %s\n", err.Description())
			continue
		}
		fmt.Fprintf(&b, "%s: error: %s\n", printLocation(loc), err.Description())
	}
	return b.String()
}
