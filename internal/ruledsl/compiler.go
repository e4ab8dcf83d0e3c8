package ruledsl

import (
	"fmt"

	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/reactor"
)

// Bindings maps the node names a rule source refers to (e.g. "Decl" in
// "Decl.type") to the concrete attribute.Node the caller wants that name
// to mean for this compilation.
type Bindings map[string]attribute.Node

// Compile parses source and registers every rule it declares against r,
// resolving node names through bindings. It returns the number of rules
// registered. A rule referencing a name absent from bindings, or
// declaring anything other than exactly one export and one dependency
// together with "copy" (copy only ever transfers a single value), is a
// compile error. On a compile error Compile returns 0, but the rules
// declared before the failing one have already been registered against r.
func Compile(source string, bindings Bindings, r *reactor.Reactor) (int, error) {
	set, err := Parse(source)
	if err != nil {
		return 0, fmt.Errorf("ruledsl: %w", err)
	}

	for _, decl := range set.Rules {
		if err := register(decl, bindings, r); err != nil {
			return 0, fmt.Errorf("ruledsl: rule %s: %w", decl.Name, err)
		}
	}
	return len(set.Rules), nil
}

func register(decl *RuleDecl, bindings Bindings, r *reactor.Reactor) error {
	exports, err := resolveAll(decl.Exports, bindings)
	if err != nil {
		return err
	}
	deps, err := resolveAll(decl.Using, bindings)
	if err != nil {
		return err
	}

	if !decl.Copy {
		return fmt.Errorf("rule body must be \"copy\"")
	}
	if len(exports) != 1 || len(deps) != 1 {
		return fmt.Errorf("copy transfers exactly one attribute, got %d export(s) and %d dependenc(y/ies)", len(exports), len(deps))
	}

	r.Rule(exports...).Using(deps...).By(reactor.CopyFirst)
	return nil
}

func resolveAll(refs []*AttrRef, bindings Bindings) ([]attribute.Attribute, error) {
	out := make([]attribute.Attribute, 0, len(refs))
	for _, ref := range refs {
		node, ok := bindings[ref.Node]
		if !ok {
			return nil, fmt.Errorf("unbound node name %q", ref.Node)
		}
		out = append(out, attribute.New(node, ref.Name))
	}
	return out, nil
}
