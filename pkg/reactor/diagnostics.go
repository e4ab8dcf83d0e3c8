package reactor

import (
	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/semerr"
)

// runMissingAttributeDiagnostic inspects every rule that never fired once
// the queue has drained. A rule silenced by an upstream error (one of its
// dependencies already holds a SemanticError) is excluded — that is
// expected, not a specification bug. What remains names a real bug: some
// dependency the surviving rules needed was never supplied by anything.
//
// For each such dependency that is neither already in the attribute store
// nor still reachable as the export of another untriggered rule, a root
// "missing attribute" error is synthesized and published, which then
// cascades through the ordinary propagation machinery to every
// transitive dependent. No further queue draining is required: error
// propagation enqueues nothing.
func (r *Reactor) runMissingAttributeDiagnostic() {
	untriggered := make([]*Rule, 0)
	for _, rule := range r.allRules {
		if rule.fired {
			continue
		}
		if r.dependsOnErrorValue(rule) {
			continue
		}
		untriggered = append(untriggered, rule)
	}

	untriggeredExports := make(map[attribute.Attribute]bool)
	for _, rule := range untriggered {
		for _, exp := range rule.exports {
			untriggeredExports[exp] = true
		}
	}

	reported := make(map[attribute.Attribute]bool)
	for _, rule := range untriggered {
		for _, dep := range rule.dependencies {
			if reported[dep] {
				continue
			}
			reported[dep] = true

			if _, present := r.attributes[dep]; present {
				continue
			}
			if untriggeredExports[dep] {
				// Might still be supplied indirectly by another
				// untriggered rule; not yet a confirmed bug.
				continue
			}

			err := semerr.New("missing attribute "+dep.String(), dep.Node())
			r.setValue(dep, err)
		}
	}
}

func (r *Reactor) dependsOnErrorValue(rule *Rule) bool {
	for _, dep := range rule.dependencies {
		if v, ok := r.attributes[dep]; ok {
			if _, isErr := v.(*semerr.SemanticError); isErr {
				return true
			}
		}
	}
	return false
}
