package hoist

import (
	"fmt"

	"github.com/npillmayer/relex/sexp"
)

// maxExpandSteps caps a single fixpoint loop. The fingerprint guard
// catches cyclic expansions; the cap catches expansions that grow
// without ever repeating.
const maxExpandSteps = 1000

// expandFully drives env.ExpandStep to a fixpoint. The fixpoint signal
// is pointer identity: an environment that has nothing to expand returns
// its input unchanged. Expansion errors propagate unchanged; they are
// the macro collaborator's errors, not reinterpreted here.
func expandFully(form sexp.Node, env Env) (sexp.Node, error) {
	seen := make(map[string]bool)
	for step := 0; step < maxExpandSteps; step++ {
		next, err := env.ExpandStep(form)
		if err != nil {
			return nil, err
		}
		if next == form {
			return form, nil
		}
		if fp, err := sexp.Fingerprint(next); err != nil {
			tracer().Errorf("expansion fingerprint: %v", err)
		} else if seen[fp] {
			return nil, fmt.Errorf("hoist: macro expansion cycles at (%s ...)", headName(form))
		} else {
			seen[fp] = true
		}
		form = next
	}
	return nil, fmt.Errorf("hoist: macro expansion of (%s ...) did not reach a fixpoint after %d steps",
		headName(form), maxExpandSteps)
}

func headName(form sexp.Node) string {
	if q, ok := form.(*sexp.Seq); ok {
		if head, ok := q.HeadSymbol(); ok {
			return head
		}
	}
	return "?"
}
