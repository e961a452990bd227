package dsl

import "fmt"

// ValidationError reports a definition problem found before a run starts:
// an unresolvable activity name, an argument no prior statement defines, or
// two parallel branches writing the same result name.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dsl: %s: %s", e.Path, e.Message)
}

// Validate statically checks the tree against the initial variable bindings.
// lookup resolves activity names (nil skips name resolution, for callers that
// register activities later).
//
// The analysis mirrors execution order: a sequence element sees everything
// earlier elements defined; every parallel branch sees only the definitions
// available at fan-out, and their writes merge afterwards. A read of a name no
// sequence-ordered predecessor wrote fails here rather than yielding a nil at
// run time.
func Validate(root *Statement, vars map[string]any, lookup func(name string) bool) error {
	if root == nil {
		return &ValidationError{Path: "root", Message: "missing root statement"}
	}
	if err := checkShape(root, "root"); err != nil {
		return err
	}
	defined := make(map[string]bool, len(vars))
	for name := range vars {
		defined[name] = true
	}
	_, err := validate(root, "root", defined, lookup)
	return err
}

// validate returns the names the statement writes. defined is read-only here;
// sequence walking owns the accumulation.
func validate(s *Statement, path string, defined map[string]bool, lookup func(string) bool) (map[string]bool, error) {
	switch {
	case s.Activity != nil:
		inv := s.Activity
		if lookup != nil && !lookup(inv.Name) {
			return nil, &ValidationError{Path: path, Message: fmt.Sprintf("unknown activity %q", inv.Name)}
		}
		for _, arg := range inv.Arguments {
			if !defined[arg] {
				return nil, &ValidationError{Path: path, Message: fmt.Sprintf("argument %q is never defined before this point", arg)}
			}
		}
		writes := map[string]bool{}
		if inv.Result != "" {
			writes[inv.Result] = true
		}
		return writes, nil

	case s.Sequence != nil:
		scope := cloneSet(defined)
		writes := map[string]bool{}
		for i, el := range s.Sequence.Elements {
			w, err := validate(el, fmt.Sprintf("%s/sequence[%d]", path, i), scope, lookup)
			if err != nil {
				return nil, err
			}
			for name := range w {
				scope[name] = true
				writes[name] = true
			}
		}
		return writes, nil

	case s.Parallel != nil:
		writes := map[string]bool{}
		owner := map[string]int{}
		for i, br := range s.Parallel.Branches {
			branchPath := fmt.Sprintf("%s/parallel[%d]", path, i)
			w, err := validate(br, branchPath, defined, lookup)
			if err != nil {
				return nil, err
			}
			for name := range w {
				if prev, clash := owner[name]; clash {
					return nil, &ValidationError{
						Path:    branchPath,
						Message: fmt.Sprintf("result %q already written by branch %d", name, prev),
					}
				}
				owner[name] = i
				writes[name] = true
			}
		}
		return writes, nil
	}

	return nil, &ValidationError{Path: path, Message: "empty statement"}
}

func cloneSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
