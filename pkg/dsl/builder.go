package dsl

// Act builds an activity statement: invoke name with the given scope variables
// as arguments and bind the return value to result.
func Act(name string, arguments []string, result string) *Statement {
	return &Statement{
		Activity: &ActivityInvocation{
			Name:      name,
			Arguments: arguments,
			Result:    result,
		},
	}
}

// Seq builds a sequence statement over its elements, in order.
func Seq(elements ...*Statement) *Statement {
	return &Statement{
		Sequence: &Sequence{Elements: elements},
	}
}

// Par builds a parallel statement over its branches.
func Par(branches ...*Statement) *Statement {
	return &Statement{
		Parallel: &Parallel{Branches: branches},
	}
}
