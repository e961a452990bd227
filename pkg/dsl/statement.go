package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Statement is one node of an activity graph. Exactly one case is populated:
// an activity invocation, an ordered sequence, or a parallel fan-out.
type Statement struct {
	Activity *ActivityInvocation `json:"activity,omitempty" yaml:"activity,omitempty" mapstructure:"activity"`
	Sequence *Sequence           `json:"sequence,omitempty" yaml:"sequence,omitempty" mapstructure:"sequence"`
	Parallel *Parallel           `json:"parallel,omitempty" yaml:"parallel,omitempty" mapstructure:"parallel"`
}

// ActivityInvocation names a registered activity, the scope variables passed
// as positional arguments, and the scope variable its return value binds to.
type ActivityInvocation struct {
	Name      string   `json:"name" yaml:"name" mapstructure:"name"`
	Arguments []string `json:"arguments" yaml:"arguments" mapstructure:"arguments"`
	Result    string   `json:"result" yaml:"result" mapstructure:"result"`
}

// Sequence executes its elements strictly in order on the shared scope.
type Sequence struct {
	Elements []*Statement `json:"elements" yaml:"elements" mapstructure:"elements"`
}

// Parallel executes all branches concurrently against the shared scope.
type Parallel struct {
	Branches []*Statement `json:"branches" yaml:"branches" mapstructure:"branches"`
}

// populated counts the variant cases set on the statement.
func (s *Statement) populated() int {
	n := 0
	if s.Activity != nil {
		n++
	}
	if s.Sequence != nil {
		n++
	}
	if s.Parallel != nil {
		n++
	}
	return n
}

// Decode builds a statement tree from a raw payload (the shape a request body
// decodes into). It rejects nodes with zero or multiple variant cases.
func Decode(raw map[string]any) (*Statement, error) {
	var stmt Statement
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &stmt,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("dsl: build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("dsl: decode statement: %w", err)
	}
	if err := checkShape(&stmt, "root"); err != nil {
		return nil, err
	}
	return &stmt, nil
}

// UnmarshalJSON decodes a statement and enforces the one-of shape eagerly so
// malformed trees fail at the boundary, not mid-run.
func (s *Statement) UnmarshalJSON(data []byte) error {
	type alias Statement
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Statement(a)
	return checkShape(s, "statement")
}

func checkShape(s *Statement, at string) error {
	switch s.populated() {
	case 0:
		return fmt.Errorf("dsl: %s: empty statement, expected one of activity, sequence, parallel", at)
	case 1:
	default:
		return fmt.Errorf("dsl: %s: statement must populate exactly one of activity, sequence, parallel", at)
	}
	switch {
	case s.Activity != nil:
		if s.Activity.Name == "" {
			return fmt.Errorf("dsl: %s: activity name must not be empty", at)
		}
	case s.Sequence != nil:
		for i, el := range s.Sequence.Elements {
			if el == nil {
				return fmt.Errorf("dsl: %s: sequence element %d is nil", at, i)
			}
			if err := checkShape(el, fmt.Sprintf("%s/sequence[%d]", at, i)); err != nil {
				return err
			}
		}
	case s.Parallel != nil:
		for i, br := range s.Parallel.Branches {
			if br == nil {
				return fmt.Errorf("dsl: %s: parallel branch %d is nil", at, i)
			}
			if err := checkShape(br, fmt.Sprintf("%s/parallel[%d]", at, i)); err != nil {
				return err
			}
		}
	}
	return nil
}
