package filter

import (
	"fmt"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/record"
)

// ValidationResult lists shapes in a filter tree that can never match.
//
// Such filters still evaluate without error; they simply reject every
// record. Warnings help callers find typos before running a query.
type ValidationResult struct {
	// OK is true when no warnings were found.
	OK bool

	// Warnings lists the problems found.
	Warnings []Warning
}

// Warning is one problem at one node of a filter tree.
type Warning struct {
	// Path locates the node, e.g. "conditions[0].conditions[2]". Empty for
	// the root.
	Path    string
	Message string
}

func (w Warning) String() string {
	path := w.Path
	if path == "" {
		path = "filter"
	}
	return path + ": " + w.Message
}

// Validate walks f and reports conditions that will always be false, plus
// the structural errors Evaluate would return.
//
// Validate is a pure function with no side effects.
func Validate(f Filter) ValidationResult {
	v := &validator{
		warnings: []Warning{},
	}
	v.validate(f, "")

	return ValidationResult{
		OK:       len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []Warning
}

func (v *validator) addWarning(path, format string, args ...any) {
	v.warnings = append(v.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) validate(f Filter, path string) {
	switch node := f.(type) {
	case Condition:
		v.validateCondition(node, path)
	case *Condition:
		if node == nil {
			v.addWarning(path, "nil condition")
			return
		}
		v.validateCondition(*node, path)
	case Compound:
		v.validateCompound(node, path)
	case *Compound:
		if node == nil {
			v.addWarning(path, "nil compound")
			return
		}
		v.validateCompound(*node, path)
	default:
		v.addWarning(path, "malformed filter %T", f)
	}
}

func (v *validator) validateCompound(c Compound, path string) {
	if !c.Operator.Valid() {
		v.addWarning(path, "unknown logical operator %q", c.Operator)
	}
	if len(c.Conditions) == 0 {
		switch c.Operator {
		case Or:
			v.addWarning(path, "empty or never matches")
		case Not:
			v.addWarning(path, "empty not never matches")
		}
	}
	for i, child := range c.Conditions {
		v.validate(child, childPath(path, i))
	}
}

func (v *validator) validateCondition(c Condition, path string) {
	if c.Field == "" {
		v.addWarning(path, "empty field path")
	}
	if !c.Operator.Valid() {
		v.addWarning(path, "unknown operator %q", c.Operator)
		return
	}

	if !c.Operator.AcceptsNullValue() && compare.Normalize(c.Value, true).IsNullish() {
		v.addWarning(path, "%s with a null value never matches", c.Operator)
		return
	}

	switch c.Operator {
	case OpIn, OpNotIn, OpArrayContainsAny:
		list, ok := compare.AsList(c.Value)
		if !ok {
			v.addWarning(path, "%s requires an array value, got %T", c.Operator, c.Value)
		} else if len(list) == 0 && c.Operator != OpNotIn {
			v.addWarning(path, "%s with an empty array never matches", c.Operator)
		}
	case OpBetween:
		if _, _, ok := bounds(c.Value); !ok {
			v.addWarning(path, "between requires a {min, max} value, got %T", c.Value)
		}
	case OpGt, OpGte, OpLt, OpLte:
		if k := compare.Normalize(c.Value, true).Kind; k == compare.KindList || k == compare.KindObject {
			v.addWarning(path, "%s against a %s only orders by string form", c.Operator, k)
		}
	case OpContains, OpStartsWith, OpEndsWith, OpLike, OpIlike, OpFullText:
		if _, ok := compare.StringForm(c.Value); !ok {
			v.addWarning(path, "%s requires a string value, got %T", c.Operator, c.Value)
		}
	case OpIsNull, OpIsNotNull:
		if !record.IsAbsent(c.Value) && c.Value != nil {
			v.addWarning(path, "%s ignores its value", c.Operator)
		}
	}
}
