package filter

import (
	"fmt"
	"slices"

	"github.com/roach88/sieve/internal/record"
)

// Evaluate reports whether rec satisfies f.
//
// A nil filter (or a nil *Condition / *Compound) is malformed. rec may be a
// record.Record, any string-keyed map or a value understood by
// record.GetFieldValue.
func Evaluate(f Filter, rec any) (bool, error) {
	return evaluate(f, rec, "")
}

// EvaluateCondition applies a single condition to rec.
func EvaluateCondition(c Condition, rec any) (bool, error) {
	return evaluateCondition(c, rec, "")
}

// EvaluateCompound applies a compound filter to rec.
func EvaluateCompound(c Compound, rec any) (bool, error) {
	return evaluateCompound(c, rec, "")
}

// Apply returns the records that satisfy f, in input order.
// A nil filter keeps every record. The input slice is not modified.
func Apply[R any](records []R, f Filter) ([]R, error) {
	if f == nil {
		return slices.Clone(records), nil
	}

	out := make([]R, 0, len(records))
	for i, rec := range records {
		ok, err := Evaluate(f, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Match applies op to an already resolved field value. fieldValue is
// record.Absent when the field does not exist.
func Match(op Operator, fieldValue, value any, caseSensitive bool) (bool, error) {
	if !op.Valid() {
		return false, unknownOperator(op, "")
	}
	return op.apply(fieldValue, value, caseSensitive), nil
}

func evaluate(f Filter, rec any, path string) (bool, error) {
	switch node := f.(type) {
	case Condition:
		return evaluateCondition(node, rec, path)
	case *Condition:
		if node == nil {
			return false, malformed(path, "nil condition")
		}
		return evaluateCondition(*node, rec, path)
	case Compound:
		return evaluateCompound(node, rec, path)
	case *Compound:
		if node == nil {
			return false, malformed(path, "nil compound")
		}
		return evaluateCompound(*node, rec, path)
	case nil:
		return false, malformed(path, "nil filter")
	default:
		return false, malformed(path, "unsupported filter type %T", f)
	}
}

func evaluateCondition(c Condition, rec any, path string) (bool, error) {
	if !c.Operator.Valid() {
		return false, unknownOperator(c.Operator, path)
	}
	return c.Operator.apply(record.GetFieldValue(rec, c.Field), c.Value, c.CaseSensitive), nil
}

func evaluateCompound(c Compound, rec any, path string) (bool, error) {
	switch c.Operator {
	case And, Not:
		all := true
		for i, child := range c.Conditions {
			ok, err := evaluate(child, rec, childPath(path, i))
			if err != nil {
				return false, err
			}
			if !ok {
				all = false
				break
			}
		}
		if c.Operator == Not {
			return !all, nil
		}
		return all, nil
	case Or:
		for i, child := range c.Conditions {
			ok, err := evaluate(child, rec, childPath(path, i))
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, unknownLogicalOperator(c.Operator, path)
	}
}

func childPath(parent string, i int) string {
	p := fmt.Sprintf("conditions[%d]", i)
	if parent == "" {
		return p
	}
	return parent + "." + p
}
