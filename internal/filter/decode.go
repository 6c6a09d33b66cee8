package filter

import (
	"fmt"

	"github.com/roach88/sieve/internal/compare"
	"github.com/roach88/sieve/internal/record"
)

// Decode builds a Filter from an untyped document value, such as the output
// of yaml.v3 or record.DecodeJSON.
//
// A map with a "field" key is a Condition. A map with a "conditions" key is a
// Compound. Anything else is malformed. Operators are checked here so that an
// invalid document fails before any record is evaluated.
func Decode(v any) (Filter, error) {
	return decodeNode(v, "")
}

func decodeNode(v any, path string) (Filter, error) {
	switch f := v.(type) {
	case nil:
		return nil, malformed(path, "filter is null")
	case Filter:
		return f, nil
	}
	converted, err := record.FromValue(v)
	if err != nil {
		return nil, malformed(path, "%v", err)
	}
	m, ok := converted.(record.Record)
	if !ok {
		return nil, malformed(path, "filter must be an object, got %T", v)
	}

	if _, ok := m["field"]; ok {
		return decodeCondition(m, path)
	}
	if _, ok := m["conditions"]; ok {
		return decodeCompound(m, path)
	}
	return nil, malformed(path, "filter has neither \"field\" nor \"conditions\"")
}

func decodeCondition(m record.Record, path string) (Condition, error) {
	var c Condition

	field, ok := m["field"].(string)
	if !ok {
		return c, malformed(path, "field must be a string, got %T", m["field"])
	}
	c.Field = field

	op, ok := m["operator"].(string)
	if !ok {
		return c, malformed(path, "operator must be a string, got %T", m["operator"])
	}
	c.Operator = Operator(op)
	if !c.Operator.Valid() {
		return c, unknownOperator(c.Operator, path)
	}

	if raw, ok := m["caseSensitive"]; ok && raw != nil {
		cs, ok := raw.(bool)
		if !ok {
			return c, malformed(path, "caseSensitive must be a boolean, got %T", raw)
		}
		c.CaseSensitive = cs
	}

	// A missing value key stays absent so eq can distinguish it from null.
	if value, ok := m["value"]; ok {
		c.Value = value
	} else {
		c.Value = record.Absent
	}
	return c, nil
}

func decodeCompound(m record.Record, path string) (Compound, error) {
	var c Compound

	op, ok := m["operator"].(string)
	if !ok {
		return c, malformed(path, "operator must be a string, got %T", m["operator"])
	}
	c.Operator = LogicalOperator(op)
	if !c.Operator.Valid() {
		return c, unknownLogicalOperator(c.Operator, path)
	}

	list, ok := compare.AsList(m["conditions"])
	if !ok {
		return c, malformed(path, "conditions must be an array, got %T", m["conditions"])
	}
	c.Conditions = make([]Filter, len(list))
	for i, elem := range list {
		child, err := decodeNode(elem, childPath(path, i))
		if err != nil {
			return c, err
		}
		c.Conditions[i] = child
	}
	return c, nil
}

// Encode renders f as the document shape Decode accepts.
func Encode(f Filter) (map[string]any, error) {
	return encode(f, "")
}

func encode(f Filter, path string) (map[string]any, error) {
	switch node := f.(type) {
	case Condition:
		return encodeCondition(node), nil
	case *Condition:
		if node == nil {
			return nil, malformed(path, "nil condition")
		}
		return encodeCondition(*node), nil
	case Compound:
		return encodeCompound(node, path)
	case *Compound:
		if node == nil {
			return nil, malformed(path, "nil compound")
		}
		return encodeCompound(*node, path)
	case nil:
		return nil, malformed(path, "nil filter")
	default:
		return nil, malformed(path, "unsupported filter type %T", f)
	}
}

func encodeCondition(c Condition) map[string]any {
	out := map[string]any{
		"field":    c.Field,
		"operator": string(c.Operator),
	}
	switch v := c.Value.(type) {
	case record.AbsentValue:
	case Range:
		out["value"] = map[string]any{"min": v.Min, "max": v.Max}
	case *Range:
		if v != nil {
			out["value"] = map[string]any{"min": v.Min, "max": v.Max}
		}
	default:
		out["value"] = v
	}
	if c.CaseSensitive {
		out["caseSensitive"] = true
	}
	return out
}

func encodeCompound(c Compound, path string) (map[string]any, error) {
	children := make([]any, len(c.Conditions))
	for i, child := range c.Conditions {
		enc, err := encode(child, childPath(path, i))
		if err != nil {
			return nil, err
		}
		children[i] = enc
	}
	return map[string]any{
		"operator":   string(c.Operator),
		"conditions": children,
	}, nil
}

// String renders a filter for logs and error messages.
func String(f Filter) string {
	switch node := f.(type) {
	case Condition:
		return conditionString(node)
	case *Condition:
		if node != nil {
			return conditionString(*node)
		}
	case Compound:
		return compoundString(node)
	case *Compound:
		if node != nil {
			return compoundString(*node)
		}
	}
	return "<nil>"
}

func conditionString(c Condition) string {
	if c.Operator == OpIsNull || c.Operator == OpIsNotNull {
		return fmt.Sprintf("%s %s", c.Field, c.Operator)
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

func compoundString(c Compound) string {
	s := string(c.Operator) + "("
	for i, child := range c.Conditions {
		if i > 0 {
			s += ", "
		}
		s += String(child)
	}
	return s + ")"
}
