package filter

// Filter is a node in a filter tree.
//
// This is a sealed interface: only Condition and Compound (and pointers to
// them) implement it.
type Filter interface {
	filterNode()
}

// Operator is the test a Condition applies to a field value.
type Operator string

const (
	OpEq               Operator = "eq"
	OpNeq              Operator = "neq"
	OpGt               Operator = "gt"
	OpGte              Operator = "gte"
	OpLt               Operator = "lt"
	OpLte              Operator = "lte"
	OpContains         Operator = "contains"
	OpStartsWith       Operator = "startsWith"
	OpEndsWith         Operator = "endsWith"
	OpLike             Operator = "like"
	OpIlike            Operator = "ilike"
	OpIn               Operator = "in"
	OpNotIn            Operator = "notIn"
	OpIsNull           Operator = "isNull"
	OpIsNotNull        Operator = "isNotNull"
	OpBetween          Operator = "between"
	OpArrayContains    Operator = "arrayContains"
	OpArrayContainsAny Operator = "arrayContainsAny"
	OpFullText         Operator = "fullText"
)

// Operators lists every Operator in declaration order.
var Operators = []Operator{
	OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
	OpContains, OpStartsWith, OpEndsWith, OpLike, OpIlike,
	OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpBetween,
	OpArrayContains, OpArrayContainsAny, OpFullText,
}

// Valid reports whether o is one of the known operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpContains, OpStartsWith, OpEndsWith, OpLike, OpIlike,
		OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpBetween,
		OpArrayContains, OpArrayContainsAny, OpFullText:
		return true
	}
	return false
}

// AcceptsNullValue reports whether o gives meaning to a null or absent
// filter value. All other operators evaluate to false for one.
func (o Operator) AcceptsNullValue() bool {
	switch o {
	case OpEq, OpNeq, OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

// LogicalOperator combines the entries of a Compound.
type LogicalOperator string

const (
	And LogicalOperator = "and"
	Or  LogicalOperator = "or"
	Not LogicalOperator = "not"
)

// Valid reports whether o is and, or or not.
func (o LogicalOperator) Valid() bool {
	return o == And || o == Or || o == Not
}

// Condition tests one field of a record.
//
// Field is a dotted path resolved with record.GetFieldValue. String
// comparisons are case-insensitive unless CaseSensitive is set; ilike and
// fullText ignore CaseSensitive and always fold case.
type Condition struct {
	Field         string
	Operator      Operator
	Value         any
	CaseSensitive bool
}

func (Condition) filterNode() {}

// Compound combines nested filters with a logical operator.
type Compound struct {
	Operator   LogicalOperator
	Conditions []Filter
}

func (Compound) filterNode() {}

// Range is the value of a between condition. Both bounds are inclusive.
// A map with "min" and "max" keys is accepted as well.
type Range struct {
	Min any
	Max any
}

// Where builds a Condition.
func Where(field string, op Operator, value any) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

// AllOf builds an and Compound.
func AllOf(filters ...Filter) Compound {
	return Compound{Operator: And, Conditions: filters}
}

// AnyOf builds an or Compound.
func AnyOf(filters ...Filter) Compound {
	return Compound{Operator: Or, Conditions: filters}
}

// NoneOf builds a not Compound. It is false only when every entry holds.
func NoneOf(filters ...Filter) Compound {
	return Compound{Operator: Not, Conditions: filters}
}
