package model

// ConditionGroup is a visibility rule: a disjunction of conjunctions. The
// layer is visible when any group's conditions all hold. An empty rule is
// always true.
type ConditionGroup struct {
	Groups [][]Condition `json:"groups,omitempty"`
}

// IsZero reports whether the rule has no conditions at all.
func (g *ConditionGroup) IsZero() bool {
	return g == nil || len(g.Groups) == 0
}

type ConditionKind string

const (
	ConditionField     ConditionKind = "field"
	ConditionItemCount ConditionKind = "item_count"
)

// FieldValueType is the declared type a field condition compares under.
type FieldValueType string

const (
	FieldTypeText    FieldValueType = "text"
	FieldTypeNumber  FieldValueType = "number"
	FieldTypeDate    FieldValueType = "date"
	FieldTypeBoolean FieldValueType = "boolean"
)

type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpIsSet       ConditionOperator = "is_set"
	OpIsNotSet    ConditionOperator = "is_not_set"
	OpGreater     ConditionOperator = "greater_than"
	OpGreaterEq   ConditionOperator = "greater_than_or_equal"
	OpLess        ConditionOperator = "less_than"
	OpLessEq      ConditionOperator = "less_than_or_equal"
	OpBefore      ConditionOperator = "before"
	OpAfter       ConditionOperator = "after"
	OpBetween     ConditionOperator = "between"
	OpIsTrue      ConditionOperator = "is_true"
	OpIsFalse     ConditionOperator = "is_false"
	OpHasItems    ConditionOperator = "has_items"
	OpHasNoItems  ConditionOperator = "has_no_items"
	OpCountEquals ConditionOperator = "count_equals"
	OpCountOver   ConditionOperator = "count_greater_than"
	OpCountUnder  ConditionOperator = "count_less_than"
)

// Condition is one atomic check: either a comparison over a resolved field
// value or a count check against a loop's materialized clone count. LayerID
// names the loop layer for item-count conditions.
type Condition struct {
	Kind      ConditionKind     `json:"kind"`
	Field     *FieldRef         `json:"field,omitempty"`
	FieldType FieldValueType    `json:"field_type,omitempty"`
	Operator  ConditionOperator `json:"operator"`
	Value     string            `json:"value,omitempty"`
	Value2    string            `json:"value2,omitempty"`
	LayerID   string            `json:"layer_id,omitempty"`
	Count     int               `json:"count,omitempty"`
}
