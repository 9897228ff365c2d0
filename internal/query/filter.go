package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/apperror"
)

// FieldType decides how filter values are parsed and which operators apply.
type FieldType int

const (
	FieldString FieldType = iota
	FieldNumber
	FieldDate
)

// Operator is a comparison operator accepted in field[op]=value parameters.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Condition is one parsed filter. Values hold float64, time.Time or string
// depending on the field type; only OpIn carries more than one value.
type Condition struct {
	Field  string
	Op     Operator
	Values []any
}

// ReservedParams are listing parameters that are never treated as filters.
var ReservedParams = []string{"select", "sort", "page", "limit"}

// ParseConditions reads comparison filters of the form field=value and
// field[op]=value. Only fields present in fields are accepted.
func ParseConditions(values url.Values, fields map[string]FieldType) ([]Condition, error) {
	var conds []Condition

	for _, key := range sortedKeys(values) {
		if contains(ReservedParams, key) {
			continue
		}

		field, op, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		ft, ok := fields[field]
		if !ok {
			return nil, apperror.Validation(fmt.Sprintf("cannot filter by %q", field))
		}
		if ft == FieldString && op != OpEq && op != OpIn {
			return nil, apperror.Validation(fmt.Sprintf("operator %q is not supported for %q", op, field))
		}

		for _, raw := range values[key] {
			parts := []string{raw}
			if op == OpIn {
				parts = strings.Split(raw, ",")
			}

			cond := Condition{Field: field, Op: op}
			for _, p := range parts {
				v, err := parseValue(ft, p)
				if err != nil {
					return nil, apperror.Validation(fmt.Sprintf("invalid value %q for %q", p, field))
				}
				cond.Values = append(cond.Values, v)
			}
			conds = append(conds, cond)
		}
	}

	return conds, nil
}

func splitKey(key string) (string, Operator, error) {
	open := strings.Index(key, "[")
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", apperror.Validation(fmt.Sprintf("malformed filter %q", key))
	}

	op := Operator(key[open+1 : len(key)-1])
	switch op {
	case OpGt, OpGte, OpLt, OpLte, OpIn:
		return key[:open], op, nil
	default:
		return "", "", apperror.Validation(fmt.Sprintf("unsupported operator %q", op))
	}
}

func parseValue(ft FieldType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch ft {
	case FieldNumber:
		return strconv.ParseFloat(raw, 64)
	case FieldDate:
		return ParseTime(raw)
	default:
		return raw, nil
	}
}

// Match reports whether actual satisfies the condition. actual must have the same
// dynamic type as the condition values (float64, time.Time or string).
func (c Condition) Match(actual any) bool {
	if c.Op == OpIn {
		for _, v := range c.Values {
			if cmp, ok := Compare(actual, v); ok && cmp == 0 {
				return true
			}
		}
		return false
	}
	if len(c.Values) == 0 {
		return false
	}

	cmp, ok := Compare(actual, c.Values[0])
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return cmp == 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

// Compare orders a against b. ok is false when the types differ.
func Compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	}
	return 0, false
}
