package resolve

import (
	"strconv"
	"strings"
	"time"

	"sitewright/internal/model"
)

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case time.Time:
		return s.Format("Jan 2, 2006")
	case *model.RichText:
		return s.PlainText()
	default:
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no", "":
			return false, true
		}
	case float64:
		return b != 0, true
	}
	return false, false
}

func isSet(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return s != ""
	case []any:
		return len(s) > 0
	default:
		return true
	}
}

// evalGroup evaluates a condition rule: OR across groups, AND within one.
// lookup resolves a field reference to a value; counts carries materialized
// loop clone counts keyed by loop layer id. An empty rule is true.
func evalGroup(g *model.ConditionGroup, lookup func(*model.FieldRef) (any, bool), counts map[string]int) bool {
	if g.IsZero() {
		return true
	}
	for _, group := range g.Groups {
		all := true
		for _, cond := range group {
			if !evalCondition(cond, lookup, counts) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func evalCondition(c model.Condition, lookup func(*model.FieldRef) (any, bool), counts map[string]int) bool {
	if c.Kind == model.ConditionItemCount {
		count := counts[c.LayerID]
		switch c.Operator {
		case model.OpHasItems:
			return count > 0
		case model.OpHasNoItems:
			return count == 0
		case model.OpCountEquals:
			return count == c.Count
		case model.OpCountOver:
			return count > c.Count
		case model.OpCountUnder:
			return count < c.Count
		default:
			return false
		}
	}

	var value any
	if c.Field != nil && lookup != nil {
		value, _ = lookup(c.Field)
	}
	switch c.Operator {
	case model.OpIsSet:
		return isSet(value)
	case model.OpIsNotSet:
		return !isSet(value)
	}

	switch c.FieldType {
	case model.FieldTypeNumber:
		return evalNumber(c, value)
	case model.FieldTypeDate:
		return evalDate(c, value)
	case model.FieldTypeBoolean:
		return evalBoolean(c, value)
	default:
		return evalText(c, value)
	}
}

func evalText(c model.Condition, value any) bool {
	got := asString(value)
	switch c.Operator {
	case model.OpEquals:
		return got == c.Value
	case model.OpNotEquals:
		return got != c.Value
	case model.OpContains:
		return strings.Contains(got, c.Value)
	case model.OpNotContains:
		return !strings.Contains(got, c.Value)
	default:
		return false
	}
}

func evalNumber(c model.Condition, value any) bool {
	got, ok := asFloat(value)
	want, wantOK := asFloat(c.Value)
	if !ok || !wantOK {
		return false
	}
	switch c.Operator {
	case model.OpEquals:
		return got == want
	case model.OpNotEquals:
		return got != want
	case model.OpGreater:
		return got > want
	case model.OpGreaterEq:
		return got >= want
	case model.OpLess:
		return got < want
	case model.OpLessEq:
		return got <= want
	default:
		return false
	}
}

func evalDate(c model.Condition, value any) bool {
	got, ok := asTime(value)
	want, wantOK := asTime(c.Value)
	if !ok || !wantOK {
		return false
	}
	switch c.Operator {
	case model.OpEquals:
		return got.Equal(want)
	case model.OpBefore:
		return got.Before(want)
	case model.OpAfter:
		return got.After(want)
	case model.OpBetween:
		until, untilOK := asTime(c.Value2)
		if !untilOK {
			return false
		}
		return !got.Before(want) && !got.After(until)
	default:
		return false
	}
}

func evalBoolean(c model.Condition, value any) bool {
	got, ok := asBool(value)
	if !ok {
		return false
	}
	switch c.Operator {
	case model.OpIsTrue:
		return got
	case model.OpIsFalse:
		return !got
	case model.OpEquals:
		want, wantOK := asBool(c.Value)
		return wantOK && got == want
	default:
		return false
	}
}
