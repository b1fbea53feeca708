package attrs

import "reflect"

// Equal compares two attribute values structurally. Containers and their
// plain forms compare equal, and integers compare equal to floats holding
// the same number.
func Equal(a, b any) bool {
	return equalPlain(plain(a), plain(b))
}

func equalPlain(a, b any) bool {
	switch left := a.(type) {
	case map[string]any:
		right, ok := b.(map[string]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for key, leftValue := range left {
			rightValue, exists := right[key]
			if !exists || !equalPlain(leftValue, rightValue) {
				return false
			}
		}
		return true
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for idx := range left {
			if !equalPlain(left[idx], right[idx]) {
				return false
			}
		}
		return true
	}

	leftNumber, leftIsNumber := asFloat(a)
	rightNumber, rightIsNumber := asFloat(b)
	if leftIsNumber && rightIsNumber {
		leftInt, leftIsInt := a.(int64)
		rightInt, rightIsInt := b.(int64)
		if leftIsInt && rightIsInt {
			return leftInt == rightInt
		}
		return leftNumber == rightNumber
	}

	return reflect.DeepEqual(a, b)
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}
