package service

import (
	"fmt"
	"strconv"
	"strings"
)

// stringScores maps common lexical responses onto item scores.
var stringScores = map[string]int{
	"never":      0,
	"no":         0,
	"none":       0,
	"not at all": 0,
	"rarely":     1,
	"sometimes":  1,
	"mild":       1,
	"slightly":   1,
	"often":      2,
	"moderate":   2,
	"moderately": 2,
	"always":     3,
	"severe":     3,
	"very":       3,
	"extremely":  3,
	"yes":        1,
	"true":       1,
}

// SumResponses recursively sums every numeric-convertible leaf in a raw
// response payload. Non-numeric leaves (free text, nil) contribute 0, so
// demographic or narrative fields mixed into a payload never break totals.
func SumResponses(responses map[string]any) int {
	total := 0
	for _, v := range responses {
		total += sumValue(v)
	}
	return total
}

func sumValue(v any) int {
	switch val := v.(type) {
	case map[string]any:
		return SumResponses(val)
	case []any:
		total := 0
		for _, item := range val {
			total += sumValue(item)
		}
		return total
	default:
		n, _ := toInt(v)
		return n
	}
}

// ConvertToNumeric converts a single response value to an item score
// clamped to [0, maxValue]. Strings go through the lexical mapping first,
// then a numeric parse; anything unconvertible scores 0.
func ConvertToNumeric(value any, maxValue int) int {
	var n int
	if s, ok := value.(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		if mapped, ok := stringScores[s]; ok {
			n = mapped
		} else if parsed, ok := toInt(s); ok {
			n = parsed
		}
	} else if parsed, ok := toInt(value); ok {
		n = parsed
	}

	if n < 0 {
		return 0
	}
	if n > maxValue {
		return maxValue
	}
	return n
}

// toInt coerces a scalar to an integer, truncating fractional values.
func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int32:
		return int(val), true
	case int64:
		return int(val), true
	case float32:
		return int(val), true
	case float64:
		return int(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// toFloat coerces a scalar to a float64, returning 0 on failure.
func toFloat(v any) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ReflectScore reflects a raw item score across the scale midpoint, for
// items worded opposite to the scale's direction.
func ReflectScore(raw, min, max int) int {
	return min + max - raw
}

// ItemIndex recovers the 1-based item position from a response key's
// trailing digit run. Accepted forms: "prefix-07", "prefix_07", "q7".
// Keys with no trailing digits are not item keys.
func ItemIndex(key string) (int, bool) {
	end := len(key)
	start := end
	for start > 0 && key[start-1] >= '0' && key[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(key[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SumWithReverseScoring sums a response payload, reflecting items whose
// position appears in reverseItems before aggregation. Keys that do not
// parse to an item index are summed as-is, never reflected.
func SumWithReverseScoring(responses map[string]any, reverseItems map[int]bool, min, max int) int {
	if len(reverseItems) == 0 {
		return SumResponses(responses)
	}

	total := 0
	for key, v := range responses {
		switch v.(type) {
		case map[string]any, []any:
			total += sumValue(v)
			continue
		}
		n, ok := toInt(v)
		if !ok {
			continue
		}
		if idx, parsed := ItemIndex(key); parsed && reverseItems[idx] {
			n = ReflectScore(n, min, max)
		}
		total += n
	}
	return total
}

// CoerceBool maps the accepted truthy and falsy encodings onto a bool.
// Accepted: true/false, 1/0, "true"/"false", "1"/"0", nil, "". Anything
// else is not coercible.
func CoerceBool(v any) (value bool, ok bool) {
	switch val := v.(type) {
	case nil:
		return false, true
	case bool:
		return val, true
	case int:
		if val == 1 {
			return true, true
		}
		if val == 0 {
			return false, true
		}
		return false, false
	case float64:
		if val == 1 {
			return true, true
		}
		if val == 0 {
			return false, true
		}
		return false, false
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1":
			return true, true
		case "false", "0", "":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// conditionMet compares an auxiliary condition value against the expected
// value. When both sides coerce to booleans the comparison is boolean;
// otherwise it falls back to exact string comparison.
func conditionMet(actual any, expected string) bool {
	actualBool, actualOK := CoerceBool(actual)
	expectedBool, expectedOK := CoerceBool(expected)
	if actualOK && expectedOK {
		return actualBool == expectedBool
	}
	return fmt.Sprint(actual) == expected
}
