package service

import (
	"fmt"
	"strings"
)

// Flat-sum calculators for the item-keyed instruments. Items are addressed
// as q1..qN; missing items contribute 0.

const (
	auditItemCount = 10
	auditItemMax   = 4

	beckItemCount = 21
	beckItemMax   = 3

	kmdqItemCount     = 13
	kmdqImpairmentMax = 3
)

// ScoreAUDIT sums the 10 AUDIT items (0-4 each) to a 0-40 total.
func ScoreAUDIT(responses map[string]any) int {
	return sumItems(responses, auditItemCount, auditItemMax)
}

// ScoreBDI sums the 21 BDI items (0-3 each) to a 0-63 total.
func ScoreBDI(responses map[string]any) int {
	return sumItems(responses, beckItemCount, beckItemMax)
}

// ScoreBAI sums the 21 BAI items (0-3 each) to a 0-63 total.
func ScoreBAI(responses map[string]any) int {
	return sumItems(responses, beckItemCount, beckItemMax)
}

// ScoreKMDQ computes the K-MDQ composite: 13 yes/no symptom items, a
// symptom clustering flag, and a 0-3 impairment rating.
func ScoreKMDQ(responses map[string]any) int {
	total := 0
	for i := 1; i <= kmdqItemCount; i++ {
		v, ok := responses[fmt.Sprintf("q%d", i)]
		if !ok {
			continue
		}
		if yesNoValue(v) {
			total++
		}
	}

	if clustering, ok := responses["clustering"]; ok && yesNoValue(clustering) {
		total++
	}

	total += ConvertToNumeric(responses["impairment"], kmdqImpairmentMax)
	return total
}

func sumItems(responses map[string]any, itemCount, itemMax int) int {
	total := 0
	for i := 1; i <= itemCount; i++ {
		if v, ok := responses[fmt.Sprintf("q%d", i)]; ok {
			total += ConvertToNumeric(v, itemMax)
		}
	}
	return total
}

// yesNoValue interprets a yes/no style answer, accepting Korean and
// English affirmatives alongside boolean and numeric encodings.
func yesNoValue(v any) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "1", "true", "예":
			return true
		}
		return false
	}
	if b, ok := CoerceBool(v); ok {
		return b
	}
	n, ok := toInt(v)
	return ok && n != 0
}
