package service

import "strings"

// PSQI (Pittsburgh Sleep Quality Index) scoring. Seven components, each
// 0-3, summed to a 0-21 total. Unlike the rule-table instruments the PSQI
// classifies its own total: <=5 is good sleep, above that is poor sleep.

const (
	psqiGoodSleepMax = 5

	psqiCategoryGood = "좋은 수면"
	psqiCategoryPoor = "나쁜 수면"
)

// psqiComponentNames gives the component subscore keys in report order.
var psqiComponentNames = []string{
	"Subjective sleep quality",
	"Sleep latency",
	"Sleep duration",
	"Habitual sleep efficiency",
	"Sleep disturbance",
	"Use of sleep medication",
	"Daytime dysfunction",
}

// disturbanceItems are the nine disturbance sub-items summed for
// component 5. Item "a" (difficulty falling asleep) feeds the latency
// component instead, so it is not counted here.
var disturbanceItems = []string{"b", "c", "d", "e", "f", "g", "h", "i", "j"}

// PSQIScore holds the total and the seven component subscores.
type PSQIScore struct {
	Total     int
	Subscores map[string]int
}

// Category classifies the total as good or poor sleep.
func (s *PSQIScore) Category() string {
	if s.Total <= psqiGoodSleepMax {
		return psqiCategoryGood
	}
	return psqiCategoryPoor
}

// ScorePSQI computes the seven PSQI components from a raw response
// payload. Missing or malformed fields degrade to 0, never error.
func ScorePSQI(responses map[string]any) *PSQIScore {
	disturbances := asMap(responses["psqi_sleep_disturbances"])

	c1 := ConvertToNumeric(responses["sleep_quality"], 3)
	c2 := sleepLatencyScore(responses["sleep_onset"], disturbances["a"])
	c3 := sleepDurationScore(toFloat(responses["sleep_duration"]))
	c4 := sleepEfficiencyScore(
		toFloat(responses["sleep_duration"]),
		responses["hour_to_goto_sleep"],
		responses["wakeup_time"],
	)
	c5 := disturbanceScore(disturbances)
	c6 := ConvertToNumeric(responses["sleep_medication"], 3)
	c7 := daytimeDysfunctionScore(
		responses["daytime_dysfunction"],
		responses["daytime_motivation"],
	)

	components := []int{c1, c2, c3, c4, c5, c6, c7}
	total := 0
	subscores := make(map[string]int, len(components))
	for i, score := range components {
		subscores[psqiComponentNames[i]] = score
		total += score
	}

	return &PSQIScore{Total: total, Subscores: subscores}
}

// sleepLatencyScore combines the minutes-to-fall-asleep bucket with the
// difficulty-falling-asleep rating, then re-buckets the sum.
func sleepLatencyScore(sleepOnset, difficulty any) int {
	onsetMinutes, _ := toInt(sleepOnset)

	onsetScore := 3
	switch {
	case onsetMinutes <= 15:
		onsetScore = 0
	case onsetMinutes <= 30:
		onsetScore = 1
	case onsetMinutes <= 60:
		onsetScore = 2
	}

	combined := onsetScore + ConvertToNumeric(difficulty, 3)
	switch {
	case combined == 0:
		return 0
	case combined <= 2:
		return 1
	case combined <= 4:
		return 2
	default:
		return 3
	}
}

func sleepDurationScore(sleepHours float64) int {
	switch {
	case sleepHours > 7:
		return 0
	case sleepHours >= 6:
		return 1
	case sleepHours >= 5:
		return 2
	default:
		return 3
	}
}

// sleepEfficiencyScore buckets (sleep duration / time in bed) * 100.
// Bed and wake times accept "HH:MM" strings or raw hour numbers; a
// non-positive span wraps past midnight.
func sleepEfficiencyScore(sleepHours float64, bedtime, wakeTime any) int {
	hoursInBed := clockHours(wakeTime) - clockHours(bedtime)
	if hoursInBed <= 0 {
		hoursInBed += 24
	}

	efficiency := (sleepHours / hoursInBed) * 100
	switch {
	case efficiency >= 85:
		return 0
	case efficiency >= 75:
		return 1
	case efficiency >= 65:
		return 2
	default:
		return 3
	}
}

func disturbanceScore(disturbances map[string]any) int {
	total := 0
	for _, item := range disturbanceItems {
		total += ConvertToNumeric(disturbances[item], 3)
	}
	switch {
	case total == 0:
		return 0
	case total <= 9:
		return 1
	case total <= 18:
		return 2
	default:
		return 3
	}
}

func daytimeDysfunctionScore(dysfunction, motivationLoss any) int {
	combined := ConvertToNumeric(dysfunction, 3) + ConvertToNumeric(motivationLoss, 3)
	switch {
	case combined == 0:
		return 0
	case combined <= 2:
		return 1
	case combined <= 4:
		return 2
	default:
		return 3
	}
}

// clockHours converts a time-of-day value to float hours. Accepts "HH:MM"
// strings or numeric hour values.
func clockHours(v any) float64 {
	if s, ok := v.(string); ok && strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		hours := toFloat(parts[0])
		minutes := toFloat(parts[1])
		return hours + minutes/60.0
	}
	return toFloat(v)
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
