package report

import (
	"fmt"
	"strings"

	"github.com/survey-scoring-server/internal/domain"
)

// Korean narrative report generation. The prompt asks the language model
// to act as a clinical psychologist summarizing screening results; when
// generation is unavailable the fallback renders the raw results with a
// notice instead.

const systemPrompt = `당신은 임상심리 전문가입니다. 아래 심리검사 결과를 바탕으로 ` +
	`환자가 이해하기 쉬운 한국어 소견서를 작성하세요. 진단을 단정하지 말고, ` +
	`선별검사 결과임을 명시하며, 필요한 경우 전문가 상담을 권유하세요.`

// BuildPrompt assembles the chat messages for a narrative report over a
// patient's scored results.
func BuildPrompt(patientID string, results []*domain.ScoreResult) []Message {
	var b strings.Builder

	fmt.Fprintf(&b, "환자 ID: %s\n\n검사 결과:\n", patientID)
	for _, result := range results {
		fmt.Fprintf(&b, "- 검사: %s\n", result.ToolName)
		if result.TotalScore != nil {
			fmt.Fprintf(&b, "  총점: %d\n", *result.TotalScore)
		}
		if result.HasError() {
			fmt.Fprintf(&b, "  비고: 채점 불가 (%s)\n", result.Error)
			continue
		}
		fmt.Fprintf(&b, "  해석: %s\n", result.Interpretation)
		for name, score := range result.Subscores {
			fmt.Fprintf(&b, "  - %s: %d\n", name, score)
		}
	}
	b.WriteString("\n위 결과를 종합하여 다음 구성으로 소견서를 작성하세요:\n")
	b.WriteString("1. 전반적 요약\n2. 검사별 해석\n3. 권고 사항\n")

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// FallbackReport renders a plain result listing used when narrative
// generation is disabled or failing.
func FallbackReport(patientID string, results []*domain.ScoreResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 검사 결과 요약 (환자 %s)\n\n", patientID)
	b.WriteString("> 주의: 자동 생성 소견서를 사용할 수 없어 원자료 요약으로 대체되었습니다.\n\n")

	for _, result := range results {
		fmt.Fprintf(&b, "## %s\n", result.ToolName)
		if result.HasError() {
			fmt.Fprintf(&b, "- 채점 불가: %s\n\n", result.Error)
			continue
		}
		if result.TotalScore != nil {
			fmt.Fprintf(&b, "- 총점: %d\n", *result.TotalScore)
		}
		fmt.Fprintf(&b, "- 해석: %s\n\n", result.Interpretation)
	}

	b.WriteString("본 결과는 선별검사 결과이며 확정 진단이 아닙니다. ")
	b.WriteString("정확한 평가를 위해 전문가 상담을 권장합니다.\n")
	return b.String()
}
