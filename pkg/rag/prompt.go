package rag

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/kauni/pkg/utils"
	"github.com/papercomputeco/kauni/pkg/vector"
)

// MaxContextRunes bounds how much of a single context body is placed in the
// prompt. Longer bodies are cut and marked with "...".
const MaxContextRunes = 1500

const unknownSource = "알 수 없음"

const guardrailBlock = "**가드레일 체크:**\n" +
	"- 이 질문이 관광 관련인가요? (Y/N)\n" +
	"- 대전 지역과 관련이 있나요? (Y/N)\n" +
	"- 안전하고 유용한 정보인가요? (Y/N)\n\n" +
	"**범위 밖 질문 처리:**\n" +
	`- 정치, 종교, 개인정보 등 민감한 주제 → "관광 관련 질문을 해주세요"` + "\n" +
	`- 대전 지역과 무관한 질문 → "대전 지역 관광에 대해 궁금한 점이 있으시면 말씀해주세요"` + "\n" +
	`- 부적절한 요청 → "관광 안내에 도움이 되는 질문을 해주세요"`

const tourismBlock = "**관광 정보 제공 가이드:**\n" +
	"1. **위치 정보**: 구체적인 주소, 교통편\n" +
	"2. **운영 정보**: 영업시간, 휴무일, 연락처\n" +
	"3. **특징**: 왜 가볼만한 곳인지, 어떤 경험을 할 수 있는지\n" +
	"4. **팁**: 방문 시 주의사항, 추천 시간대, 예약 필요 여부\n" +
	"5. **연계 정보**: 주변 관광지, 맛집, 숙박시설"

const instructionFooter = "[지시사항]\n" +
	"1. 가드레일 체크를 먼저 수행하세요\n" +
	"2. 관광 관련 질문인 경우 위 컨텍스트를 참고하여 답변하세요\n" +
	"3. 컨텍스트에 없는 정보는 '확인해볼게요'라고 표현하세요\n" +
	"4. 까우니의 페르소나를 유지하며 친근하고 도움이 되는 답변을 제공하세요\n" +
	"5. 답변 후 '더 궁금한 점이 있으시면 언제든 말씀해주세요!'를 추가하세요"

// AssemblePrompt renders the generation prompt for query grounded on
// contexts. It is a pure function of its inputs.
func AssemblePrompt(persona Persona, query string, contexts []vector.QueryResult) string {
	var b strings.Builder

	b.WriteString(persona.System)
	if persona.Style != "" {
		b.WriteString("\n\n**답변 스타일:**\n")
		b.WriteString(persona.Style)
	}

	b.WriteString("\n\n")
	b.WriteString(guardrailBlock)
	b.WriteString("\n\n")
	b.WriteString(tourismBlock)

	b.WriteString("\n\n[사용자 질문]\n")
	b.WriteString(query)

	b.WriteString("\n\n[참고 컨텍스트]\n")
	b.WriteString(FormatContexts(contexts))

	b.WriteString("\n\n")
	b.WriteString(instructionFooter)

	return b.String()
}

// FormatContexts renders contexts as numbered blocks separated by blank lines.
func FormatContexts(contexts []vector.QueryResult) string {
	blocks := make([]string, 0, len(contexts))
	for i, c := range contexts {
		source := c.SourceLabel()
		if source == "" {
			source = unknownSource
		}
		blocks = append(blocks, fmt.Sprintf("[컨텍스트 %d]\n내용: %s\n출처: %s\n거리: %.4f",
			i+1, utils.Truncate(c.Content, MaxContextRunes), source, c.Distance))
	}
	return strings.Join(blocks, "\n\n")
}
