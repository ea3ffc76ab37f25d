package rag

import (
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	personaCharacter   = "대전 지역 관광 도우미 까치 캐릭터"
	personaPersonality = "친근하고 반말에 예의 지키는 스타일, 호기심 많고 도움이 되는 정보를 제공하는 것을 좋아함"
	personaExpertise   = "대전 지역 관광지, 맛집, 문화시설, 축제, 교통, 숙박 등 모든 관광 정보"

	// DefaultStyle is the answer style used until one is configured.
	DefaultStyle = "친근하면서도 정중한 말투, 간결하고 명확하게"

	// SystemRole is the system message sent with every generation request.
	SystemRole = "당신은 대전 지역 관광 도우미 까우니입니다. " +
		"항상 까우니의 페르소나를 유지하고, 관광 관련 질문에만 답변하세요."
)

var personaCoreValues = []string{
	"정확한 정보 제공",
	"사용자 편의성 우선",
	"대전 지역 홍보",
	"안전하고 유용한 관광 안내",
}

var personaGuidelines = []string{
	"한국어로 답변",
	"간결하고 명확한 2-4문장",
	"필요시 리스트 3개 이하",
	"구체적인 정보 제공 (주소, 전화번호, 운영시간 등)",
	"출처 인용 (가능한 경우)",
}

var conversationRules = []string{
	`항상 "까우니"라는 정체성을 유지`,
	"관광 관련 질문에만 답변",
	`범위 밖 질문은 "관광 관련 질문을 해주세요"로 안내`,
	`불확실한 정보는 "확인해볼게요"라고 표현`,
	"추측하지 말고 사실 기반으로 답변",
	`필요시 "더 자세한 정보가 필요하시면 말씀해주세요" 추가`,
}

// DefaultSystemPrompt is the built-in persona system prompt.
var DefaultSystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("당신은 까우니입니다.\n\n")

	b.WriteString("**정체성:**\n")
	for _, line := range []string{personaCharacter, personaPersonality, personaExpertise} {
		b.WriteString("- " + line + "\n")
	}

	b.WriteString("\n**핵심 가치:**\n")
	for _, v := range personaCoreValues {
		b.WriteString("- " + v + "\n")
	}

	b.WriteString("\n**응답 스타일:**\n")
	for _, g := range personaGuidelines {
		b.WriteString("- " + g + "\n")
	}

	b.WriteString("\n**대화 규칙:**\n")
	for i, r := range conversationRules {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i+1) + ". " + r)
	}

	return b.String()
}

// Persona is an immutable snapshot of the prompt configuration.
type Persona struct {
	System string `json:"system"`
	Style  string `json:"style"`
}

// DefaultPersona returns the built-in persona.
func DefaultPersona() Persona {
	return Persona{
		System: DefaultSystemPrompt,
		Style:  DefaultStyle,
	}
}

// PersonaStore holds the active persona. Readers always see a complete
// snapshot; updates replace the snapshot wholesale.
type PersonaStore struct {
	current atomic.Pointer[Persona]
}

// NewPersonaStore creates a store seeded with initial.
func NewPersonaStore(initial Persona) *PersonaStore {
	s := &PersonaStore{}
	s.current.Store(&initial)
	return s
}

// Get returns the current snapshot.
func (s *PersonaStore) Get() Persona {
	return *s.current.Load()
}

// Update applies a partial change and returns the new snapshot. An empty
// system prompt is ignored; a nil style leaves the style unchanged while a
// non-nil empty style clears it.
func (s *PersonaStore) Update(system, style *string) Persona {
	for {
		old := s.current.Load()
		next := *old
		if system != nil && *system != "" {
			next.System = *system
		}
		if style != nil {
			next.Style = *style
		}
		if s.current.CompareAndSwap(old, &next) {
			return next
		}
	}
}
