package rag_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/rag"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var _ = Describe("AssemblePrompt", func() {
	persona := rag.Persona{System: "SYSTEM", Style: "STYLE"}

	It("orders the prompt sections", func() {
		prompt := rag.AssemblePrompt(persona, "대전 맛집", []vector.QueryResult{
			doc("a", "성심당 본점", "blog", 0.12345),
		})

		sections := []string{"SYSTEM", "**답변 스타일:**\nSTYLE", "**가드레일 체크:**",
			"**관광 정보 제공 가이드:**", "[사용자 질문]\n대전 맛집", "[참고 컨텍스트]", "[지시사항]"}
		last := -1
		for _, s := range sections {
			idx := strings.Index(prompt, s)
			Expect(idx).To(BeNumerically(">", last), s)
			last = idx
		}
		Expect(prompt).To(HaveSuffix("'더 궁금한 점이 있으시면 언제든 말씀해주세요!'를 추가하세요"))
	})

	It("renders numbered contexts with source and four decimal distance", func() {
		out := rag.FormatContexts([]vector.QueryResult{
			doc("a", "첫째", "blog", 0.12345),
			{ID: "b", Content: "둘째", Distance: 1},
		})
		Expect(out).To(Equal(
			"[컨텍스트 1]\n내용: 첫째\n출처: blog\n거리: 0.1235\n\n" +
				"[컨텍스트 2]\n내용: 둘째\n출처: 알 수 없음\n거리: 1.0000"))
	})

	It("omits the style block when style is empty", func() {
		prompt := rag.AssemblePrompt(rag.Persona{System: "SYSTEM"}, "q", nil)
		Expect(prompt).NotTo(ContainSubstring("답변 스타일"))
	})

	It("truncates long context bodies", func() {
		long := strings.Repeat("가", rag.MaxContextRunes+10)
		out := rag.FormatContexts([]vector.QueryResult{doc("a", long, "x", 0)})
		Expect(out).To(ContainSubstring(strings.Repeat("가", rag.MaxContextRunes) + "..."))
		Expect(out).NotTo(ContainSubstring(strings.Repeat("가", rag.MaxContextRunes+1)))
	})

	It("is deterministic", func() {
		ctxs := []vector.QueryResult{doc("a", "x", "y", 0.5)}
		Expect(rag.AssemblePrompt(persona, "q", ctxs)).To(Equal(rag.AssemblePrompt(persona, "q", ctxs)))
	})
})
