package rag

const exampleQuestions = "예시 질문:\n" +
	"- 대전에서 맛있는 맛집 추천해줘\n" +
	"- 대전과학관은 언제 가는 게 좋을까?\n" +
	"- 대전 근처에 가볼만한 곳 있어?"

const (
	// RedirectAnswer is returned for queries the guardrail rejects.
	RedirectAnswer = "안녕하세요! 까우니예요 \n\n" +
		"저는 대전 지역 관광 안내를 도와드리는 챗봇이에요. " +
		"대전의 관광지, 맛집, 문화시설, 축제 등에 대해 궁금한 점이 있으시면 언제든 말씀해주세요!\n\n" +
		exampleQuestions

	// CheckingAnswer is the on-topic variant of the canned fallback.
	CheckingAnswer = "안녕하세요! 까우니예요 \n\n" +
		"질문해주신 내용에 대해 정확한 정보를 찾아보고 있어요. 잠시만 기다려주세요!\n\n" +
		"혹시 더 구체적으로 궁금한 점이 있으시면 말씀해주세요."

	// NoDataAnswer is returned when retrieval produced no real documents.
	NoDataAnswer = "안녕하세요! 까우니예요 🐦\n\n" +
		"질문해주신 내용에 대해 정확한 정보를 찾아보고 있어요. " +
		"현재 데이터베이스에 해당 정보가 없어서 정확한 답변을 드리기 어려워요.\n\n" +
		"혹시 다른 관광 관련 질문이 있으시거나, 더 구체적으로 궁금한 점이 있으시면 말씀해주세요!\n\n" +
		exampleQuestions
)

// FallbackResponse picks the canned answer for query without consulting the
// store or the model.
func FallbackResponse(query string) string {
	if IsOnTopic(query) {
		return CheckingAnswer
	}
	return RedirectAnswer
}
