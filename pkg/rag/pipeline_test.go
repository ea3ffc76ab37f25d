package rag_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/eventstream"
	"github.com/papercomputeco/kauni/pkg/rag"
	testutils "github.com/papercomputeco/kauni/pkg/utils/test"
	"github.com/papercomputeco/kauni/pkg/vector"
)

type recordingPublisher struct {
	mu    sync.Mutex
	chats []*eventstream.ChatAnsweredEvent
}

func (p *recordingPublisher) PublishChat(_ context.Context, e *eventstream.ChatAnsweredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chats = append(p.chats, e)
	return nil
}

func (p *recordingPublisher) PublishFeedback(context.Context, *eventstream.FeedbackEvent) error {
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var _ = Describe("Pipeline", func() {
	var (
		driver    *testutils.MockVectorDriver
		caller    *testutils.MockCaller
		publisher *recordingPublisher
		personas  *rag.PersonaStore
		pipeline  *rag.Pipeline
		ctx       context.Context
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()
		caller = testutils.NewMockCaller("성심당 본점을 추천해요!")
		publisher = &recordingPublisher{}
		personas = rag.NewPersonaStore(rag.DefaultPersona())
		ctx = context.Background()

		pipeline = rag.NewPipeline(rag.PipelineConfig{
			Retriever: rag.NewRetriever(rag.RetrieverConfig{Embedder: testutils.NewMockEmbedder(), Driver: driver}),
			Generator: rag.NewGenerator(rag.GeneratorConfig{Caller: caller}),
			Personas:  personas,
			Publisher: publisher,
		})
	})

	It("answers grounded tourism questions with the model", func() {
		driver.QueryResults = []vector.QueryResult{doc("a", "성심당은 대전의 빵집입니다", "blog", 0.1)}

		result := pipeline.Answer(ctx, "대전 맛집 추천해줘")
		Expect(result.Source).To(Equal(rag.SourceRAG))
		Expect(result.Confidence).To(Equal(rag.ConfidenceHigh))
		Expect(result.Answer).To(Equal("성심당 본점을 추천해요!"))
		Expect(result.Contexts).To(HaveLen(1))

		reqs := caller.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Messages[0].Content).To(ContainSubstring("내용: 성심당은 대전의 빵집입니다"))
	})

	It("rejects off-topic questions without touching the store or model", func() {
		result := pipeline.Answer(ctx, "오늘 주식 어때?")
		Expect(result.Source).To(Equal(rag.SourceGuardrail))
		Expect(result.Confidence).To(Equal(rag.ConfidenceHigh))
		Expect(result.Answer).To(Equal(rag.RedirectAnswer))
		Expect(result.Contexts).NotTo(BeNil())
		Expect(result.Contexts).To(BeEmpty())

		Expect(driver.QueryCalls()).To(BeZero())
		Expect(driver.ScanCalls()).To(BeZero())
		Expect(caller.Requests()).To(BeEmpty())
	})

	It("skips generation when only the placeholder comes back", func() {
		driver.QueryErr = vector.ErrStore
		driver.ScanErr = vector.ErrStore

		result := pipeline.Answer(ctx, "대전 축제 알려줘")
		Expect(result.Source).To(Equal(rag.SourceFallback))
		Expect(result.Confidence).To(Equal(rag.ConfidenceLow))
		Expect(result.Answer).To(Equal(rag.NoDataAnswer))
		Expect(result.Contexts).To(HaveLen(1))
		Expect(result.Contexts[0].ID).To(Equal(rag.PlaceholderID))
		Expect(result.Trail).To(HaveLen(2))
		Expect(caller.Requests()).To(BeEmpty())
	})

	It("still grounds on scanned documents when ranked search fails", func() {
		driver.QueryErr = vector.ErrStore
		driver.ScanResults = []vector.QueryResult{doc("s1", "한밭수목원", "kto", 0.3)}

		result := pipeline.Answer(ctx, "대전 공원 추천")
		Expect(result.Source).To(Equal(rag.SourceRAG))
		Expect(result.Contexts[0].Distance).To(BeZero())
		Expect(caller.Requests()).To(HaveLen(1))
	})

	It("falls back when the store holds no documents", func() {
		result := pipeline.Answer(ctx, "대전 숙박 추천")
		Expect(result.Source).To(Equal(rag.SourceFallback))
		Expect(result.Contexts).To(BeEmpty())
	})

	It("uses the current persona for each prompt", func() {
		driver.QueryResults = []vector.QueryResult{doc("a", "x", "y", 0.1)}
		system := "새 페르소나"
		personas.Update(&system, nil)

		pipeline.Answer(ctx, "대전 여행")
		Expect(caller.Requests()[0].Messages[0].Content).To(HavePrefix("새 페르소나"))
	})

	It("publishes one event per answer", func() {
		driver.QueryResults = []vector.QueryResult{doc("a", "x", "y", 0.1)}
		pipeline.Answer(ctx, "대전 맛집")
		pipeline.Answer(ctx, "주식")

		Expect(publisher.chats).To(HaveLen(2))
		Expect(publisher.chats[0].Chat.Source).To(Equal(rag.SourceRAG))
		Expect(publisher.chats[0].Chat.ContextIDs).To(Equal([]string{"a"}))
		Expect(publisher.chats[1].Chat.Source).To(Equal(rag.SourceGuardrail))
	})
})
