package mcp

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	kaunilogger "github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/rag"
	testutils "github.com/papercomputeco/kauni/pkg/utils/test"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var _ = Describe("Tools", func() {
	var (
		server *Server
		driver *testutils.MockVectorDriver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()
		retriever := rag.NewRetriever(rag.RetrieverConfig{Embedder: testutils.NewMockEmbedder(), Driver: driver})

		var err error
		server, err = NewServer(Config{
			Retriever: retriever,
			Pipeline: rag.NewPipeline(rag.PipelineConfig{
				Retriever: retriever,
				Generator: rag.NewGenerator(rag.GeneratorConfig{Caller: testutils.NewMockCaller("엑스포 공원을 추천해요")}),
			}),
			Logger: kaunilogger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	Describe("search", func() {
		It("returns structured results and a JSON text block", func() {
			driver.QueryResults = []vector.QueryResult{{ID: "a", Content: "엑스포", Distance: 0.1}}

			result, output, err := server.handleSearch(ctx, &mcp.CallToolRequest{}, SearchInput{Query: "대전 공원"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(1))
			Expect(result.Content[0].(*mcp.TextContent).Text).To(ContainSubstring(`"id":"a"`))
		})

		It("flags invalid requests as tool errors", func() {
			result, _, err := server.handleSearch(ctx, &mcp.CallToolRequest{}, SearchInput{Query: "q", K: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})

	Describe("chat", func() {
		It("answers through the pipeline", func() {
			driver.QueryResults = []vector.QueryResult{{ID: "a", Content: "엑스포", Distance: 0.1}}

			result, output, err := server.handleChat(ctx, &mcp.CallToolRequest{}, ChatInput{Query: "대전 공원 추천"})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Source).To(Equal(rag.SourceRAG))
			Expect(result.Content[0].(*mcp.TextContent).Text).To(Equal("엑스포 공원을 추천해요"))
		})

		It("rejects an empty query", func() {
			result, _, err := server.handleChat(ctx, &mcp.CallToolRequest{}, ChatInput{Query: "  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})
	})
})
