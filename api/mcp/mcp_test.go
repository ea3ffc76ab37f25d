package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/api/mcp"
	kaunilogger "github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/rag"
	testutils "github.com/papercomputeco/kauni/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var (
		retriever *rag.Retriever
		pipeline  *rag.Pipeline
	)

	BeforeEach(func() {
		retriever = rag.NewRetriever(rag.RetrieverConfig{
			Embedder: testutils.NewMockEmbedder(),
			Driver:   testutils.NewMockVectorDriver(),
		})
		pipeline = rag.NewPipeline(rag.PipelineConfig{
			Retriever: retriever,
			Generator: rag.NewGenerator(rag.GeneratorConfig{Caller: testutils.NewMockCaller("안녕하세요")}),
		})
	})

	Describe("NewServer", func() {
		It("returns an error when retriever is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Pipeline: pipeline,
				Logger:   kaunilogger.Nop(),
			})
			Expect(err).To(MatchError(ContainSubstring("retriever is required")))
		})

		It("returns an error when pipeline is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Retriever: retriever,
				Logger:    kaunilogger.Nop(),
			})
			Expect(err).To(MatchError(ContainSubstring("pipeline is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Retriever: retriever,
				Pipeline:  pipeline,
			})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("creates a server with an HTTP handler", func() {
			server, err := mcp.NewServer(mcp.Config{
				Retriever: retriever,
				Pipeline:  pipeline,
				Logger:    kaunilogger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("creates an empty server in noop mode", func() {
			server, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
