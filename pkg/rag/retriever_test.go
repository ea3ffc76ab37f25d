package rag_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/rag"
	testutils "github.com/papercomputeco/kauni/pkg/utils/test"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var _ = Describe("Retriever", func() {
	var (
		embedder  *testutils.MockEmbedder
		driver    *testutils.MockVectorDriver
		retriever *rag.Retriever
		ctx       context.Context
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		driver = testutils.NewMockVectorDriver()
		retriever = rag.NewRetriever(rag.RetrieverConfig{Embedder: embedder, Driver: driver})
		ctx = context.Background()
	})

	It("returns ranked results when search succeeds", func() {
		driver.QueryResults = []vector.QueryResult{
			doc("a", "성심당", "blog", 0.1),
			doc("b", "엑스포", "kto", 0.2),
		}

		results, trail := retriever.Retrieve(ctx, "대전 맛집", 4)
		Expect(trail).To(BeEmpty())
		Expect(results).To(HaveLen(2))
		Expect(results[0].ID).To(Equal("a"))
		Expect(results[1].Distance).To(BeNumerically("~", 0.2, 1e-6))
		Expect(driver.ScanCalls()).To(BeZero())
	})

	It("never returns more than k results", func() {
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			driver.QueryResults = append(driver.QueryResults, doc(id, id, "x", 0.1))
		}
		results, _ := retriever.Retrieve(ctx, "q", 3)
		Expect(results).To(HaveLen(3))
	})

	It("treats k below one as one", func() {
		driver.QueryResults = []vector.QueryResult{doc("a", "x", "y", 0), doc("b", "x", "y", 0)}
		results, _ := retriever.Retrieve(ctx, "q", 0)
		Expect(results).To(HaveLen(1))
	})

	It("falls back to an unranked scan when ranked search fails", func() {
		driver.QueryErr = errors.New("match_documents does not exist")
		driver.ScanResults = []vector.QueryResult{doc("s1", "x", "y", 0.7), doc("s2", "x", "y", 0.9)}

		results, trail := retriever.Retrieve(ctx, "q", 4)
		Expect(results).To(HaveLen(2))
		for _, r := range results {
			Expect(r.Distance).To(BeZero())
		}
		Expect(trail).To(HaveLen(1))
		Expect(trail[0].Stage).To(Equal(rag.StageQuery))
		Expect(trail[0].Reason).To(ContainSubstring("match_documents"))

		Expect(driver.ScanResults[0].Distance).To(BeNumerically("~", 0.7, 1e-6))
	})

	It("falls back to a scan when embedding fails", func() {
		embedder.Err = errors.New("model not loaded")
		driver.ScanResults = []vector.QueryResult{doc("s1", "x", "y", 0)}

		results, trail := retriever.Retrieve(ctx, "q", 4)
		Expect(results).To(HaveLen(1))
		Expect(trail).To(HaveLen(1))
		Expect(trail[0].Stage).To(Equal(rag.StageEmbed))
		Expect(driver.QueryCalls()).To(BeZero())
	})

	It("returns exactly the placeholder when the store is unreachable", func() {
		driver.QueryErr = vector.ErrStore
		driver.ScanErr = vector.ErrStore

		results, trail := retriever.Retrieve(ctx, "q", 4)
		Expect(results).To(HaveLen(1))
		Expect(rag.IsPlaceholder(results[0])).To(BeTrue())
		Expect(trail).To(HaveLen(2))
		Expect(trail[1].Stage).To(Equal(rag.StageScan))
	})

	It("returns an empty list when the store is reachable but empty", func() {
		results, trail := retriever.Retrieve(ctx, "q", 4)
		Expect(results).NotTo(BeNil())
		Expect(results).To(BeEmpty())
		Expect(trail).To(BeEmpty())
	})
})
