package search_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/api/search"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/rag"
	testutils "github.com/papercomputeco/kauni/pkg/utils/test"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var _ = Describe("Search", func() {
	var (
		driver    *testutils.MockVectorDriver
		retriever *rag.Retriever
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()
		retriever = rag.NewRetriever(rag.RetrieverConfig{Embedder: testutils.NewMockEmbedder(), Driver: driver})
	})

	It("returns retrieved contexts", func() {
		driver.QueryResults = []vector.QueryResult{{ID: "a", Content: "성심당", Distance: 0.2}}

		out, err := search.Search(context.Background(), retriever, "대전 빵집", 0, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Count).To(Equal(1))
		Expect(out.Results[0].ID).To(Equal("a"))
		Expect(out.Degraded).To(BeEmpty())
	})

	It("reports degraded stages", func() {
		driver.QueryErr = vector.ErrStore
		driver.ScanErr = vector.ErrStore

		out, err := search.Search(context.Background(), retriever, "q", 4, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Results[0].ID).To(Equal(rag.PlaceholderID))
		Expect(out.Degraded).To(HaveLen(2))
	})

	DescribeTable("Validate",
		func(query string, k int, want int, wantErr error) {
			got, err := search.Validate(query, k)
			if wantErr != nil {
				Expect(err).To(MatchError(wantErr))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("defaults k", "q", 0, search.DefaultK, nil),
		Entry("keeps k in range", "q", 20, 20, nil),
		Entry("rejects k above max", "q", 21, 0, search.ErrInvalidK),
		Entry("rejects negative k", "q", -1, 0, search.ErrInvalidK),
		Entry("rejects empty query", "", 4, 0, search.ErrEmptyQuery),
	)
})
