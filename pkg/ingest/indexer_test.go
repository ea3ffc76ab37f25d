package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/ingest"
	testutils "github.com/papercomputeco/kauni/pkg/utils/test"
	"github.com/papercomputeco/kauni/pkg/vector"
	"github.com/papercomputeco/kauni/pkg/vector/inmemory"
)

var _ = Describe("Indexer", func() {
	var (
		embedder *testutils.MockEmbedder
		driver   *testutils.MockVectorDriver
		ctx      context.Context
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		driver = testutils.NewMockVectorDriver()
		ctx = context.Background()
	})

	It("embeds and upserts every document in batches", func() {
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: driver, Dimensions: 3, BatchSize: 2})

		docs := make([]vector.Document, 5)
		for i := range docs {
			docs[i] = vector.Document{ID: fmt.Sprintf("doc-%d", i), Content: fmt.Sprintf("text %d", i)}
		}

		n, err := ix.Index(ctx, docs)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(5))

		stored := driver.Documents()
		Expect(stored).To(HaveLen(5))
		for _, d := range stored {
			Expect(d.Embedding).To(HaveLen(3))
		}
		Expect(docs[0].Embedding).To(BeNil())
	})

	It("indexes files read from disk with their filename metadata", func() {
		root := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello world"), 0o600)).To(Succeed())

		docs, err := ingest.ReadTextFiles(root)
		Expect(err).NotTo(HaveOccurred())

		store := inmemory.NewDriver()
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: store})

		n, err := ix.Index(ctx, docs)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		results, err := store.Scan(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Content).To(Equal("hello world"))
		Expect(results[0].Metadata["filename"]).To(Equal("a.txt"))
	})

	It("assigns ids to documents without one", func() {
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: driver})

		n, err := ix.Index(ctx, []vector.Document{{Content: "a"}, {Content: "b"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))

		stored := driver.Documents()
		Expect(stored[0].ID).NotTo(BeEmpty())
		Expect(stored[0].ID).NotTo(Equal(stored[1].ID))
	})

	It("treats an empty input as a no-op", func() {
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: driver})

		n, err := ix.Index(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
		Expect(embedder.Calls()).To(BeZero())
	})

	It("rejects embeddings of the wrong size", func() {
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: driver, Dimensions: 384})

		_, err := ix.Index(ctx, []vector.Document{{Content: "a"}})
		Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		Expect(driver.Documents()).To(BeEmpty())
	})

	It("reports how many documents were written before a failure", func() {
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: driver, BatchSize: 1})
		embedder.FailOn = "bad"

		n, err := ix.Index(ctx, []vector.Document{{Content: "good"}, {Content: "bad"}})
		Expect(err).To(HaveOccurred())
		Expect(n).To(Equal(1))
	})

	It("wraps store failures", func() {
		driver.UpsertErr = vector.ErrStore
		ix := ingest.NewIndexer(ingest.IndexerConfig{Embedder: embedder, Driver: driver})

		_, err := ix.Index(ctx, []vector.Document{{Content: "a"}})
		Expect(errors.Is(err, vector.ErrStore)).To(BeTrue())
	})
})
