package searchcmder_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apisearch "github.com/papercomputeco/kauni/api/search"
	searchcmder "github.com/papercomputeco/kauni/cmd/kauni/search"
	"github.com/papercomputeco/kauni/pkg/rag"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var _ = Describe("search command", func() {
	var (
		server *httptest.Server
		output apisearch.SearchOutput
		gotK   string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := searchcmder.NewSearchCmd()
		cmd.PersistentFlags().String("config-dir", GinkgoT().TempDir(), "")
		cmd.SetOut(out)
		cmd.SetArgs(append(args, "--api-target", server.URL))
		return cmd.Execute()
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
		output = apisearch.SearchOutput{
			Query: "대전 빵집",
			Results: []vector.QueryResult{
				{ID: "doc-1", Content: "성심당 본점\n대전 중구", Distance: 0.1234},
				{ID: "doc-2", Content: "한밭수목원", Distance: 0.5},
			},
			Count: 2,
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotK = r.URL.Query().Get("k")
			_ = json.NewEncoder(w).Encode(output)
		}))
		DeferCleanup(server.Close)
	})

	It("prints ranked results", func() {
		Expect(run("대전 빵집", "--top", "2")).To(Succeed())

		Expect(gotK).To(Equal("2"))
		Expect(out.String()).To(ContainSubstring("#1"))
		Expect(out.String()).To(ContainSubstring("distance: 0.1234"))
		Expect(out.String()).To(ContainSubstring("성심당 본점 대전 중구"))
	})

	It("prints only IDs with --quiet", func() {
		Expect(run("대전 빵집", "--quiet")).To(Succeed())
		Expect(out.String()).To(Equal("doc-1\ndoc-2\n"))
		Expect(gotK).To(Equal("4"))
	})

	It("reports empty and degraded searches", func() {
		output.Results, output.Count = nil, 0
		output.Degraded = []rag.Diagnostic{{Stage: rag.StageQuery, Reason: "rpc missing"}}

		Expect(run("없는 장소")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No results found."))
		Expect(out.String()).To(ContainSubstring("rpc missing"))
	})

	It("requires exactly one query", func() {
		Expect(run()).To(HaveOccurred())
	})
})
