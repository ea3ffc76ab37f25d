package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiclient "github.com/papercomputeco/kauni/api/client"
	apisearch "github.com/papercomputeco/kauni/api/search"
	"github.com/papercomputeco/kauni/pkg/rag"
	"github.com/papercomputeco/kauni/pkg/vector"
)

var _ = Describe("Client", func() {
	var (
		server *httptest.Server
		client *apiclient.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Query string `json:"query"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Query == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"query is required"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(rag.ChatResult{
				Answer:     "성심당을 추천해요 (" + body.Query + ")",
				Source:     rag.SourceRAG,
				Confidence: rag.ConfidenceHigh,
			})
		})
		mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			_ = json.NewEncoder(w).Encode(apisearch.SearchOutput{
				Query:   q.Get("q") + "/" + q.Get("k"),
				Results: []vector.QueryResult{{ID: "a", Content: "성심당", Distance: 0.12}},
				Count:   1,
			})
		})
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)

		var err error
		client, err = apiclient.New(server.URL)
		Expect(err).NotTo(HaveOccurred())
	})

	It("posts chat questions as JSON", func() {
		res, err := client.Chat(ctx, "대전 빵집")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Answer).To(ContainSubstring("(대전 빵집)"))
		Expect(res.Source).To(Equal(rag.SourceRAG))
	})

	It("sends q and k on search", func() {
		out, err := client.Search(ctx, "대전 빵집", 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Query).To(Equal("대전 빵집/3"))
		Expect(out.Results).To(HaveLen(1))
	})

	It("surfaces the status and body of failed requests", func() {
		_, err := client.Chat(ctx, "")
		Expect(err).To(MatchError(ContainSubstring("HTTP 400")))
		Expect(err).To(MatchError(ContainSubstring("query is required")))
	})

	It("rejects an invalid target", func() {
		_, err := apiclient.New("://bad")
		Expect(err).To(MatchError(ContainSubstring("invalid API target URL")))
	})

	It("reports an unreachable server", func() {
		server.Close()
		_, err := client.Search(ctx, "q", 1)
		Expect(err).To(MatchError(ContainSubstring("connecting to kauni API")))
	})
})
