package chatcmder_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	chatcmder "github.com/papercomputeco/kauni/cmd/kauni/chat"
	"github.com/papercomputeco/kauni/pkg/rag"
)

var _ = Describe("chat command", func() {
	var (
		server   *httptest.Server
		received []string
		out      *bytes.Buffer
	)

	run := func(stdin string, args ...string) error {
		cmd := chatcmder.NewChatCmd()
		cmd.PersistentFlags().String("config-dir", GinkgoT().TempDir(), "")
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(out)
		cmd.SetArgs(append(args, "--raw", "--api-target", server.URL))
		return cmd.Execute()
	}

	BeforeEach(func() {
		received = nil
		out = &bytes.Buffer{}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Query string `json:"query"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			received = append(received, body.Query)

			if body.Query == "fail" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(rag.ChatResult{
				Answer:     "성심당을 추천해요",
				Source:     rag.SourceRAG,
				Confidence: rag.ConfidenceHigh,
			})
		}))
		DeferCleanup(server.Close)
	})

	It("answers a single question with its source", func() {
		Expect(run("", "대전 빵집")).To(Succeed())

		Expect(received).To(Equal([]string{"대전 빵집"}))
		Expect(out.String()).To(ContainSubstring("성심당을 추천해요"))
		Expect(out.String()).To(ContainSubstring("source: rag"))
	})

	It("returns the error for a failed single question", func() {
		Expect(run("", "fail")).To(MatchError(ContainSubstring("HTTP 500")))
	})

	It("runs a session until exit and survives failures", func() {
		Expect(run("첫 질문\n\nfail\n두번째\nexit\nignored\n")).To(Succeed())

		Expect(received).To(Equal([]string{"첫 질문", "fail", "두번째"}))
		Expect(strings.Count(out.String(), "성심당을 추천해요")).To(Equal(2))
		Expect(out.String()).To(ContainSubstring("HTTP 500"))
	})

	It("ends the session at end of input", func() {
		Expect(run("하나\n")).To(Succeed())
		Expect(received).To(HaveLen(1))
	})

	It("accepts at most one question", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Args(cmd, []string{"a", "b"})).To(HaveOccurred())
	})
})
