package kto_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/ingest/kto"
)

func itemsBody(items any) string {
	data, _ := json.Marshal(map[string]any{
		"response": map[string]any{
			"body": map[string]any{
				"items": map[string]any{"item": items},
			},
		},
	})
	return string(data)
}

var _ = Describe("ExtractItems", func() {
	decode := func(s string) any {
		var v any
		Expect(json.Unmarshal([]byte(s), &v)).To(Succeed())
		return v
	}

	It("returns the item list", func() {
		items := kto.ExtractItems(decode(itemsBody([]any{map[string]any{"title": "a"}, map[string]any{"title": "b"}})))
		Expect(items).To(HaveLen(2))
	})

	It("wraps a single object into a list", func() {
		items := kto.ExtractItems(decode(itemsBody(map[string]any{"title": "a"})))
		Expect(items).To(HaveLen(1))
		Expect(items[0]).To(HaveKeyWithValue("title", "a"))
	})

	It("yields an empty list for other shapes", func() {
		Expect(kto.ExtractItems(decode(itemsBody("nothing")))).To(BeEmpty())
		Expect(kto.ExtractItems(decode(`{"response":{"body":{"items":""}}}`))).To(BeEmpty())
		Expect(kto.ExtractItems(decode(`{"response":{"header":{"resultCode":"03"}}}`))).To(BeEmpty())
		Expect(kto.ExtractItems(nil)).To(BeEmpty())
	})
})

var _ = Describe("ItemToDocument", func() {
	It("normalizes the minimal title and address item", func() {
		doc := kto.ItemToDocument(map[string]any{"title": "X", "addr1": "Y"})
		Expect(doc.Content).To(Equal("제목: X\n주소: Y"))
		Expect(doc.Metadata).To(Equal(map[string]any{"title": "X", "addr1": "Y", "source": "kto"}))
		Expect(doc.ID).To(BeEmpty())
	})

	It("uses alternate field names in preference order", func() {
		doc := kto.ItemToDocument(map[string]any{
			"name":    "한밭수목원",
			"address": "대전 서구",
			"phone":   "042-123-4567",
			"cat2":    "자연",
			"cat1":    "관광지",
			"intro":   "도심 속 수목원",
		})
		Expect(doc.Content).To(Equal("제목: 한밭수목원\n주소: 대전 서구\n연락처: 042-123-4567\n분류: 자연\n도심 속 수목원"))
	})

	It("folds the overview into the text and drops it from metadata", func() {
		doc := kto.ItemToDocument(map[string]any{"title": "엑스포", "overview": "과학 공원"})
		Expect(doc.Content).To(Equal("제목: 엑스포\n과학 공원"))
		Expect(doc.Metadata).NotTo(HaveKey("overview"))
		Expect(doc.Metadata).To(HaveKeyWithValue("source", "kto"))
	})

	It("skips empty values", func() {
		doc := kto.ItemToDocument(map[string]any{"title": "", "name": "대청호", "tel": ""})
		Expect(doc.Content).To(Equal("제목: 대청호"))
	})
})

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		mu       sync.Mutex
		requests []url.Values
		ctx      context.Context
	)

	BeforeEach(func() {
		requests = nil
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			requests = append(requests, r.URL.Query())
			mu.Unlock()
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(cfg kto.Config) *kto.Client {
		cfg.ServiceKey = "secret"
		if cfg.Endpoints == nil {
			cfg.Endpoints = []string{server.URL + "/hub", server.URL + "/related"}
		}
		c, err := kto.NewClient(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("requires a service key", func() {
		_, err := kto.NewClient(kto.Config{}, nil)
		Expect(err).To(MatchError(config.ErrConfiguration))
		Expect(err.Error()).To(ContainSubstring("KTO_SERVICE_KEY"))
	})

	It("fetches both endpoints with the documented parameters", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, itemsBody(map[string]any{"title": r.URL.Path}))
		}

		docs, err := newClient(kto.Config{NumRows: 100}).Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(2))
		Expect(docs[0].Content).To(Equal("제목: /hub"))
		Expect(docs[1].Content).To(Equal("제목: /related"))

		mu.Lock()
		defer mu.Unlock()
		Expect(requests).To(HaveLen(2))
		q := requests[0]
		Expect(q.Get("serviceKey")).To(Equal("secret"))
		Expect(q.Get("numOfRows")).To(Equal("100"))
		Expect(q.Get("pageNo")).To(Equal("1"))
		Expect(q.Get("MobileOS")).To(Equal("ETC"))
		Expect(q.Get("MobileApp")).To(Equal("Kauni"))
		Expect(q.Get("_type")).To(Equal("json"))
	})

	It("pages until a short page", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("pageNo"))
			if page < 3 {
				fmt.Fprint(w, itemsBody([]any{map[string]any{"title": "a"}, map[string]any{"title": "b"}}))
				return
			}
			fmt.Fprint(w, itemsBody(map[string]any{"title": "last"}))
		}

		c := newClient(kto.Config{NumRows: 2, MaxPages: 10, Endpoints: []string{server.URL}})
		items, err := c.FetchEndpoint(ctx, server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(5))
	})

	It("stops at the page limit", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, itemsBody([]any{map[string]any{"title": "a"}}))
		}

		items, err := newClient(kto.Config{NumRows: 1, MaxPages: 2}).FetchEndpoint(ctx, server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))
	})

	It("retries transient server errors", func() {
		var calls atomic.Int32
		handler = func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, itemsBody(map[string]any{"title": "ok"}))
		}

		c := newClient(kto.Config{MaxRetries: 3, InitialBackoff: time.Millisecond})
		items, err := c.FetchEndpoint(ctx, server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("does not retry client errors", func() {
		var calls atomic.Int32
		handler = func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}

		c := newClient(kto.Config{MaxRetries: 3, InitialBackoff: time.Millisecond})
		_, err := c.FetchEndpoint(ctx, server.URL)
		Expect(err).To(MatchError(ContainSubstring("status 401")))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("returns no documents when the upstream has none", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response":{"body":{"items":""}}}`)
		}

		docs, err := newClient(kto.Config{}).Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(BeEmpty())
	})
})
