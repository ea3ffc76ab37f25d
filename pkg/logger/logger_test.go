package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/logger"
)

func decode(line string) map[string]any {
	var rec map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(line)), &rec)).To(Succeed())
	return rec
}

var _ = Describe("New", func() {
	It("writes text at info level by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf))
		l.Debug("skipped")
		l.Info("indexed documents", "count", 3)

		Expect(buf.String()).NotTo(ContainSubstring("skipped"))
		Expect(buf.String()).To(ContainSubstring("count=3"))
	})

	It("lowers the level with WithDebug", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithDebug(true)).Debug("embedding query")
		Expect(buf.String()).To(ContainSubstring("embedding query"))
	})

	It("emits JSON records tagged with the component", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithComponent("serve"))
		l.WithGroup("request").Info("chat answered", "source", "rag")

		rec := decode(buf.String())
		Expect(rec["msg"]).To(Equal("chat answered"))
		Expect(rec["component"]).To(Equal("serve"))
		Expect(rec["request"]).To(HaveKeyWithValue("source", "rag"))
	})

	It("prefers the pretty handler over JSON", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithPretty(true)).Info("ready")

		Expect(buf.String()).To(ContainSubstring("ready"))
		Expect(json.Valid(buf.Bytes())).To(BeFalse())
	})

	It("copies output to every writer", func() {
		var a, b bytes.Buffer
		logger.New(logger.WithWriters(&a, &b)).Info("both")
		Expect(a.String()).To(ContainSubstring("both"))
		Expect(b.String()).To(Equal(a.String()))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		h := logger.Nop().Handler()
		for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
			Expect(h.Enabled(context.Background(), lvl)).To(BeFalse())
		}
		Expect(func() { logger.Nop().With("k", "v").WithGroup("g").Error("x") }).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("fans out attrs and groups to each logger", func() {
		var text, js bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
		)
		l.With("table", "tourism_docs").WithGroup("kto").Info("fetched", "pages", 2)

		Expect(text.String()).To(ContainSubstring("kto.pages=2"))
		rec := decode(js.String())
		Expect(rec["table"]).To(Equal("tourism_docs"))
		Expect(rec["kto"]).To(HaveKeyWithValue("pages", BeNumerically("==", 2)))
	})

	It("only forwards records a logger accepts", func() {
		var info, debug bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&info)),
			logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
		)
		l.Debug("retrieval scores")

		Expect(info.String()).To(BeEmpty())
		Expect(debug.String()).To(ContainSubstring("retrieval scores"))
	})
})

var _ = Describe("OpenFile", func() {
	It("appends JSON records to the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "kauni.log")

		for _, msg := range []string{"first", "second"} {
			l, closer, err := logger.OpenFile(path, logger.WithComponent("serve"))
			Expect(err).NotTo(HaveOccurred())
			l.Info(msg)
			Expect(closer.Close()).To(Succeed())
		}

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(decode(lines[1])).To(HaveKeyWithValue("msg", "second"))
		Expect(decode(lines[0])).To(HaveKeyWithValue("component", "serve"))
	})

	It("fails for an unwritable path", func() {
		_, _, err := logger.OpenFile(filepath.Join(GinkgoT().TempDir(), "missing", "kauni.log"))
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})
