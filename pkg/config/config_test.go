package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/config"
)

var _ = Describe("Configer", func() {
	var (
		dir string
		c   *config.Configer
	)

	write := func(data string) {
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		c, err = config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("loads defaults without a file", func() {
		Expect(c.GetTarget()).To(Equal(filepath.Join(dir, "config.toml")))
		Expect(c.LoadConfig()).To(Equal(config.NewDefaultConfig()))
	})

	It("layers a partial file over the defaults", func() {
		write("[store]\nprovider = \"qdrant\"\ntarget = \"localhost:6334\"\n\n[embedding]\ndimensions = 768\n")

		cfg, err := c.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Store).To(Equal(config.StoreConfig{
			Provider:      "qdrant",
			Target:        "localhost:6334",
			Table:         "documents",
			MatchFunction: config.NewDefaultConfig().Store.MatchFunction,
		}))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))
		Expect(cfg.Embedding.Model).To(Equal("all-minilm"))
		Expect(cfg.RAG.TopK).To(Equal(uint(4)))
	})

	DescribeTable("rejects bad files",
		func(data, msg string) {
			write(data)
			_, err := c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("malformed TOML", "[store\nprovider =", "parsing config TOML"),
		Entry("future version", "version = 7\n", "unsupported config version"),
	)

	It("saves and reloads", func() {
		cfg := config.NewDefaultConfig()
		cfg.Store.Target = "postgres://localhost/kauni"
		cfg.LLM.Provider = "anthropic"
		Expect(c.SaveConfig(cfg)).To(Succeed())
		Expect(c.LoadConfig()).To(Equal(cfg))

		Expect(c.SaveConfig(nil)).To(MatchError(ContainSubstring("nil config")))
	})

	DescribeTable("SetConfigValue then GetConfigValue",
		func(key, value string) {
			Expect(c.SetConfigValue(key, value)).To(Succeed())
			Expect(c.GetConfigValue(key)).To(Equal(value))
		},
		Entry("string", "store.provider", "sqlite"),
		Entry("uint", "rag.top_k", "8"),
		Entry("float", "kto.rate", "2.5"),
		Entry("duration", "rag.timeout", "1m30s"),
		Entry("brokers", "events.brokers", "kafka-1:9092,kafka-2:9092"),
	)

	DescribeTable("SetConfigValue errors",
		func(key, value, msg string) {
			Expect(c.SetConfigValue(key, value)).To(MatchError(ContainSubstring(msg)))
		},
		Entry("unknown key", "proxy.upstream", "x", "unknown config key"),
		Entry("bad uint", "embedding.dimensions", "many", "invalid value for embedding.dimensions"),
		Entry("bad float", "kto.rate", "fast", "invalid value for kto.rate"),
		Entry("bad duration", "rag.timeout", "soon", "invalid value for rag.timeout"),
	)

	It("keeps earlier values when setting another key", func() {
		Expect(c.SetConfigValue("llm.model", "gpt-4o")).To(Succeed())
		Expect(c.SetConfigValue("store.table", "places")).To(Succeed())

		Expect(c.GetConfigValue("llm.model")).To(Equal("gpt-4o"))
		Expect(c.GetConfigValue("store.table")).To(Equal("places"))
	})

	It("reports defaults and unset keys", func() {
		Expect(c.GetConfigValue("embedding.dimensions")).To(Equal("384"))
		Expect(c.GetConfigValue("store.target")).To(BeEmpty())
		_, err := c.GetConfigValue("nope")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("returns every supported key in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys[0]).To(Equal("api.listen"))
		Expect(keys).To(ContainElements("store.provider", "embedding.model", "llm.provider", "kto.num_rows", "rag.top_k", "events.topic"))
		Expect(keys).To(HaveLen(22))
	})

	It("agrees with IsValidConfigKey", func() {
		for _, k := range config.ValidConfigKeys() {
			Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
		}
		Expect(config.IsValidConfigKey("proxy.listen")).To(BeFalse())
	})
})

var _ = Describe("PresetConfig", func() {
	It("returns a postgres store for supabase", func() {
		cfg, err := config.PresetConfig("supabase")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Store.Provider).To(Equal("postgres"))
		Expect(cfg.Store.Target).To(HavePrefix("postgres://"))
	})

	It("returns a fully local stack", func() {
		cfg, err := config.PresetConfig("LOCAL")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Store.Provider).To(Equal("sqlite"))
		Expect(cfg.LLM.Provider).To(Equal("ollama"))
	})

	It("returns error for unknown preset", func() {
		_, err := config.PresetConfig("mongo")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
	})
})

var _ = Describe("RAGConfig", func() {
	It("parses the timeout", func() {
		Expect(config.RAGConfig{Timeout: "5s"}.TimeoutDuration().Seconds()).To(Equal(5.0))
	})

	It("falls back to the default for invalid timeouts", func() {
		Expect(config.RAGConfig{Timeout: "nope"}.TimeoutDuration().Seconds()).To(Equal(30.0))
	})
})
