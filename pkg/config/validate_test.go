package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/config"
)

var _ = Describe("Validate", func() {
	It("accepts a complete config", func() {
		cfg := config.NewDefaultConfig()
		cfg.Store.Target = "postgres://localhost/kauni"
		Expect(config.Validate(cfg)).To(Succeed())
	})

	It("does not require a target for the memory store", func() {
		cfg := config.NewDefaultConfig()
		cfg.Store.Provider = "memory"
		Expect(config.Validate(cfg)).To(Succeed())
	})

	It("names every missing key", func() {
		cfg := config.NewDefaultConfig()
		cfg.LLM.Model = ""
		cfg.Embedding.Dimensions = 0
		cfg.Events.Provider = "kafka"

		err := config.Validate(cfg)
		Expect(err).To(MatchError(config.ErrConfiguration))
		Expect(err.Error()).To(ContainSubstring("store.target"))
		Expect(err.Error()).To(ContainSubstring("llm.model"))
		Expect(err.Error()).To(ContainSubstring("embedding.dimensions"))
		Expect(err.Error()).To(ContainSubstring("events.brokers"))
	})

	It("rejects a nil config", func() {
		Expect(config.Validate(nil)).To(MatchError(config.ErrConfiguration))
	})
})
