package kaunicmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	kaunicmder "github.com/papercomputeco/kauni/cmd/kauni"
)

var _ = Describe("NewKauniCmd", func() {
	It("registers every subcommand", func() {
		cmd := kaunicmder.NewKauniCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("serve", "ingest", "chat", "search", "config", "auth", "version"))
	})

	It("carries the global flags", func() {
		cmd := kaunicmder.NewKauniCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("nests the ingest sources", func() {
		cmd := kaunicmder.NewKauniCmd()
		ingest, _, err := cmd.Find([]string{"ingest", "kto"})
		Expect(err).NotTo(HaveOccurred())
		Expect(ingest.Name()).To(Equal("kto"))
	})
})
