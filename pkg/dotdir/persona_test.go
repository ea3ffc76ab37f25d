package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/dotdir"
)

var _ = Describe("PersonaState", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-persona-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns nil when no persona file exists", func() {
		state, err := m.LoadPersonaState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("round trips a saved persona", func() {
		err := m.SavePersonaState(&dotdir.PersonaState{System: "sys", Style: "short"}, tmpDir)
		Expect(err).NotTo(HaveOccurred())

		state, err := m.LoadPersonaState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.System).To(Equal("sys"))
		Expect(state.Style).To(Equal("short"))
	})

	It("rejects a nil state", func() {
		Expect(m.SavePersonaState(nil, tmpDir)).To(HaveOccurred())
	})

	It("returns an error for malformed JSON", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "persona.json"), []byte("{nope"), 0o600)).To(Succeed())

		_, err := m.LoadPersonaState(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("parsing persona state"))
	})
})
