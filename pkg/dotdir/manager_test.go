package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		root string
		home string
		work string
		m    *dotdir.Manager
	)

	BeforeEach(func() {
		var err error
		root, err = filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		home = filepath.Join(root, "home")
		work = filepath.Join(root, "work")
		Expect(os.MkdirAll(home, 0o755)).To(Succeed())
		Expect(os.MkdirAll(work, 0o755)).To(Succeed())

		GinkgoT().Setenv("HOME", home)
		orig, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(work)).To(Succeed())
		DeferCleanup(os.Chdir, orig)
		m = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("creates and returns an override directory", func() {
			override := filepath.Join(root, "custom", "kauni")
			dir, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(override))
			Expect(override).To(BeADirectory())
		})

		It("prefers the override over ./.kauni", func() {
			Expect(os.Mkdir(filepath.Join(work, ".kauni"), 0o755)).To(Succeed())
			override := filepath.Join(root, "override")

			Expect(m.Target(override)).To(Equal(override))
		})

		It("prefers ./.kauni over ~/.kauni", func() {
			Expect(os.Mkdir(filepath.Join(home, ".kauni"), 0o755)).To(Succeed())
			Expect(os.Mkdir(filepath.Join(work, ".kauni"), 0o755)).To(Succeed())

			Expect(m.Target("")).To(Equal(filepath.Join(work, ".kauni")))
		})

		It("falls back to ~/.kauni", func() {
			Expect(os.Mkdir(filepath.Join(home, ".kauni"), 0o755)).To(Succeed())
			Expect(m.Target("")).To(Equal(filepath.Join(home, ".kauni")))
		})

		It("resolves nothing when no directory exists", func() {
			Expect(m.Target("")).To(BeEmpty())
		})

		It("ignores a ~/.kauni that is a file", func() {
			Expect(os.WriteFile(filepath.Join(home, ".kauni"), nil, 0o600)).To(Succeed())
			Expect(m.Target("")).To(BeEmpty())
		})
	})

	Describe("HomeDir", func() {
		It("creates ~/.kauni", func() {
			dir, err := m.HomeDir()
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(home, ".kauni")))
			Expect(dir).To(BeADirectory())
		})
	})
})
