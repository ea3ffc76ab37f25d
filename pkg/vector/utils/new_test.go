package vectorutils_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector/inmemory"
	"github.com/papercomputeco/kauni/pkg/vector/sqlitevec"
	vectorutils "github.com/papercomputeco/kauni/pkg/vector/utils"
)

var _ = Describe("NewVectorDriver", func() {
	ctx := context.Background()

	It("builds the memory driver", func() {
		d, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{ProviderType: "memory"})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("builds the sqlite driver", func() {
		d, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
			ProviderType: "sqlite",
			Target:       ":memory:",
			Dimensions:   8,
			Logger:       logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&sqlitevec.Driver{}))
		Expect(d.Close()).To(Succeed())
	})

	It("rejects unknown providers", func() {
		_, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{ProviderType: "supabase-rest"})
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider")))
	})
})
