package driver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vmclab/internal/driver"
	"github.com/san-kum/vmclab/internal/expect"
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/machine"
	"github.com/san-kum/vmclab/internal/operator"
	"github.com/san-kum/vmclab/internal/optim"
	"github.com/san-kum/vmclab/internal/sampler"
)

// buildTFIM wires a driver for the 2-site transverse-field Ising model
// at J = h = 1, whose exact ground energy is -sqrt(5).
func buildTFIM(seed int64, samples int) (*driver.VMC, *expect.State) {
	hi, err := hilbert.Spin(2)
	Expect(err).NotTo(HaveOccurred())

	m := machine.NewRBM(hi, 4, seed)
	smp, err := sampler.NewMetropolis(hi, m, sampler.NewLocalRule(hi), 4, seed)
	Expect(err).NotTo(HaveOccurred())

	st, err := expect.NewState(smp, samples)
	Expect(err).NotTo(HaveOccurred())

	op := operator.NewIsing(hi, 1.0, 1.0, false)
	d := driver.New(st, op, optim.NewSGD(0.05, 0))
	return d, st
}

var _ = Describe("VMC optimization", func() {
	It("records one energy estimate per iteration", func() {
		d, _ := buildTFIM(7, 32)

		cfg := driver.DefaultConfig()
		cfg.Iterations = 10

		result, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Energies).To(HaveLen(10))
		Expect(result.Acceptance).To(HaveLen(10))
	})

	It("keeps acceptance rates in (0, 1]", func() {
		d, _ := buildTFIM(8, 32)

		cfg := driver.DefaultConfig()
		cfg.Iterations = 5

		result, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, a := range result.Acceptance {
			Expect(a).To(BeNumerically(">", 0))
			Expect(a).To(BeNumerically("<=", 1))
		}
	})

	It("lowers the energy of the transverse-field Ising model", func() {
		d, st := buildTFIM(9, 128)
		d.SetSR(optim.NewSR(0.02))

		cfg := driver.DefaultConfig()
		cfg.Iterations = 120

		_, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		stats, err := expect.Expect(st, operator.NewIsing(st.Sampler().Hilbert(), 1.0, 1.0, false))
		Expect(err).NotTo(HaveOccurred())

		// Exact ground energy is -sqrt(5) ~ -2.236; a short run with a
		// small RBM should comfortably pass below -1.5.
		Expect(real(stats.Mean)).To(BeNumerically("<", -1.5))
	})

	It("reports chain agreement through Rhat", func() {
		d, _ := buildTFIM(10, 64)

		cfg := driver.DefaultConfig()
		cfg.Iterations = 20

		result, err := d.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		last := result.Energies[len(result.Energies)-1]
		Expect(last.Rhat).To(BeNumerically(">", 0))
		Expect(last.Rhat).To(BeNumerically("<", 2))
	})
})
