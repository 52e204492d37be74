package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/psxsim/config"
	"github.com/sarchlab/psxsim/mem/icache"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	It("should have a valid default", func() {
		c := config.Default()

		Expect(c.Validate()).To(Succeed())
		Expect(c.RAMSize).To(Equal(uint32(2 * 1024 * 1024)))
		Expect(c.FillPolicy()).To(Equal(icache.FillWord))
	})

	DescribeTable("Save and Load",
		func(name string) {
			path := filepath.Join(tempDir, name)
			c := config.Default()
			c.BIOS = "scph1001.bin"
			c.MaxSteps = 1000
			c.ICacheFill = "line_end"
			c.VectorExceptions = true

			Expect(c.Save(path)).To(Succeed())
			loaded, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		},
		Entry("json", "psxsim.json"),
		Entry("yaml", "psxsim.yaml"),
	)

	It("should keep defaults for missing fields", func() {
		path := filepath.Join(tempDir, "partial.yml")
		Expect(os.WriteFile(path, []byte("exe: demo.exe\ntrace: true\n"), 0644)).To(Succeed())

		c, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.EXE).To(Equal("demo.exe"))
		Expect(c.Trace).To(BeTrue())
		Expect(c.LogLevel).To(Equal("info"))
		Expect(c.RAMSize).To(Equal(config.Default().RAMSize))
	})

	It("should report unreadable and malformed files", func() {
		_, err := config.Load(filepath.Join(tempDir, "missing.json"))
		Expect(err).To(MatchError(ContainSubstring("failed to read")))

		path := filepath.Join(tempDir, "bad.json")
		Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())
		_, err = config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse")))
	})

	DescribeTable("Validate rejects",
		func(mutate func(*config.Config), msg string) {
			c := config.Default()
			mutate(c)
			Expect(c.Validate()).To(MatchError(ContainSubstring(msg)))
		},
		Entry("zero RAM", func(c *config.Config) { c.RAMSize = 0 }, "ram_size"),
		Entry("oversized RAM", func(c *config.Config) { c.RAMSize = 8 << 20 }, "ram_size"),
		Entry("odd RAM size", func(c *config.Config) { c.RAMSize = 3 << 10 }, "power of two"),
		Entry("unknown fill policy", func(c *config.Config) { c.ICacheFill = "line" }, "fill policy"),
		Entry("unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"),
	)

	It("should clone independently", func() {
		c := config.Default()
		clone := c.Clone()
		clone.Trace = true

		Expect(c.Trace).To(BeFalse())
	})
})
