package dbtarget

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolve", func() {
	var (
		origHome     string
		origXDG      string
		origPostgres string
		origSQLite   string
		origDB       string
		origCwd      string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origPostgres = os.Getenv("NEEMSIM_POSTGRES")
		origSQLite = os.Getenv("NEEMSIM_SQLITE")
		origDB = os.Getenv("NEEMSIM_DB")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Isolate from any real databases on the host.
		Expect(os.Setenv("NEEMSIM_POSTGRES", "")).To(Succeed())
		Expect(os.Setenv("NEEMSIM_SQLITE", "")).To(Succeed())
		Expect(os.Setenv("NEEMSIM_DB", "")).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("NEEMSIM_POSTGRES", origPostgres)).To(Succeed())
		Expect(os.Setenv("NEEMSIM_SQLITE", origSQLite)).To(Succeed())
		Expect(os.Setenv("NEEMSIM_DB", origDB)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	isolate := func() {
		homeDir := GinkgoT().TempDir()
		cwd := GinkgoT().TempDir()
		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Chdir(cwd)).To(Succeed())
	}

	It("prefers a postgres override over everything", func() {
		url, err := Resolve("/tmp/neems.sqlite", "postgres://user@host/neems")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("postgres://user@host/neems"))
	})

	It("prefers NEEMSIM_POSTGRES over sqlite overrides", func() {
		Expect(os.Setenv("NEEMSIM_POSTGRES", "postgres://env@host/neems")).To(Succeed())

		url, err := Resolve("/tmp/neems.sqlite", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("postgres://env@host/neems"))
	})

	It("uses the sqlite override when no postgres is configured", func() {
		url, err := Resolve("/tmp/neems.sqlite", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("/tmp/neems.sqlite"))
	})

	It("falls back to NEEMSIM_SQLITE", func() {
		isolate()
		Expect(os.Setenv("NEEMSIM_SQLITE", "/tmp/custom.db")).To(Succeed())

		url, err := Resolve("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("/tmp/custom.db"))
	})

	It("resolves ~/.neemsim/neems.sqlite when present", func() {
		isolate()
		home := os.Getenv("HOME")
		dir := filepath.Join(home, ".neemsim")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		path := filepath.Join(dir, "neems.sqlite")
		Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())

		url, err := Resolve("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal(path))
	})

	It("resolves a local neems.sqlite in the working directory", func() {
		isolate()
		Expect(os.WriteFile("neems.sqlite", nil, 0o600)).To(Succeed())

		url, err := Resolve("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("neems.sqlite"))
	})

	It("errors when nothing is configured and no file exists", func() {
		isolate()

		_, err := Resolve("", "")
		Expect(err).To(HaveOccurred())
	})
})
