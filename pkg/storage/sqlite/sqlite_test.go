package sqlite_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"entgo.io/ent/dialect"

	"github.com/knowrobco/neemsim/pkg/storage/sqlite"
)

var _ = Describe("Conn", func() {
	var conn *sqlite.Conn

	BeforeEach(func() {
		var err error
		conn, err = sqlite.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if conn != nil {
			conn.Close()
		}
	})

	It("reports the sqlite dialect", func() {
		Expect(conn.Dialect()).To(Equal(dialect.SQLite))
	})

	It("bootstraps the episode schema", func() {
		_, err := conn.DB().Exec(
			"INSERT INTO neems (_id, name) VALUES ('5f22b1f512eb8aa29babe320', 'set table')")
		Expect(err).NotTo(HaveOccurred())

		var name string
		err = conn.DB().QueryRow(
			"SELECT name FROM neems WHERE _id = '5f22b1f512eb8aa29babe320'").Scan(&name)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("set table"))
	})

	It("creates the transform join chain tables", func() {
		for _, table := range []string{
			"tf", "tf_header", "tf_transform", "transform_translation", "transform_rotation",
		} {
			var count int
			err := conn.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
			Expect(err).NotTo(HaveOccurred(), "table %s should exist", table)
			Expect(count).To(BeZero())
		}
	})

	It("opens a file database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "episodes.db")
		fileConn, err := sqlite.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer fileConn.Close()

		Expect(fileConn.DB().Ping()).To(Succeed())
	})

	It("is idempotent over an existing database", func() {
		path := filepath.Join(GinkgoT().TempDir(), "episodes.db")
		first, err := sqlite.Open(path)
		Expect(err).NotTo(HaveOccurred())
		_, err = first.DB().Exec("INSERT INTO neems (_id) VALUES ('abc')")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Close()).To(Succeed())

		second, err := sqlite.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer second.Close()

		var count int
		Expect(second.DB().QueryRow("SELECT COUNT(*) FROM neems").Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})
})
