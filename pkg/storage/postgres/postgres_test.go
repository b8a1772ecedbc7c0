package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"entgo.io/ent/dialect"

	"github.com/knowrobco/neemsim/pkg/storage/postgres"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("NEEMSIM_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("NEEMSIM_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Conn", func() {
	var (
		conn *postgres.Conn
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dsn := connStr()

		var err error
		conn, err = postgres.Open(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if conn != nil {
			conn.Close()
		}
	})

	It("reports the postgres dialect", func() {
		Expect(conn.Dialect()).To(Equal(dialect.Postgres))
	})

	It("answers a trivial query", func() {
		var one int
		Expect(conn.DB().QueryRowContext(ctx, "SELECT 1").Scan(&one)).To(Succeed())
		Expect(one).To(Equal(1))
	})
})
