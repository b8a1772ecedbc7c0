package utils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/utils"
)

var _ = Describe("Truncate", func() {
	It("returns short strings unchanged", func() {
		Expect(utils.Truncate("pouring", 10)).To(Equal("pouring"))
	})

	It("returns strings at the limit unchanged", func() {
		Expect(utils.Truncate("pour", 4)).To(Equal("pour"))
	})

	It("truncates long strings with an ellipsis", func() {
		Expect(utils.Truncate("set a table for breakfast", 10)).To(Equal("set a tabl..."))
	})
})
