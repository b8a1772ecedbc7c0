package mesh_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/mesh"
)

var _ = Describe("NameCandidates", func() {
	DescribeTable("derives search candidates from participant IRIs",
		func(participant string, expected []string) {
			Expect(mesh.NameCandidates(participant)).To(Equal(expected))
		},
		Entry("strips the IRI prefix and instance digits",
			"soma:Cup_1", []string{"Cup"}),
		Entry("keeps two-part names and adds a de-underscored variant",
			"SM_Bowl_2", []string{"SM_Bowl", "SMBowl"}),
		Entry("adds a camel-case variant for lowercase names",
			"soma:jeroen_cup_1", []string{"jeroen_cup", "JeroenCup"}),
		Entry("drops the last part of long names",
			"kitchen_table_leg_3", []string{"kitchen_table", "KitchenTable"}),
		Entry("strips multi-digit suffixes",
			"soma:Milk_Box_12", []string{"Milk_Box", "MilkBox"}),
		Entry("leaves plain names alone",
			"spoon", []string{"spoon"}),
	)

	It("returns nothing for a name that is all suffix", func() {
		Expect(mesh.NameCandidates("soma:42")).To(BeEmpty())
	})
})

var _ = Describe("IsNilParticipant", func() {
	It("detects the NIL filler", func() {
		Expect(mesh.IsNilParticipant("NIL")).To(BeTrue())
		Expect(mesh.IsNilParticipant("soma:NIL_0")).To(BeTrue())
	})

	It("does not flag real participants", func() {
		Expect(mesh.IsNilParticipant("soma:Cup_1")).To(BeFalse())
	})
})
