package mesh_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/mesh"
)

var _ = Describe("EnvironmentDescription", func() {
	It("maps the kitchen to the apartment model", func() {
		Expect(mesh.EnvironmentDescription("Kitchen")).To(Equal("apartment.urdf"))
	})

	It("fails for unknown environments", func() {
		_, err := mesh.EnvironmentDescription("Mars")
		Expect(err).To(MatchError(mesh.ErrNoDescription))
	})
})

var _ = Describe("PerformerDescription", func() {
	DescribeTable("maps robot names to URDF files",
		func(performer, urdf string) {
			Expect(mesh.PerformerDescription(performer)).To(Equal(urdf))
		},
		Entry("pr2", "knowrob:PR2_0", "pr2.urdf"),
		Entry("donbot", "iai_donbot_robot", "iai_donbot.urdf"),
		Entry("tiago", "Tiago_1", "tiago_dual.urdf"),
		Entry("ur5e before ur5", "ur5e_arm", "ur5e_without_gripper.urdf"),
		Entry("plain ur5", "ur5_arm", "ur5_robotiq.urdf"),
	)

	It("fails for unknown performers", func() {
		_, err := mesh.PerformerDescription("valkyrie")
		Expect(err).To(MatchError(mesh.ErrNoDescription))
	})
})

var _ = Describe("ShapeFallback", func() {
	DescribeTable("approximates participants with stand-in meshes",
		func(participant, file string) {
			Expect(mesh.ShapeFallback(participant)).To(Equal(file))
		},
		Entry("cup", "soma:Cup_1", "jeroen_cup.stl"),
		Entry("pot counts as a bowl", "CookingPot_2", "bowl.stl"),
		Entry("plate counts as a bowl", "DinnerPlate", "bowl.stl"),
		Entry("pitcher wins over milk", "MilkPitcher_0", "Static_MilkPitcher.stl"),
		Entry("bottle", "soma:CokeBottle_1", "Static_CokeBottle.stl"),
		Entry("spoon", "soma:Spoon_3", "spoon.stl"),
	)

	It("fails when no shape matches", func() {
		_, err := mesh.ShapeFallback("soma:Widget_9")
		Expect(err).To(MatchError(mesh.ErrNoDescription))
	})
})
