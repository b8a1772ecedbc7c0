package redo_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/redo"
	"github.com/knowrobco/neemsim/pkg/sim"
	"github.com/knowrobco/neemsim/pkg/sim/world"
)

var _ = Describe("Actions", func() {
	var (
		w   *world.World
		ctx context.Context
	)

	BeforeEach(func() {
		w = world.New()
		ctx = context.Background()

		Expect(w.Spawn(ctx, sim.Object{Name: "pr2", Kind: neem.KindRobot})).To(Succeed())
		Expect(w.Spawn(ctx, sim.Object{
			Name: "soma:Cup_1",
			Kind: neem.KindCup,
			Pose: neem.NewPose(2, 0, 0.5, 0, 0, 0, 1),
		})).To(Succeed())
	})

	Describe("Navigate", func() {
		It("drives the robot to the target pose", func() {
			target := neem.NewPose(1, 2, 0, 0, 0, 0, 1)
			action := redo.Navigate{Robot: "pr2", Target: target}

			Expect(action.Perform(ctx, w)).To(Succeed())
			Expect(w.Pose(ctx, "pr2")).To(Equal(target))
		})
	})

	Describe("LookAt", func() {
		It("turns the robot toward the target without moving it", func() {
			action := redo.LookAt{Robot: "pr2", Target: r3.Vec{X: 0, Y: 3}}

			Expect(action.Perform(ctx, w)).To(Succeed())

			pose, err := w.Pose(ctx, "pr2")
			Expect(err).NotTo(HaveOccurred())
			Expect(pose.Position).To(Equal(r3.Vec{}))
			// Facing +y is a 90 degree rotation about z.
			Expect(pose.Orientation.Z).To(BeNumerically("~", math.Sqrt2/2, 1e-9))
			Expect(pose.Orientation.W).To(BeNumerically("~", math.Sqrt2/2, 1e-9))
		})
	})

	Describe("PickUp", func() {
		It("approaches, attaches and lifts the object", func() {
			action := redo.PickUp{Robot: "pr2", Object: "soma:Cup_1"}

			Expect(action.Perform(ctx, w)).To(Succeed())

			robotPose, err := w.Pose(ctx, "pr2")
			Expect(err).NotTo(HaveOccurred())
			Expect(robotPose.Position.X).To(BeNumerically("~", 1.5, 1e-9))

			cupPose, err := w.Pose(ctx, "soma:Cup_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(cupPose.Position.Z).To(BeNumerically("~", 0.6, 1e-9))

			parent, attached := w.AttachedTo("soma:Cup_1")
			Expect(attached).To(BeTrue())
			Expect(parent).To(Equal("pr2"))
		})

		It("fails when the object is not in the scene", func() {
			action := redo.PickUp{Robot: "pr2", Object: "soma:Ghost_1"}
			Expect(action.Perform(ctx, w)).To(MatchError(sim.ErrObjectNotFound))
		})
	})

	Describe("Place", func() {
		It("sets the object down and releases it", func() {
			pick := redo.PickUp{Robot: "pr2", Object: "soma:Cup_1"}
			Expect(pick.Perform(ctx, w)).To(Succeed())

			target := neem.NewPose(3, 1, 0.8, 0, 0, 0, 1)
			place := redo.Place{Robot: "pr2", Object: "soma:Cup_1", Target: target}
			Expect(place.Perform(ctx, w)).To(Succeed())

			Expect(w.Pose(ctx, "soma:Cup_1")).To(Equal(target))
			_, attached := w.AttachedTo("soma:Cup_1")
			Expect(attached).To(BeFalse())
		})
	})

	Describe("Transport", func() {
		It("carries the object to the target and releases it there", func() {
			target := neem.NewPose(4, 4, 0.9, 0, 0, 0, 1)
			action := redo.Transport{Robot: "pr2", Object: "soma:Cup_1", Target: target}

			Expect(action.Perform(ctx, w)).To(Succeed())

			Expect(w.Pose(ctx, "soma:Cup_1")).To(Equal(target))
			_, attached := w.AttachedTo("soma:Cup_1")
			Expect(attached).To(BeFalse())
		})
	})

	Describe("Grasping and Release", func() {
		It("attaches without moving, then lets go", func() {
			grasp := redo.Grasping{Robot: "pr2", Object: "soma:Cup_1"}
			Expect(grasp.Perform(ctx, w)).To(Succeed())

			pose, err := w.Pose(ctx, "soma:Cup_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(pose.Position).To(Equal(r3.Vec{X: 2, Z: 0.5}))

			parent, attached := w.AttachedTo("soma:Cup_1")
			Expect(attached).To(BeTrue())
			Expect(parent).To(Equal("pr2"))

			release := redo.Release{Robot: "pr2", Object: "soma:Cup_1"}
			Expect(release.Perform(ctx, w)).To(Succeed())

			_, attached = w.AttachedTo("soma:Cup_1")
			Expect(attached).To(BeFalse())
		})
	})

	Describe("ParkArms", func() {
		It("requires the robot to be in the scene", func() {
			Expect(redo.ParkArms{Robot: "pr2"}.Perform(ctx, w)).To(Succeed())
			Expect(redo.ParkArms{Robot: "hsrb"}.Perform(ctx, w)).
				To(MatchError(sim.ErrObjectNotFound))
		})
	})
})
