package replay_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/replay"
)

var _ = Describe("MotionData", func() {
	var data replay.MotionData

	BeforeEach(func() {
		data = replay.MotionData{
			Poses: []neem.Pose{
				neem.NewPose(0, 0, 0, 0, 0, 0, 1),
				neem.NewPose(1, 0, 0, 0, 0, 0, 1),
				neem.NewPose(0, 1, 0, 0, 0, 0, 1),
				neem.NewPose(2, 0, 0, 0, 0, 0, 1),
			},
			Times:     []float64{1.0, 1.5, 2.0, 3.0},
			Instances: []string{"cup_1", "cup_1", "bowl_2", "cup_1"},
		}
	})

	It("lists unique instances in first-seen order", func() {
		Expect(data.UniqueInstances()).To(Equal([]string{"cup_1", "bowl_2"}))
	})

	It("filters samples by instance", func() {
		cup := data.FilterByInstance("cup_1")
		Expect(cup.Len()).To(Equal(3))
		Expect(cup.Times).To(Equal([]float64{1.0, 1.5, 3.0}))
		Expect(cup.Instances).To(Equal([]string{"cup_1", "cup_1", "cup_1"}))
	})

	It("returns the latest pose before a stamp", func() {
		pose, ok := data.LatestPoseBefore("cup_1", 2.5)
		Expect(ok).To(BeTrue())
		Expect(pose.Position.X).To(Equal(1.0))
	})

	It("includes samples exactly at the stamp", func() {
		pose, ok := data.LatestPoseBefore("cup_1", 1.5)
		Expect(ok).To(BeTrue())
		Expect(pose.Position.X).To(Equal(1.0))
	})

	It("reports no pose before the first sample", func() {
		_, ok := data.LatestPoseBefore("cup_1", 0.5)
		Expect(ok).To(BeFalse())
	})

	It("returns the last recorded pose of an instance", func() {
		pose, ok := data.LatestPose("cup_1")
		Expect(ok).To(BeTrue())
		Expect(pose.Position.X).To(Equal(2.0))
	})

	It("reports unknown instances", func() {
		_, ok := data.LatestPose("ghost")
		Expect(ok).To(BeFalse())
	})

	Describe("Resample", func() {
		It("rebuilds each instance on the fixed step with interpolated positions", func() {
			res := data.Resample(0.5)

			cup := res.FilterByInstance("cup_1")
			Expect(cup.Times).To(Equal([]float64{1.0, 1.5, 2.0, 2.5, 3.0}))
			Expect(cup.Poses[0].Position.X).To(BeNumerically("~", 0.0, 1e-9))
			Expect(cup.Poses[1].Position.X).To(BeNumerically("~", 1.0, 1e-9))
			Expect(cup.Poses[2].Position.X).To(BeNumerically("~", 4.0/3.0, 1e-9))
			Expect(cup.Poses[3].Position.X).To(BeNumerically("~", 5.0/3.0, 1e-9))
			Expect(cup.Poses[4].Position.X).To(BeNumerically("~", 2.0, 1e-9))

			// A single-sample instance keeps its one pose, never extrapolated.
			bowl := res.FilterByInstance("bowl_2")
			Expect(bowl.Times).To(Equal([]float64{2.0}))
			Expect(bowl.Poses[0].Position.Y).To(Equal(1.0))
		})

		It("keeps the merged stream in ascending stamp order", func() {
			res := data.Resample(0.5)
			for i := 1; i < res.Len(); i++ {
				Expect(res.Times[i]).To(BeNumerically(">=", res.Times[i-1]))
			}
		})

		It("slerps orientations between samples", func() {
			turn := replay.MotionData{
				Poses: []neem.Pose{
					neem.NewPose(0, 0, 0, 0, 0, 0, 1),
					neem.NewPose(0, 0, 0, 0, 0, math.Sin(math.Pi/4), math.Cos(math.Pi/4)),
				},
				Times:     []float64{0.0, 1.0},
				Instances: []string{"cup_1", "cup_1"},
			}
			res := turn.Resample(0.5)
			Expect(res.Len()).To(Equal(3))
			mid := res.Poses[1].Orientation
			Expect(mid.Z).To(BeNumerically("~", math.Sin(math.Pi/8), 1e-9))
			Expect(mid.W).To(BeNumerically("~", math.Cos(math.Pi/8), 1e-9))
		})

		It("returns the data unchanged for a non-positive step", func() {
			Expect(data.Resample(0)).To(Equal(data))
			Expect(data.Resample(-1)).To(Equal(data))
		})
	})
})
