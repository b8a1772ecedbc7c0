package neem_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/neem"
)

var _ = Describe("Quaternion", func() {
	Describe("Normalize", func() {
		It("returns a unit quaternion", func() {
			q := neem.Quaternion{X: 0, Y: 0, Z: 2, W: 2}.Normalize()
			norm := math.Sqrt(q.Dot(q))
			Expect(norm).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("normalizes the zero quaternion to identity", func() {
			Expect(neem.Quaternion{}.Normalize()).To(Equal(neem.IdentityQuaternion))
		})
	})

	Describe("Slerp", func() {
		identity := neem.IdentityQuaternion
		// 90 degrees about Z
		quarterZ := neem.Quaternion{Z: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}

		It("returns the endpoints at t=0 and t=1", func() {
			q0 := identity.Slerp(quarterZ, 0)
			q1 := identity.Slerp(quarterZ, 1)
			Expect(q0.Dot(identity)).To(BeNumerically("~", 1.0, 1e-9))
			Expect(math.Abs(q1.Dot(quarterZ))).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("returns the halfway rotation at t=0.5", func() {
			// halfway between identity and 90° about Z is 45° about Z
			want := neem.Quaternion{Z: math.Sin(math.Pi / 8), W: math.Cos(math.Pi / 8)}
			got := identity.Slerp(quarterZ, 0.5)
			Expect(math.Abs(got.Dot(want))).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("takes the short arc for antipodal representations", func() {
			negIdentity := neem.Quaternion{W: -1}
			got := identity.Slerp(negIdentity, 0.5)
			Expect(math.Abs(got.Dot(identity))).To(BeNumerically("~", 1.0, 1e-9))
		})
	})
})

var _ = Describe("Pose", func() {
	It("detects the zero pose", func() {
		Expect(neem.Pose{}.IsZero()).To(BeTrue())
		Expect(neem.NewPose(0, 0, 0, 0, 0, 0, 1).IsZero()).To(BeTrue())
		Expect(neem.NewPose(1, 0, 0, 0, 0, 0, 1).IsZero()).To(BeFalse())
		Expect(neem.NewPose(0, 0, 0, 0, 0, 1, 0).IsZero()).To(BeFalse())
	})

	It("interpolates position linearly", func() {
		a := neem.NewPose(0, 0, 0, 0, 0, 0, 1)
		b := neem.NewPose(2, 4, 6, 0, 0, 0, 1)
		mid := a.Interpolate(b, 0.5)
		Expect(mid.Position.X).To(BeNumerically("~", 1.0, 1e-12))
		Expect(mid.Position.Y).To(BeNumerically("~", 2.0, 1e-12))
		Expect(mid.Position.Z).To(BeNumerically("~", 3.0, 1e-12))
	})
})
