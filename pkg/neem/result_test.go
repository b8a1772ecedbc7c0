package neem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/neem"
)

func motionRow(episode, participant string, stamp, x float64) neem.Row {
	return neem.Row{
		neem.ColEpisodeID:    episode,
		neem.ColParticipant:  participant,
		neem.ColStamp:        stamp,
		neem.ColTranslationX: x,
		neem.ColTranslationY: 0.0,
		neem.ColTranslationZ: 0.0,
		neem.ColOrientationX: 0.0,
		neem.ColOrientationY: 0.0,
		neem.ColOrientationZ: 0.0,
		neem.ColOrientationW: 1.0,
	}
}

var _ = Describe("Result", func() {
	var result *neem.Result

	BeforeEach(func() {
		result = neem.NewResult([]neem.Row{
			motionRow("ep1", "soma:SM_Cup_2", 100.0, 0.1),
			motionRow("ep1", "soma:SM_Bowl_1", 100.5, 0.2),
			motionRow("ep1", "soma:SM_Cup_2", 101.0, 0.3),
			motionRow("ep2", "soma:SM_Milk_1", 200.0, 0.4),
		})
	})

	Describe("filters", func() {
		It("filters by episode", func() {
			Expect(result.FilterByEpisode("ep1").Len()).To(Equal(3))
			Expect(result.FilterByEpisode("ep2").Len()).To(Equal(1))
			Expect(result.FilterByEpisode("nope").Len()).To(BeZero())
		})

		It("filters by participant", func() {
			cup := result.FilterByParticipant("soma:SM_Cup_2")
			Expect(cup.Len()).To(Equal(2))
			Expect(cup.Stamps()).To(Equal([]float64{100.0, 101.0}))
		})

		It("compares across driver value representations", func() {
			raw := neem.NewResult([]neem.Row{
				{neem.ColParticipant: []byte("soma:SM_Cup_2")},
			})
			Expect(raw.FilterByParticipant("soma:SM_Cup_2").Len()).To(Equal(1))
		})
	})

	Describe("accessors", func() {
		It("lists unique participants in first-seen order", func() {
			Expect(result.Participants(true)).To(Equal([]string{
				"soma:SM_Cup_2", "soma:SM_Bowl_1", "soma:SM_Milk_1",
			}))
		})

		It("lists all participants when not unique", func() {
			Expect(result.Participants(false)).To(HaveLen(4))
		})

		It("assembles poses from translation and rotation columns", func() {
			poses := result.Poses()
			Expect(poses).To(HaveLen(4))
			Expect(poses[2].Position.X).To(Equal(0.3))
			Expect(poses[2].Orientation).To(Equal(neem.IdentityQuaternion))
		})

		It("groups column values per episode", func() {
			values := result.ValuePerEpisode(neem.ColParticipant, true)
			Expect(values).To(Equal([]neem.EpisodeValue{
				{EpisodeID: "ep1", Value: "soma:SM_Cup_2"},
				{EpisodeID: "ep1", Value: "soma:SM_Bowl_1"},
				{EpisodeID: "ep2", Value: "soma:SM_Milk_1"},
			}))
		})
	})

	Describe("NormalizeTime", func() {
		It("shifts stamps so the earliest is zero", func() {
			result.NormalizeTime()
			Expect(result.Stamps()).To(Equal([]float64{0.0, 0.5, 1.0, 100.0}))
		})

		It("is idempotent", func() {
			result.NormalizeTime().NormalizeTime()
			Expect(result.Stamps()[0]).To(BeZero())
			Expect(result.Stamps()[3]).To(Equal(100.0))
		})
	})

	Describe("TaskStartTime", func() {
		It("returns the interval begin of the task", func() {
			r := neem.NewResult([]neem.Row{
				{neem.ColTask: "t1", neem.ColIntervalBegin: 12.5},
			})
			begin, err := r.TaskStartTime("t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(begin).To(Equal(12.5))
		})

		It("errors for an unknown task", func() {
			_, err := result.TaskStartTime("missing")
			Expect(err).To(MatchError(ContainSubstring("not in result")))
		})
	})
})
