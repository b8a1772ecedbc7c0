package replay_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/replay"
	"github.com/knowrobco/neemsim/pkg/sim/world"
)

// fakeDescriber resolves from fixed maps and fails on anything else.
type fakeDescriber struct {
	environments map[string]string
	participants map[string]string
	performers   map[string]string
}

func (d *fakeDescriber) DescribeEnvironment(_ context.Context, environment string) (string, error) {
	if path, ok := d.environments[environment]; ok {
		return path, nil
	}
	return "", errors.New("unknown environment")
}

func (d *fakeDescriber) DescribeParticipant(_ context.Context, participant string, _ *neem.Result) (string, error) {
	if path, ok := d.participants[participant]; ok {
		return path, nil
	}
	return "", errors.New("unknown participant")
}

func (d *fakeDescriber) DescribePerformer(_ context.Context, performer string) (string, error) {
	if path, ok := d.performers[performer]; ok {
		return path, nil
	}
	return "", errors.New("unknown performer")
}

var _ = Describe("Spawner", func() {
	var (
		w       *world.World
		spawner *replay.Spawner
		ctx     context.Context
		res     *neem.Result
	)

	BeforeEach(func() {
		w = world.New()
		ctx = context.Background()
		spawner = replay.NewSpawner(w, &fakeDescriber{
			environments: map[string]string{"Kitchen": "apartment.urdf"},
			participants: map[string]string{"soma:Cup_1": "jeroen_cup.stl"},
			performers:   map[string]string{"pr2_robot": "pr2.urdf"},
		})
		res = neem.NewResult([]neem.Row{
			{
				neem.ColEnvironment: "Kitchen",
				neem.ColParticipant: "soma:Cup_1",
				neem.ColPerformer:   "pr2_robot",
			},
			{
				neem.ColEnvironment: "Kitchen",
				neem.ColParticipant: "soma:Bowl_2",
				neem.ColPerformer:   "pr2_robot",
			},
		})
	})

	It("spawns the environment with its description", func() {
		obj, err := spawner.SpawnEnvironment(ctx, res)
		Expect(err).NotTo(HaveOccurred())
		Expect(obj.Name).To(Equal("Kitchen"))
		Expect(obj.Description).To(Equal("apartment.urdf"))
		Expect(obj.Kind).To(Equal(neem.KindEnvironment))

		objs, err := w.Objects(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs).To(HaveLen(1))
	})

	It("fails when the result has no environment", func() {
		_, err := spawner.SpawnEnvironment(ctx, neem.NewResult(nil))
		Expect(err).To(HaveOccurred())
	})

	It("spawns every participant, bare when undescribable", func() {
		objs, err := spawner.SpawnParticipants(ctx, res)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs).To(HaveLen(2))
		Expect(objs["soma:Cup_1"].Description).To(Equal("jeroen_cup.stl"))
		Expect(objs["soma:Cup_1"].Kind).To(Equal(neem.KindCup))
		Expect(objs["soma:Bowl_2"].Description).To(BeEmpty())
		Expect(objs["soma:Bowl_2"].Kind).To(Equal(neem.KindBowl))
	})

	It("spawns participants under their display name", func() {
		objs, err := spawner.SpawnParticipants(ctx, res)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs["soma:Cup_1"].Name).To(Equal("Cup_1"))
		Expect(objs["soma:Bowl_2"].Name).To(Equal("Bowl_2"))

		sceneObjs, err := w.Objects(ctx)
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(sceneObjs))
		for _, obj := range sceneObjs {
			names = append(names, obj.Name)
		}
		Expect(names).To(ConsistOf("Cup_1", "Bowl_2"))
	})

	It("suffixes duplicate display names with a running number", func() {
		dup := neem.NewResult([]neem.Row{
			{neem.ColParticipant: "soma:SM_Cup_2"},
			{neem.ColParticipant: "kitchen:SM_Cup_2"},
		})
		objs, err := spawner.SpawnParticipants(ctx, dup)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs["soma:SM_Cup_2"].Name).To(Equal("SM_Cup_2"))
		Expect(objs["kitchen:SM_Cup_2"].Name).To(Equal("SM_Cup_2_2"))
		Expect(spawner.SceneName("soma:SM_Cup_2")).To(Equal("SM_Cup_2"))
		Expect(spawner.SceneName("kitchen:SM_Cup_2")).To(Equal("SM_Cup_2_2"))
	})

	It("does not spawn the NIL placeholder participant", func() {
		mixed := neem.NewResult([]neem.Row{
			{neem.ColParticipant: "soma:NIL"},
			{neem.ColParticipant: "soma:SM_Cup_2"},
		})
		objs, err := spawner.SpawnParticipants(ctx, mixed)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs).To(HaveLen(1))
		Expect(objs).To(HaveKey("soma:SM_Cup_2"))

		sceneObjs, err := w.Objects(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sceneObjs).To(HaveLen(1))
		Expect(sceneObjs[0].Name).To(Equal("SM_Cup_2"))
	})

	It("spawns known robots as robot objects", func() {
		objs, err := spawner.SpawnPerformers(ctx, res)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs).To(HaveLen(1))
		Expect(objs["pr2_robot"].Kind).To(Equal(neem.KindRobot))
		Expect(objs["pr2_robot"].Description).To(Equal("pr2.urdf"))
	})

	It("maps spawned instances onto their scene names", func() {
		_, err := spawner.SpawnParticipants(ctx, res)
		Expect(err).NotTo(HaveOccurred())
		Expect(spawner.SceneNames()).To(Equal(map[string]string{
			"soma:Cup_1":  "Cup_1",
			"soma:Bowl_2": "Bowl_2",
		}))
	})
})
