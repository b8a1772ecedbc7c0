package bridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/sim"
	"github.com/knowrobco/neemsim/pkg/sim/bridge"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *bridge.Client
		requests []*http.Request
		bodies   []map[string]any
		status   int
		ctx      context.Context
	)

	BeforeEach(func() {
		requests = nil
		bodies = nil
		status = http.StatusOK
		ctx = context.Background()

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests = append(requests, r)
			var body map[string]any
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&body)
			}
			bodies = append(bodies, body)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/objects":
				_ = json.NewEncoder(w).Encode([]sim.Object{{Name: "cup_1"}})
			case r.Method == http.MethodGet:
				_ = json.NewEncoder(w).Encode(map[string]any{
					"pose": neem.NewPose(1, 2, 3, 0, 0, 0, 1),
				})
			}
		}))
		client = bridge.New(server.URL)
	})

	AfterEach(func() {
		server.Close()
	})

	It("spawns objects with a POST to /objects", func() {
		obj := sim.Object{Name: "cup_1", Kind: neem.KindCup, Pose: neem.NewPose(1, 0, 0, 0, 0, 0, 1)}
		Expect(client.Spawn(ctx, obj)).To(Succeed())

		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Method).To(Equal(http.MethodPost))
		Expect(requests[0].URL.Path).To(Equal("/objects"))
		Expect(bodies[0]["name"]).To(Equal("cup_1"))
	})

	It("sets poses with a PUT to the object pose resource", func() {
		Expect(client.SetPose(ctx, "cup_1", neem.NewPose(0, 1, 0, 0, 0, 0, 1))).To(Succeed())

		Expect(requests[0].Method).To(Equal(http.MethodPut))
		Expect(requests[0].URL.Path).To(Equal("/objects/cup_1/pose"))
	})

	It("reads poses back", func() {
		pose, err := client.Pose(ctx, "cup_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(pose.Position.X).To(Equal(1.0))
		Expect(pose.Orientation.W).To(Equal(1.0))
	})

	It("lists objects", func() {
		objs, err := client.Objects(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(objs).To(HaveLen(1))
		Expect(objs[0].Name).To(Equal("cup_1"))
	})

	It("posts attachments", func() {
		Expect(client.Attach(ctx, "hand", "cup_1")).To(Succeed())

		Expect(requests[0].URL.Path).To(Equal("/attachments"))
		Expect(bodies[0]["parent"]).To(Equal("hand"))
		Expect(bodies[0]["child"]).To(Equal("cup_1"))
	})

	It("deletes attachments by child", func() {
		Expect(client.Detach(ctx, "cup_1")).To(Succeed())

		Expect(requests[0].Method).To(Equal(http.MethodDelete))
		Expect(requests[0].URL.Path).To(Equal("/attachments/cup_1"))
	})

	It("maps 404 to ErrObjectNotFound", func() {
		status = http.StatusNotFound
		_, err := client.Pose(ctx, "ghost")
		Expect(err).To(MatchError(sim.ErrObjectNotFound))
	})

	It("surfaces other error statuses", func() {
		status = http.StatusInternalServerError
		err := client.Spawn(ctx, sim.Object{Name: "cup_1"})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("status 500"))
	})
})
