package mesh_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/mesh"
)

var _ = Describe("Pool", func() {
	It("requires a resolver", func() {
		_, err := mesh.NewPool(&mesh.PoolConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("resolves queued participants in the background", func() {
		dir := GinkgoT().TempDir()
		local := filepath.Join(dir, "jeroen_cup.stl")
		Expect(os.WriteFile(local, []byte("mesh"), 0o644)).To(Succeed())

		pool, err := mesh.NewPool(&mesh.PoolConfig{
			Resolver: mesh.NewResolver(mesh.WithDataDirs(dir)),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(mesh.Job{Participant: "soma:jeroen_cup_1"})).To(BeTrue())
		Expect(pool.Enqueue(mesh.Job{Participant: "soma:NIL_0"})).To(BeTrue())
		pool.Close()

		resolved := pool.Resolved()
		Expect(resolved).To(HaveKeyWithValue("soma:jeroen_cup_1", local))
		Expect(resolved).To(HaveKeyWithValue("soma:NIL_0", ""))
	})

	It("drops jobs when the queue is full", func() {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		repo := mesh.NewRepository(server.URL+"/", mesh.WithRepositoryClient(server.Client()))
		pool, err := mesh.NewPool(&mesh.PoolConfig{
			Resolver:   mesh.NewResolver(mesh.WithRepository(repo)),
			NumWorkers: 1,
			QueueSize:  1,
		})
		Expect(err).NotTo(HaveOccurred())

		// The first job blocks the only worker on the repository fetch.
		// Once the second lands in the queue the third has nowhere to go.
		job := mesh.Job{Participant: "soma:Widget_9"}
		Expect(pool.Enqueue(job)).To(BeTrue())
		Eventually(func() bool { return pool.Enqueue(job) }).Should(BeTrue())
		Expect(pool.Enqueue(job)).To(BeFalse())

		close(release)
		pool.Close()
	})
})
