package replaycmder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("newLogger", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "neemsim-replay-logs-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tmpDir)).To(Succeed())
	})

	It("fans records out to a JSON replay log", func() {
		cmder := &replayCommander{configDir: tmpDir}
		log, closeLog := cmder.newLogger()
		log.Info("starting replay", "episode", 7)
		closeLog()

		raw, err := os.ReadFile(filepath.Join(tmpDir, "replay.log"))
		Expect(err).NotTo(HaveOccurred())

		var parsed map[string]any
		Expect(json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &parsed)).To(Succeed())
		Expect(parsed["msg"]).To(Equal("starting replay"))
		Expect(parsed["episode"]).To(BeNumerically("==", 7))
	})

	It("appends to the replay log across runs", func() {
		cmder := &replayCommander{configDir: tmpDir}
		for range 2 {
			log, closeLog := cmder.newLogger()
			log.Info("run")
			closeLog()
		}

		raw, err := os.ReadFile(filepath.Join(tmpDir, "replay.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(raw), "run")).To(Equal(2))
	})
})
