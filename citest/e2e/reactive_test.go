package e2e_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/livecfg/livecfg/internal/store"
)

var _ = Describe("Reactive Config Lifecycle", func() {
	var (
		dir  string
		path string
		s    *store.Store
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "config.json")
	})

	AfterEach(func() {
		if s != nil {
			Expect(s.Unload()).To(Succeed())
			s = nil
		}
	})

	Describe("Full external-edit round trip", func() {
		It("should create the file, absorb external edits, and preserve comments on writes", func() {
			var err error
			s, err = store.New(path, map[string]any{"count": float64(0)},
				store.WithWatch(), store.WithDebounce(20*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())

			// An empty directory gets a file carrying the template.
			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"count": 0`))

			// An external process rewrites the file.
			Expect(os.WriteFile(path, []byte(`{
  "count": 5, // retries
  "label": "x"
}
`), 0644)).To(Succeed())
			future := time.Now().Add(2 * time.Second)
			Expect(os.Chtimes(path, future, future)).To(Succeed())

			// The watcher folds the change back into the value, including
			// the key absent from the template.
			Eventually(func() any {
				v, _ := s.Value(nil)
				return v.(map[string]any)["count"]
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(float64(5)))
			Expect(s.Get().Get("label")).To(Equal("x"))

			// A programmatic write lands next to the surviving comment.
			Expect(s.Get().Set("count", 6)).To(Succeed())
			data, err = os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"count": 6, // retries`))
		})
	})

	Describe("Corrupt file startup", func() {
		It("should quarantine the file and continue with defaults", func() {
			Expect(os.WriteFile(path, []byte(`{"count": oops}`), 0644)).To(Succeed())

			var err error
			s, err = store.New(path, map[string]any{"count": float64(1)})
			Expect(err).NotTo(HaveOccurred())

			old, err := os.ReadFile(path + "_old")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(old)).To(ContainSubstring("oops"))

			v, ok := s.Get().Int("count")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
		})
	})

	Describe("Deleted file recovery", func() {
		It("should rewrite the file from current state", func() {
			var err error
			s, err = store.New(path, map[string]any{"count": float64(3)},
				store.WithWatch(), store.WithDebounce(20*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())

			Expect(os.Remove(path)).To(Succeed())

			Eventually(func() error {
				_, err := os.Stat(path)
				return err
			}, 5*time.Second, 10*time.Millisecond).Should(Succeed())

			v, _ := s.Get().Int("count")
			Expect(v).To(Equal(3))
		})
	})
})
