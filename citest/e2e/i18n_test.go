package e2e_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/livecfg/livecfg/internal/i18n"
)

var _ = Describe("Language Registry", func() {
	var (
		dir string
		reg *i18n.Registry
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{
  "greeting": "Hi, {0}!"
}
`), 0644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "de.json"), []byte(`{
  "greeting": "Hallo, {0}!"
}
`), 0644)).To(Succeed())

		reg = i18n.NewRegistry()
		Expect(reg.LoadAll(dir)).To(Succeed())
	})

	AfterEach(func() {
		for _, code := range reg.Codes() {
			reg.Unload(code)
		}
	})

	It("should route translation through the active language", func() {
		reg.Switch("en")
		Expect(reg.Translate("greeting", []any{"Ada"})).To(Equal("Hi, Ada!"))

		reg.Switch("de")
		Expect(reg.Translate("greeting", []any{"Ada"})).To(Equal("Hallo, Ada!"))
	})

	It("should fall back to the key for missing entries and unknown codes", func() {
		Expect(reg.Translate("missing.key", nil)).To(Equal("missing.key"))
		Expect(reg.Translate("greeting", nil, "fr")).To(Equal("greeting"))
	})

	It("should pick up dictionary edits on reload", func() {
		Expect(os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{
  "greeting": "Howdy, {0}!"
}
`), 0644)).To(Succeed())
		Expect(reg.Reload("en")).To(Succeed())

		Expect(reg.Translate("greeting", []any{"Ada"}, "en")).To(Equal("Howdy, Ada!"))
	})
})
