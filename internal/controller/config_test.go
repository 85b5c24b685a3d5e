package controller

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
)

var _ = Describe("Config", func() {
	It("should overlay the file on the defaults", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte(`
editorImage: registry.local/code-server:4.19
shellServerImage: registry.local/openssh-server:9.3
terminalBridgeImage: registry.local/wetty:2.5
notebookImage: registry.local/jupyter:lab-4.0
imagePullPolicy: IfNotPresent
proxyDomainType: subdomain
proxyDomain: ide.cloriver.io
`), 0o600)).To(Succeed())

		config := DefaultConfig()
		Expect(LoadConfig(path, &config)).To(Succeed())

		Expect(config.EditorImage).To(Equal("registry.local/code-server:4.19"))
		Expect(config.ImagePullPolicy).To(Equal(corev1.PullIfNotPresent))
		Expect(config.ProxyDomainType).To(Equal(ProxyDomainTypeSubdomain))
		// Kept from the defaults.
		Expect(config.SharedClaimName).To(Equal("com-dev-pvc"))
		Expect(config.ElevatedClusterRole).To(Equal("cluster-admin"))

		Expect(config.Validate()).To(Succeed())
	})

	It("should reject unknown keys", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte("editorImages: typo\n"), 0o600)).To(Succeed())

		config := DefaultConfig()
		Expect(LoadConfig(path, &config)).NotTo(Succeed())
	})

	It("should report every missing setting", func() {
		config := DefaultConfig()
		config.ProxyDomainType = "wildcard"

		err := config.Validate()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("editorImage is required"))
		Expect(err.Error()).To(ContainSubstring("notebookImage is required"))
		Expect(err.Error()).To(ContainSubstring(`"wildcard"`))
	})

	It("should accept the test configuration", func() {
		Expect(testConfig().Validate()).To(Succeed())
	})
})
