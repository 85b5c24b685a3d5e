package controller

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

var _ = Describe("Container composition", func() {
	var (
		ide    *amdevv1.IdeConfig
		config Config
	)

	BeforeEach(func() {
		ide = newIdeConfig("himang10-ide")
		config = testConfig()
	})

	compose := func() []corev1.Container {
		containers, _, err := composeContainers(ide, identityOf(ide), config)
		Expect(err).NotTo(HaveOccurred())
		return containers
	}

	Context("With the editor only", func() {
		It("should run exactly one container without git credentials", func() {
			containers := compose()

			Expect(containers).To(HaveLen(1))

			editor := containers[0]
			Expect(editor.Name).To(Equal("vscodeserver"))
			Expect(editor.Image).To(Equal(config.EditorImage))
			Expect(editor.ImagePullPolicy).To(Equal(corev1.PullAlways))
			Expect(editor.Ports).To(ConsistOf(HaveField("ContainerPort", EditorPort)))

			for _, env := range editor.Env {
				Expect(env.Name).NotTo(HavePrefix("GIT_"))
			}
			Expect(editor.VolumeMounts).To(HaveLen(2))
			Expect(editor.VolumeMounts).NotTo(ContainElement(HaveField("MountPath", "/etc/git-secret")))
		})

		It("should size and probe the editor", func() {
			editor := compose()[0]

			Expect(editor.Resources.Requests).To(HaveKey(corev1.ResourceCPU))
			Expect(editor.Resources.Limits.Memory().String()).To(Equal("2Gi"))

			Expect(editor.StartupProbe.HTTPGet.Path).To(Equal("/vscode/"))
			Expect(editor.StartupProbe.FailureThreshold).To(Equal(int32(30)))
			Expect(editor.StartupProbe.PeriodSeconds).To(Equal(int32(10)))
			Expect(editor.LivenessProbe.InitialDelaySeconds).To(Equal(int32(5)))
			Expect(editor.LivenessProbe.FailureThreshold).To(Equal(int32(3)))
			Expect(editor.LivenessProbe.PeriodSeconds).To(Equal(int32(30)))
		})

		It("should leave the resources empty when no size is given", func() {
			ide.Spec.InfrastructureSize = amdevv1.InfrastructureSize{Disk: ide.Spec.InfrastructureSize.Disk}

			Expect(compose()[0].Resources.Requests).To(BeEmpty())
		})

		It("should mount the shared volume read-only", func() {
			editor := compose()[0]

			Expect(editor.VolumeMounts).To(ContainElement(corev1.VolumeMount{
				Name:      "com-dev-storage",
				MountPath: "/common-config",
				ReadOnly:  true,
			}))
			Expect(editor.VolumeMounts).To(ContainElement(corev1.VolumeMount{
				Name:      "user-dev-storage",
				MountPath: "/config",
			}))
		})
	})

	Context("With the proxy URI", func() {
		It("should be path-style by default", func() {
			value, ok := envValue(compose()[0], "VSCODE_PROXY_URI")

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("https://ide.cloriver.io/himang10/{{port}}"))
		})

		It("should be subdomain-style otherwise", func() {
			config.ProxyDomainType = ProxyDomainTypeSubdomain
			ide.Spec.WsName = "ws1"

			value, _ := envValue(compose()[0], "VSCODE_PROXY_URI")
			Expect(value).To(Equal("https://himang10-ws1p{{port}}.ide.cloriver.io"))
		})

		It("should honour the annotations", func() {
			ide.Annotations = map[string]string{
				amdevv1.ProxyDomainAnnotation: "dev.example.org",
				amdevv1.PackageTypeAnnotation: "python",
			}

			editor := compose()[0]

			value, _ := envValue(editor, "VSCODE_PROXY_URI")
			Expect(value).To(Equal("https://dev.example.org/himang10/{{port}}"))

			packageType, ok := envValue(editor, "PACKAGETYPE")
			Expect(ok).To(BeTrue())
			Expect(packageType).To(Equal("python"))
		})
	})

	Context("With git credentials", func() {
		It("should source the credentials from the secret", func() {
			ide.Spec.Vscode = &amdevv1.Vscode{Git: &amdevv1.Git{ID: "himang10", Repository: "https://github.com/himang10/ide"}}

			editor := compose()[0]
			secretName := naming.New("himang10", "", "").SecretName()

			Expect(editor.VolumeMounts).To(ContainElement(corev1.VolumeMount{
				Name:      secretName,
				MountPath: "/etc/git-secret",
				ReadOnly:  true,
			}))

			for key, name := range map[string]string{
				"id":         "GIT_ID",
				"token":      "GIT_TOKEN",
				"repository": "GIT_REPOSITORY",
				"branch":     "GIT_BRANCH",
			} {
				Expect(editor.Env).To(ContainElement(SatisfyAll(
					HaveField("Name", name),
					HaveField("Value", ""),
					HaveField("ValueFrom.SecretKeyRef.Name", secretName),
					HaveField("ValueFrom.SecretKeyRef.Key", key),
				)))
			}
		})
	})

	Context("With every feature", func() {
		BeforeEach(func() {
			// Out of order on purpose.
			ide.Spec.ServiceTypes = []amdevv1.Feature{
				amdevv1.FeatureNotebook,
				amdevv1.FeatureRemoteShell,
				amdevv1.FeatureEditor,
			}
			ide.Spec.Webssh = &amdevv1.WebSSH{Permission: &amdevv1.Permission{
				Role:    amdevv1.RoleCoder,
				Scope:   amdevv1.PermissionScopeNamespace,
				UseType: amdevv1.UsageModeCreate,
			}}
			ide.Spec.WsName = "ws1"
		})

		It("should keep the declaration order", func() {
			containers := compose()

			Expect(containers).To(HaveLen(4))
			Expect(containers[0].Name).To(Equal("vscodeserver"))
			Expect(containers[1].Name).To(Equal("sshserver"))
			Expect(containers[2].Name).To(Equal("wetty"))
			Expect(containers[3].Name).To(Equal("jupyter"))
		})

		It("should bridge the terminal to the shell server", func() {
			containers := compose()

			shell := containers[1]
			Expect(shell.Ports).To(ConsistOf(HaveField("ContainerPort", ShellServerPort)))
			Expect(shell.Command).To(Equal([]string{"/bin/sh", "-c", "/usr/local/bin/configure-kubeconfig && /start.sh && /init"}))
			Expect(shell.VolumeMounts).To(HaveLen(2))

			bridge := containers[2]
			Expect(bridge.Ports).To(ConsistOf(HaveField("ContainerPort", TerminalBridgePort)))

			base, _ := envValue(bridge, "BASE")
			Expect(base).To(Equal("/himang10/ws1/webssh"))
			host, _ := envValue(bridge, "SSHHOST")
			Expect(host).To(Equal("127.0.0.1"))
			port, _ := envValue(bridge, "SSHPORT")
			Expect(port).To(Equal("2222"))
		})

		It("should configure the notebook", func() {
			notebook := compose()[3]

			Expect(notebook.Ports).To(ConsistOf(HaveField("ContainerPort", NotebookPort)))

			basePath, _ := envValue(notebook, "NOTEBOOK_BASE_PATH")
			Expect(basePath).To(Equal("/himang10/ws1/jupyter"))
			xsrf, _ := envValue(notebook, "STREAMLIT_SERVER_ENABLE_XSRF_PROTECTION")
			Expect(xsrf).To(Equal("false"))
			Expect(notebook.VolumeMounts).To(ConsistOf(HaveField("Name", "user-dev-storage")))
		})

		It("should not mount the editor volumes in the shell without the editor", func() {
			ide.Spec.ServiceTypes = []amdevv1.Feature{amdevv1.FeatureRemoteShell}

			containers := compose()

			Expect(containers).To(HaveLen(2))
			Expect(containers[0].VolumeMounts).To(BeEmpty())
		})
	})

	It("should warn about unknown service types", func() {
		ide.Spec.ServiceTypes = append(ide.Spec.ServiceTypes, "rstudio")

		containers, warnings, err := composeContainers(ide, identityOf(ide), config)

		Expect(err).NotTo(HaveOccurred())
		Expect(containers).To(HaveLen(1))
		Expect(warnings).To(ConsistOf(ContainSubstring("rstudio")))
	})

	It("should refuse a remote shell without a permission policy", func() {
		ide.Spec.ServiceTypes = []amdevv1.Feature{amdevv1.FeatureRemoteShell}

		_, _, err := composeContainers(ide, identityOf(ide), config)

		Expect(err).To(HaveOccurred())
	})
})
