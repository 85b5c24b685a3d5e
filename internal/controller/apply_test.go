package controller

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/store"
)

var _ = Describe("DiffApplier", func() {
	ctx := context.Background()

	var (
		ide     *amdevv1.IdeConfig
		counter *writeCounter
		applier *DiffApplier
	)

	composed := func() *appsv1.StatefulSet {
		containers, _, err := composeContainers(ide, identityOf(ide), testConfig())
		Expect(err).NotTo(HaveOccurred())

		return initStatefulSet(ide, identityOf(ide), containers, "default", testConfig())
	}

	BeforeEach(func() {
		ide = newIdeConfig("himang10-ide")
		counter = &writeCounter{}

		// Stored as another writer would have left it.
		k8sClient := newFakeClient(counter, interceptor.Funcs{}, composed())
		applier = &DiffApplier{Store: store.New(k8sClient), Scheme: scheme}
	})

	It("should not write an object equal to the stored one", func() {
		change, err := applier.Apply(ctx, nil, composed())

		Expect(err).NotTo(HaveOccurred())
		Expect(change.Operation).To(BeEmpty())
		Expect(change.Kind).To(Equal("StatefulSet"))
		Expect(counter.total()).To(BeZero())
	})

	It("should take ownership of a stored object", func() {
		change, err := applier.Apply(ctx, ide, composed())

		Expect(err).NotTo(HaveOccurred())
		Expect(change.Operation).To(Equal(store.OperationUpdated))
		Expect(counter.updates.Load()).To(Equal(int32(1)))

		counter.reset()
		change, err = applier.Apply(ctx, ide, composed())

		Expect(err).NotTo(HaveOccurred())
		Expect(change.Operation).To(BeEmpty())
		Expect(counter.total()).To(BeZero())
	})

	It("should write a changed image", func() {
		desired := composed()
		desired.Spec.Template.Spec.Containers[0].Image = "registry.local/code-server:4.20"

		change, err := applier.Apply(ctx, nil, desired)

		Expect(err).NotTo(HaveOccurred())
		Expect(change.Operation).To(Equal(store.OperationUpdated))
	})

	It("should create what is absent", func() {
		service := initService(ide, identityOf(ide))

		change, err := applier.Apply(ctx, ide, service)

		Expect(err).NotTo(HaveOccurred())
		Expect(change).To(Equal(Change{
			Kind:      "Service",
			Name:      "himang10-vscode-server-service",
			Operation: store.OperationCreated,
		}))
		Expect(counter.creates.Load()).To(Equal(int32(1)))
	})
})

var _ = Describe("Pod template comparison", func() {
	template := func() *corev1.PodTemplateSpec {
		return &corev1.PodTemplateSpec{
			ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{"app": "himang10-vscode-server"}},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{{
					Name:  "vscodeserver",
					Image: "registry.local/code-server:4.19",
					Env:   []corev1.EnvVar{{Name: "VSCODE_PROXY_URI", Value: "https://ide.cloriver.io/himang10/{{port}}"}},
				}},
			},
		}
	}

	It("should ignore fields defaulted by the API server", func() {
		existing := template()
		existing.Spec.RestartPolicy = corev1.RestartPolicyAlways
		existing.Spec.Containers[0].TerminationMessagePath = "/dev/termination-log"

		Expect(podTemplateMatches(template(), existing)).To(BeTrue())
	})

	It("should notice a removed variable", func() {
		existing := template()
		existing.Spec.Containers[0].Env = append(existing.Spec.Containers[0].Env, corev1.EnvVar{Name: "PACKAGETYPE", Value: "python"})

		Expect(podTemplateMatches(template(), existing)).To(BeFalse())
	})

	It("should notice a removed container", func() {
		existing := template()
		existing.Spec.Containers = append(existing.Spec.Containers, corev1.Container{Name: "jupyter"})

		Expect(podTemplateMatches(template(), existing)).To(BeFalse())
	})

	It("should notice dropped resources", func() {
		existing := template()
		existing.Spec.Containers[0].Resources.Limits = corev1.ResourceList{
			corev1.ResourceCPU: resource.MustParse("1"),
		}

		Expect(podTemplateMatches(template(), existing)).To(BeFalse())
	})
})

var _ = Describe("Claim template comparison", func() {
	claim := func(size string, class *string) corev1.PersistentVolumeClaim {
		claim := corev1.PersistentVolumeClaim{}
		claim.Name = "user-dev-storage"
		claim.Spec.Resources.Requests = corev1.ResourceList{
			corev1.ResourceStorage: resource.MustParse(size),
		}
		claim.Spec.StorageClassName = class

		return claim
	}

	block := "block"
	fast := "fast"

	DescribeTable("matching",
		func(desired, existing []corev1.PersistentVolumeClaim, matches bool) {
			Expect(claimTemplatesMatch(desired, existing)).To(Equal(matches))
		},
		Entry("same claim", []corev1.PersistentVolumeClaim{claim("20Gi", &block)}, []corev1.PersistentVolumeClaim{claim("20Gi", &block)}, true),
		Entry("same size written differently", []corev1.PersistentVolumeClaim{claim("1Gi", nil)}, []corev1.PersistentVolumeClaim{claim("1024Mi", nil)}, true),
		Entry("defaulted storage class", []corev1.PersistentVolumeClaim{claim("20Gi", nil)}, []corev1.PersistentVolumeClaim{claim("20Gi", &fast)}, true),
		Entry("resized", []corev1.PersistentVolumeClaim{claim("40Gi", &block)}, []corev1.PersistentVolumeClaim{claim("20Gi", &block)}, false),
		Entry("other storage class", []corev1.PersistentVolumeClaim{claim("20Gi", &block)}, []corev1.PersistentVolumeClaim{claim("20Gi", &fast)}, false),
		Entry("added", []corev1.PersistentVolumeClaim{claim("20Gi", nil)}, nil, false),
		Entry("removed", nil, []corev1.PersistentVolumeClaim{claim("20Gi", nil)}, false),
	)
})
