package controller

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
)

var _ = Describe("IdeConfig Controller", func() {
	Context("When reconciling a resource", func() {
		const resourceName = "test-resource"

		ctx := context.Background()

		typeNamespacedName := types.NamespacedName{
			Name:      resourceName,
			Namespace: testNamespace,
		}

		var (
			ideconfig  *amdevv1.IdeConfig
			k8sClient  client.Client
			recorder   *record.FakeRecorder
			reconciler *IdeConfigReconciler
		)

		build := func() {
			k8sClient = newFakeClient(&writeCounter{}, interceptor.Funcs{}, ideconfig, sharedClaim())
			recorder = record.NewFakeRecorder(32)
			reconciler = &IdeConfigReconciler{
				Client:   k8sClient,
				Scheme:   k8sClient.Scheme(),
				Recorder: recorder,
				Config:   testConfig(),
			}
		}

		doReconcile := func() (reconcile.Result, error) {
			return reconciler.Reconcile(ctx, reconcile.Request{
				NamespacedName: typeNamespacedName,
			})
		}

		fetch := func() *amdevv1.IdeConfig {
			resource := &amdevv1.IdeConfig{}
			Expect(k8sClient.Get(ctx, typeNamespacedName, resource)).To(Succeed())
			return resource
		}

		BeforeEach(func() {
			ideconfig = newIdeConfig(resourceName)
		})

		It("should successfully reconcile the resource", func() {
			build()

			By("Reconciling the created resource")
			result, err := doReconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(reconcile.Result{}))

			resource := fetch()
			Expect(controllerutil.ContainsFinalizer(resource, finalizer)).To(BeTrue())
			Expect(resource.Status.IsReady).To(BeTrue())
			Expect(resource.Status.Message).To(Equal(ReadyMessage))
			Expect(resource.Status.ObservedGeneration).To(Equal(resource.Generation))

			// Verify that a statefulset exists.
			statefulSet := &appsv1.StatefulSet{}
			err = k8sClient.Get(ctx, types.NamespacedName{
				Name:      "himang10-vscode-server-statefulset",
				Namespace: testNamespace,
			}, statefulSet)
			Expect(err).NotTo(HaveOccurred())

			Expect(recorder.Events).To(Receive(ContainSubstring("CreatingStatefulSet")))
			Expect(recorder.Events).To(Receive(ContainSubstring("CreatingService")))

			By("Reconciling it again")
			resourceVersion := resource.ResourceVersion

			_, err = doReconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(fetch().ResourceVersion).To(Equal(resourceVersion))
			Expect(recorder.Events).NotTo(Receive())
		})

		It("should not requeue a spec that doesn't validate", func() {
			ideconfig.Spec.InfrastructureSize = amdevv1.InfrastructureSize{}
			build()

			_, err := doReconcile()
			Expect(err).NotTo(HaveOccurred())

			resource := fetch()
			Expect(resource.Status.IsReady).To(BeFalse())
			Expect(resource.Status.Message).To(HavePrefix("failed at validation"))
			Expect(resource.Status.Message).To(ContainSubstring("spec.infrastructureSize.disk"))

			Expect(recorder.Events).To(Receive(ContainSubstring("ReconcileFailed")))
		})

		It("should return the error of a failed step", func() {
			ideconfig.Spec.ServiceTypes = append(ideconfig.Spec.ServiceTypes, amdevv1.FeatureRemoteShell)
			ideconfig.Spec.Webssh = &amdevv1.WebSSH{Permission: &amdevv1.Permission{
				Role:               amdevv1.RoleDeveloper,
				Scope:              amdevv1.PermissionScopeNamespace,
				UseType:            amdevv1.UsageModeUse,
				ServiceAccountName: "team-shell",
			}}
			build()

			_, err := doReconcile()
			Expect(err).To(MatchError(ErrAuthorization))

			resource := fetch()
			Expect(resource.Status.IsReady).To(BeFalse())
			Expect(resource.Status.Message).To(HavePrefix("failed at authorization"))
		})

		It("should warn about unknown service types", func() {
			ideconfig.Spec.ServiceTypes = append(ideconfig.Spec.ServiceTypes, "rstudio")
			build()

			_, err := doReconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(recorder.Events).To(Receive(SatisfyAll(
				HavePrefix("Warning"),
				ContainSubstring("rstudio"),
			)))
			Expect(fetch().Status.IsReady).To(BeTrue())
		})

		It("should tear the workspace down before letting it go", func() {
			build()

			_, err := doReconcile()
			Expect(err).NotTo(HaveOccurred())

			By("Cleanup the specific resource instance IdeConfig")
			Expect(k8sClient.Delete(ctx, fetch())).To(Succeed())

			// Held by the finalizer.
			Expect(fetch().DeletionTimestamp.IsZero()).To(BeFalse())

			_, err = doReconcile()
			Expect(err).NotTo(HaveOccurred())

			err = k8sClient.Get(ctx, typeNamespacedName, &amdevv1.IdeConfig{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())

			err = k8sClient.Get(ctx, types.NamespacedName{
				Name:      "himang10-vscode-server-service",
				Namespace: testNamespace,
			}, &corev1.Service{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("should ignore a resource that is gone", func() {
			build()
			Expect(k8sClient.Delete(ctx, fetch())).To(Succeed())

			result, err := doReconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(reconcile.Result{}))
		})
	})
})
