package store

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
)

var _ = Describe("KubeStore", func() {
	ctx := context.Background()

	var (
		scheme *runtime.Scheme
		s      *KubeStore
	)

	key := types.NamespacedName{Name: "himang10-ide-account", Namespace: "default"}

	BeforeEach(func() {
		scheme = runtime.NewScheme()
		Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())

		s = New(fake.NewClientBuilder().WithScheme(scheme).Build())
	})

	It("should report an absent object without error", func() {
		found, err := s.Get(ctx, key, &corev1.ServiceAccount{})

		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should create then replace", func() {
		account := &corev1.ServiceAccount{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
		}

		op, err := s.CreateOrReplace(ctx, account)
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(OperationCreated))

		stored := &corev1.ServiceAccount{}
		found, err := s.Get(ctx, key, stored)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		stored.Labels = map[string]string{"app": "himang10-vscode-server"}
		op, err = s.CreateOrReplace(ctx, stored)
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(OperationUpdated))

		replaced := &corev1.ServiceAccount{}
		_, err = s.Get(ctx, key, replaced)
		Expect(err).NotTo(HaveOccurred())
		Expect(replaced.Labels).To(HaveKeyWithValue("app", "himang10-vscode-server"))
	})

	It("should treat a repeated delete as already absent", func() {
		account := &corev1.ServiceAccount{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
		}
		_, err := s.CreateOrReplace(ctx, account)
		Expect(err).NotTo(HaveOccurred())

		deleted, err := s.Delete(ctx, account)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeTrue())

		deleted, err = s.Delete(ctx, account)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeFalse())
	})

	It("should list by labels within the namespace", func() {
		for _, name := range []string{"a", "b"} {
			_, err := s.CreateOrReplace(ctx, &corev1.ServiceAccount{
				ObjectMeta: metav1.ObjectMeta{
					Name:      name,
					Namespace: "default",
					Labels:    map[string]string{"app.kubernetes.io/name": "ide-workspace"},
				},
			})
			Expect(err).NotTo(HaveOccurred())
		}
		_, err := s.CreateOrReplace(ctx, &corev1.ServiceAccount{
			ObjectMeta: metav1.ObjectMeta{Name: "c", Namespace: "other"},
		})
		Expect(err).NotTo(HaveOccurred())

		list := &corev1.ServiceAccountList{}
		Expect(s.List(ctx, list, "default", map[string]string{"app.kubernetes.io/name": "ide-workspace"})).To(Succeed())
		Expect(list.Items).To(HaveLen(2))
	})

	It("should wrap store failures", func() {
		boom := errors.New("connection refused")
		s = New(fake.NewClientBuilder().WithScheme(scheme).WithInterceptorFuncs(interceptor.Funcs{
			Get: func(context.Context, client.WithWatch, client.ObjectKey, client.Object, ...client.GetOption) error {
				return boom
			},
			Delete: func(context.Context, client.WithWatch, client.Object, ...client.DeleteOption) error {
				return apierrors.NewForbidden(corev1.Resource("serviceaccounts"), key.Name, boom)
			},
		}).Build())

		_, err := s.Get(ctx, key, &corev1.ServiceAccount{})
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("default/himang10-ide-account"))

		_, err = s.Delete(ctx, &corev1.ServiceAccount{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
		})
		Expect(apierrors.IsForbidden(err)).To(BeTrue())
	})
})
