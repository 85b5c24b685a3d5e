package controller

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/apiutil"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/CHORUS-TRE/ide-operator/internal/naming"
	"github.com/CHORUS-TRE/ide-operator/internal/store"
)

// Change is one write done on behalf of a workspace.
type Change struct {
	Kind      string
	Name      string
	Operation store.Operation
}

const (
	// OperationRecreated is a delete followed by a create, for objects whose
	// changed fields are immutable.
	OperationRecreated store.Operation = "recreated"
	// OperationDeleted is the removal of a stale object.
	OperationDeleted store.Operation = "deleted"
)

// DiffApplier writes composed objects, and only when they differ from what
// the store holds.
type DiffApplier struct {
	Store  store.Store
	Scheme *runtime.Scheme
}

// Apply makes the store hold desired.
//
// When owner is given and desired is namespaced, owner becomes its controller.
// It returns the empty operation when nothing was written.
func (a *DiffApplier) Apply(ctx context.Context, owner metav1.Object, desired client.Object) (Change, error) {
	log := log.FromContext(ctx)

	gvk, err := apiutil.GVKForObject(desired, a.Scheme)
	if err != nil {
		return Change{}, err
	}

	change := Change{Kind: gvk.Kind, Name: desired.GetName()}

	controlled := owner != nil && desired.GetNamespace() != ""
	if controlled {
		if err := controllerutil.SetControllerReference(owner, desired, a.Scheme); err != nil {
			return change, err
		}
	}

	empty, err := a.Scheme.New(gvk)
	if err != nil {
		return change, err
	}
	existing, ok := empty.(client.Object)
	if !ok {
		return change, fmt.Errorf("%s is not an object", gvk)
	}

	found, err := a.Store.Get(ctx, client.ObjectKeyFromObject(desired), existing)
	if err != nil {
		return change, err
	}

	if !found {
		log.V(1).Info("Creating object", "kind", change.Kind, "name", change.Name)

		change.Operation, err = a.Store.CreateOrReplace(ctx, desired)
		if err != nil {
			return change, err
		}

		objectsAppliedTotal.WithLabelValues(change.Kind, string(change.Operation)).Inc()

		return change, nil
	}

	changed, recreate := merge(desired, existing)

	if controlled {
		before := existing.GetOwnerReferences()
		if err := controllerutil.SetControllerReference(owner, existing, a.Scheme); err != nil {
			return change, err
		}
		if !equality.Semantic.DeepEqual(before, existing.GetOwnerReferences()) {
			changed = true
		}
	}

	switch {
	case recreate:
		log.V(1).Info("Recreating object", "kind", change.Kind, "name", change.Name)

		if _, err := a.Store.Delete(ctx, existing); err != nil {
			return change, err
		}

		if _, err := a.Store.CreateOrReplace(ctx, desired); err != nil {
			return change, err
		}

		change.Operation = OperationRecreated

	case changed:
		log.V(1).Info("Updating object", "kind", change.Kind, "name", change.Name)

		change.Operation, err = a.Store.CreateOrReplace(ctx, existing)
		if err != nil {
			return change, err
		}

	default:
		log.V(1).Info("Object is up to date", "kind", change.Kind, "name", change.Name)

		return change, nil
	}

	objectsAppliedTotal.WithLabelValues(change.Kind, string(change.Operation)).Inc()

	return change, nil
}

// derives tells whether every field set in desired has the same value in
// existing.
func derives(desired, existing any) bool {
	return equality.Semantic.DeepDerivative(desired, existing)
}

// merge copies into existing the fields of desired it doesn't hold yet.
//
// It returns whether something changed, and whether the object has to be
// recreated because an immutable field differs.
func merge(desired, existing client.Object) (bool, bool) {
	changed := mergeMeta(desired, existing)

	switch want := desired.(type) {
	case *appsv1.StatefulSet:
		got := existing.(*appsv1.StatefulSet)

		// The claim templates are immutable.
		if !claimTemplatesMatch(want.Spec.VolumeClaimTemplates, got.Spec.VolumeClaimTemplates) {
			return changed, true
		}

		// The selector is immutable too, it's derived from the identity and never changes.
		if !ptr.Equal(want.Spec.Replicas, got.Spec.Replicas) {
			got.Spec.Replicas = want.Spec.Replicas
			changed = true
		}

		if !podTemplateMatches(&want.Spec.Template, &got.Spec.Template) {
			got.Spec.Template = want.Spec.Template
			changed = true
		}

	case *corev1.Service:
		got := existing.(*corev1.Service)

		if len(want.Spec.Ports) != len(got.Spec.Ports) || !derives(want.Spec.Ports, got.Spec.Ports) {
			got.Spec.Ports = want.Spec.Ports
			changed = true
		}

		if !equality.Semantic.DeepEqual(want.Spec.Selector, got.Spec.Selector) {
			got.Spec.Selector = want.Spec.Selector
			changed = true
		}

	case *corev1.Secret:
		got := existing.(*corev1.Secret)

		if !equality.Semantic.DeepEqual(want.Data, got.Data) {
			got.Data = want.Data
			changed = true
		}

	case *rbacv1.RoleBinding:
		got := existing.(*rbacv1.RoleBinding)

		if want.RoleRef != got.RoleRef {
			return changed, true
		}

		if !equality.Semantic.DeepEqual(want.Subjects, got.Subjects) {
			got.Subjects = want.Subjects
			changed = true
		}

	case *rbacv1.ClusterRoleBinding:
		got := existing.(*rbacv1.ClusterRoleBinding)

		if want.RoleRef != got.RoleRef {
			return changed, true
		}

		if !equality.Semantic.DeepEqual(want.Subjects, got.Subjects) {
			got.Subjects = want.Subjects
			changed = true
		}
	}

	return changed, false
}

// mergeMeta adds the desired labels and annotations, keeping the ones set by
// others.
func mergeMeta(desired, existing client.Object) bool {
	changed := false

	if !derives(desired.GetLabels(), existing.GetLabels()) {
		existing.SetLabels(naming.Merge(existing.GetLabels(), desired.GetLabels()))
		changed = true
	}

	if !derives(desired.GetAnnotations(), existing.GetAnnotations()) {
		existing.SetAnnotations(naming.Merge(existing.GetAnnotations(), desired.GetAnnotations()))
		changed = true
	}

	return changed
}
