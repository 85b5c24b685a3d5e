package controller

import (
	"context"
	"fmt"
	"slices"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/apiutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

// CleanupMessage is the message of a complete teardown.
const CleanupMessage = "Deleted the workspace"

// CleanupResult is the outcome of one teardown.
type CleanupResult struct {
	OK      bool
	Message string
	// Deleted lists the objects removed by this call, as kind/name.
	Deleted []string
	// Err is a *DeleteError when OK is false.
	Err error
}

// teardownObjects lists, in deletion order, the objects a workspace may own.
func teardownObjects(ide *amdevv1.IdeConfig, id naming.Identity) []client.Object {
	namespaced := func(name string) metav1.ObjectMeta {
		return metav1.ObjectMeta{Name: name, Namespace: ide.Namespace}
	}

	objects := []client.Object{
		&corev1.Service{ObjectMeta: namespaced(id.ServiceName())},
		&appsv1.StatefulSet{ObjectMeta: namespaced(id.StatefulSetName())},
		&rbacv1.RoleBinding{ObjectMeta: namespaced(id.RoleBindingName())},
		&rbacv1.ClusterRoleBinding{ObjectMeta: metav1.ObjectMeta{Name: id.ClusterRoleBindingName()}},
	}

	// A reused identity is not ours, even when it carries the derived name.
	reused := false
	if permission := ide.Spec.RemoteAccessPolicy(); permission != nil && permission.UseType == amdevv1.UsageModeUse {
		reused = permission.ServiceAccountName == id.ServiceAccountName()
	}
	if !reused {
		objects = append(objects, &corev1.ServiceAccount{ObjectMeta: namespaced(id.ServiceAccountName())})
	}

	if ide.Spec.HasGit() {
		objects = append(objects, &corev1.Secret{ObjectMeta: namespaced(id.SecretName())})
	}

	return objects
}

// Cleanup deletes the object graph of a workspace.
//
// Objects already absent count as deleted, so a teardown can be repeated
// after a partial failure. It stops at the first other failure, without
// retrying.
func (p *Provisioner) Cleanup(ctx context.Context, ide *amdevv1.IdeConfig) CleanupResult {
	log := log.FromContext(ctx)

	ide = ide.DeepCopy()
	ide.Default()

	id := identityOf(ide)
	objects := teardownObjects(ide, id)

	result := CleanupResult{}
	var done []string

	for index, obj := range objects {
		ref := p.refOf(obj)

		deleted, err := p.delete(ctx, ide, obj)
		if err != nil {
			pending := make([]string, 0, len(objects)-index)
			for _, rest := range objects[index:] {
				pending = append(pending, p.refOf(rest))
			}

			deleteErr := &DeleteError{
				Deleted: slices.Clone(done),
				Pending: pending,
				Err:     err,
			}

			log.Error(err, "Teardown failed", "object", ref)

			result.Message = deleteErr.Error()
			result.Err = deleteErr

			return result
		}

		done = append(done, ref)
		if deleted {
			result.Deleted = append(result.Deleted, ref)
		}
	}

	log.Info("Workspace deleted", "identity", id.Name(), "deleted", len(result.Deleted))

	result.OK = true
	result.Message = CleanupMessage

	return result
}

// delete removes obj, unless it's a cluster-wide binding granting a
// workspace of another namespace.
func (p *Provisioner) delete(ctx context.Context, ide *amdevv1.IdeConfig, obj client.Object) (bool, error) {
	if binding, ok := obj.(*rbacv1.ClusterRoleBinding); ok {
		found, err := p.Store.Get(ctx, client.ObjectKeyFromObject(binding), binding)
		if err != nil {
			return false, err
		}
		if !found || !bindsNamespace(binding.Subjects, ide.Namespace) {
			return false, nil
		}
	}

	deleted, err := p.Store.Delete(ctx, obj)
	if err != nil {
		return false, err
	}

	if deleted {
		if gvk, err := apiutil.GVKForObject(obj, p.Scheme); err == nil {
			objectsDeletedTotal.WithLabelValues(gvk.Kind).Inc()
		}
	}

	return deleted, nil
}

// prune removes an object left over by a former permission policy.
func (p *Provisioner) prune(ctx context.Context, ide *amdevv1.IdeConfig, obj client.Object, result *Result) error {
	deleted, err := p.delete(ctx, ide, obj)
	if err != nil {
		return fmt.Errorf("removing stale %s: %w", p.refOf(obj), err)
	}

	if deleted {
		log.FromContext(ctx).V(1).Info("Removed stale object", "object", p.refOf(obj))

		gvk, _ := apiutil.GVKForObject(obj, p.Scheme)
		result.Changes = append(result.Changes, Change{
			Kind:      gvk.Kind,
			Name:      obj.GetName(),
			Operation: OperationDeleted,
		})
	}

	return nil
}

func bindsNamespace(subjects []rbacv1.Subject, namespace string) bool {
	return slices.ContainsFunc(subjects, func(subject rbacv1.Subject) bool {
		return subject.Kind == rbacv1.ServiceAccountKind && subject.Namespace == namespace
	})
}

// refOf formats obj as kind/name for messages.
func (p *Provisioner) refOf(obj client.Object) string {
	gvk, err := apiutil.GVKForObject(obj, p.Scheme)
	if err != nil {
		return obj.GetName()
	}

	return gvk.Kind + "/" + obj.GetName()
}
