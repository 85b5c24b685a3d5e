package controller

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

// BindingKind is the kind of object granting the remote shell its role.
type BindingKind string

const (
	BindingKindNone    BindingKind = ""
	BindingKindScoped  BindingKind = "RoleBinding"
	BindingKindCluster BindingKind = "ClusterRoleBinding"
)

// authorization is the identity the workload runs as, and what grants it
// its role.
type authorization struct {
	// ServiceAccountName is put on the pod template.
	ServiceAccountName string
	// Reused is true when the identity exists already and is not managed.
	Reused bool

	BindingKind BindingKind
	RoleRef     rbacv1.RoleRef

	// Set only when the identity is synthesized.
	ServiceAccount     *corev1.ServiceAccount
	RoleBinding        *rbacv1.RoleBinding
	ClusterRoleBinding *rbacv1.ClusterRoleBinding
}

// roleRefFor maps a role of the permission policy onto a cluster role.
// Unknown roles get the restricted one.
func roleRefFor(role string, config Config) rbacv1.RoleRef {
	name := config.RestrictedClusterRole

	switch role {
	case amdevv1.RoleAdministrator, amdevv1.RoleArchitect, amdevv1.RoleDeveloper:
		name = config.ElevatedClusterRole
	}

	return rbacv1.RoleRef{
		APIGroup: rbacv1.GroupName,
		Kind:     "ClusterRole",
		Name:     name,
	}
}

// resolveAuthorization derives the identity and binding of a workspace.
//
// Without a remote shell the workload runs as the default identity and
// nothing is bound.
func resolveAuthorization(ide *amdevv1.IdeConfig, id naming.Identity, config Config) (authorization, error) {
	spec := &ide.Spec

	if !spec.HasFeature(amdevv1.FeatureRemoteShell) {
		return authorization{
			ServiceAccountName: config.DefaultServiceAccountName,
			Reused:             true,
		}, nil
	}

	permission := spec.RemoteAccessPolicy()
	if permission == nil {
		return authorization{}, fmt.Errorf("%q requires a permission policy", amdevv1.FeatureRemoteShell)
	}

	kind := BindingKindCluster
	if permission.Scope == amdevv1.PermissionScopeNamespace {
		kind = BindingKindScoped
	}

	auth := authorization{
		BindingKind: kind,
		RoleRef:     roleRefFor(permission.Role, config),
	}

	if permission.UseType == amdevv1.UsageModeUse {
		if permission.ServiceAccountName == "" {
			return authorization{}, fmt.Errorf("useType %q requires a service account name", amdevv1.UsageModeUse)
		}

		auth.ServiceAccountName = permission.ServiceAccountName
		auth.Reused = true

		return auth, nil
	}

	auth.ServiceAccountName = id.ServiceAccountName()

	meta := metav1.ObjectMeta{
		Namespace:   ide.Namespace,
		Labels:      id.Labels(),
		Annotations: id.Annotations(),
	}

	auth.ServiceAccount = &corev1.ServiceAccount{ObjectMeta: *meta.DeepCopy()}
	auth.ServiceAccount.Name = auth.ServiceAccountName

	subjects := []rbacv1.Subject{
		{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      auth.ServiceAccountName,
			Namespace: ide.Namespace,
		},
	}

	if kind == BindingKindScoped {
		auth.RoleBinding = &rbacv1.RoleBinding{
			ObjectMeta: *meta.DeepCopy(),
			Subjects:   subjects,
			RoleRef:    auth.RoleRef,
		}
		auth.RoleBinding.Name = id.RoleBindingName()
	} else {
		auth.ClusterRoleBinding = &rbacv1.ClusterRoleBinding{
			ObjectMeta: *meta.DeepCopy(),
			Subjects:   subjects,
			RoleRef:    auth.RoleRef,
		}
		// Cluster scoped.
		auth.ClusterRoleBinding.Namespace = ""
		auth.ClusterRoleBinding.Name = id.ClusterRoleBindingName()
	}

	return auth, nil
}

// ensureAuthorization makes the store hold the identity and binding of auth.
//
// A reused identity must exist. It's never modified. A synthesized one is
// applied together with its binding, and the binding of the other kind, left
// over from a scope change, is removed.
func (p *Provisioner) ensureAuthorization(ctx context.Context, ide *amdevv1.IdeConfig, id naming.Identity, auth authorization, result *Result) error {
	log := log.FromContext(ctx)

	if auth.Reused {
		// What a former create-mode policy synthesized is ours no more.
		if err := p.pruneSynthesized(ctx, ide, id, auth, result); err != nil {
			return err
		}

		if auth.BindingKind == BindingKindNone {
			return nil
		}

		found, err := p.Store.Get(ctx, types.NamespacedName{Name: auth.ServiceAccountName, Namespace: ide.Namespace}, &corev1.ServiceAccount{})
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("service account %q not found in %q", auth.ServiceAccountName, ide.Namespace)
		}

		log.V(1).Info("Reusing service account", "serviceAccount", auth.ServiceAccountName)

		return nil
	}

	if err := p.apply(ctx, ide, auth.ServiceAccount, result); err != nil {
		return err
	}

	var stale client.Object
	if auth.BindingKind == BindingKindScoped {
		if err := p.apply(ctx, ide, auth.RoleBinding, result); err != nil {
			return err
		}

		stale = &rbacv1.ClusterRoleBinding{
			ObjectMeta: metav1.ObjectMeta{Name: id.ClusterRoleBindingName()},
		}
	} else {
		if err := p.apply(ctx, ide, auth.ClusterRoleBinding, result); err != nil {
			return err
		}

		stale = &rbacv1.RoleBinding{
			ObjectMeta: metav1.ObjectMeta{Name: id.RoleBindingName(), Namespace: ide.Namespace},
		}
	}

	return p.prune(ctx, ide, stale, result)
}

// pruneSynthesized removes the identity and bindings carrying the labels of
// the workspace. The identity reused by auth is kept even when it carries
// them.
func (p *Provisioner) pruneSynthesized(ctx context.Context, ide *amdevv1.IdeConfig, id naming.Identity, auth authorization, result *Result) error {
	selector := id.Labels()

	var stale []client.Object

	roleBindings := &rbacv1.RoleBindingList{}
	if err := p.Store.List(ctx, roleBindings, ide.Namespace, selector); err != nil {
		return err
	}
	for index := range roleBindings.Items {
		stale = append(stale, &roleBindings.Items[index])
	}

	// Cluster scoped, the ones of other namespaces are skipped by prune.
	clusterRoleBindings := &rbacv1.ClusterRoleBindingList{}
	if err := p.Store.List(ctx, clusterRoleBindings, "", selector); err != nil {
		return err
	}
	for index := range clusterRoleBindings.Items {
		stale = append(stale, &clusterRoleBindings.Items[index])
	}

	serviceAccounts := &corev1.ServiceAccountList{}
	if err := p.Store.List(ctx, serviceAccounts, ide.Namespace, selector); err != nil {
		return err
	}
	for index := range serviceAccounts.Items {
		if serviceAccounts.Items[index].Name != auth.ServiceAccountName {
			stale = append(stale, &serviceAccounts.Items[index])
		}
	}

	for _, obj := range stale {
		if err := p.prune(ctx, ide, obj, result); err != nil {
			return err
		}
	}

	return nil
}
