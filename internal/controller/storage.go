package controller

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// checkSharedClaim looks for the shared read-only claim of the namespace.
//
// The claim is managed outside of the operator and referenced by many
// workspaces, it's never created here. Its absence only leaves the pods
// pending, so it's reported as a warning.
func (p *Provisioner) checkSharedClaim(ctx context.Context, namespace string) string {
	log := log.FromContext(ctx)

	claim := &corev1.PersistentVolumeClaim{}
	key := types.NamespacedName{Name: p.Config.SharedClaimName, Namespace: namespace}

	found, err := p.Store.Get(ctx, key, claim)
	if err != nil {
		log.V(1).Error(err, "Unable to check the shared claim", "claim", key.Name)
		return fmt.Sprintf("unable to check the shared claim %q: %v", key.Name, err)
	}

	if !found {
		return fmt.Sprintf("shared claim %q not found in %q, pods will stay pending", key.Name, namespace)
	}

	return ""
}
