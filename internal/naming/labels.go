package naming

import "maps"

// Label and annotation keys put on generated objects.
const (
	// IdentityLabel selects the pods of one workspace.
	IdentityLabel = "app"

	// ApplicationLabel is shared by every workspace.
	ApplicationLabel = "app.kubernetes.io/name"
	// ManagedByLabel names the operator.
	ManagedByLabel = "app.kubernetes.io/managed-by"
	// PartOfLabel carries the identity, so objects of one workspace can be listed.
	PartOfLabel = "app.kubernetes.io/part-of"

	// KindAnnotation marks objects created from an IdeConfig.
	KindAnnotation = "amdev.cloriver.io"
	// OwnerAnnotation carries the owner of the workspace.
	OwnerAnnotation = "userName"
)

// Label and annotation values.
const (
	ApplicationName = "ide-workspace"
	ManagerName     = "ide-operator"
	KindValue       = "ideconfigs"
)

// Labels returns the labels of the workload, its pods and the network object.
// The same set is used as the pod selector.
func (id Identity) Labels() map[string]string {
	return map[string]string{
		IdentityLabel:    id.LabelValue(),
		ApplicationLabel: ApplicationName,
		ManagedByLabel:   ManagerName,
		PartOfLabel:      id.Name(),
	}
}

// Annotations returns the annotations put on every generated object.
func (id Identity) Annotations() map[string]string {
	return map[string]string{
		KindAnnotation:  KindValue,
		OwnerAnnotation: id.Owner,
	}
}

// Merge returns a new map holding base overlaid by the extra maps.
func Merge(base map[string]string, extra ...map[string]string) map[string]string {
	out := maps.Clone(base)
	if out == nil {
		out = map[string]string{}
	}
	for _, m := range extra {
		maps.Copy(out, m)
	}

	return out
}
