// Package naming derives the identity of a workspace and the names, labels
// and annotations of every object generated for it.
//
// Every function is pure. The identity is the only naming key: two specs with
// the same owner, workspace and app share all their generated objects.
package naming

import "strings"

// Fixed suffixes appended to the identity. They are part of the contract with
// already deployed workspaces and must not change.
const (
	SecretSuffix             = "-ide-secret"
	ServiceAccountSuffix     = "-ide-account"
	RoleBindingSuffix        = "-ide-rolebinding"
	ClusterRoleBindingSuffix = "-ide-cluster-rolebinding"
	ServiceSuffix            = "-vscode-server-service"
	StatefulSetSuffix        = "-vscode-server-statefulset"
	LabelSuffix              = "-vscode-server"
)

// Identity is the (owner, workspace, app) triple a workspace is keyed by.
// Workspace and App are optional.
type Identity struct {
	Owner     string
	Workspace string
	App       string
}

// New returns the identity of the given triple.
func New(owner, workspace, app string) Identity {
	return Identity{Owner: owner, Workspace: workspace, App: app}
}

// GenerateName joins the non-empty parts of the triple with a dash.
//
// Distinct triples may collide when a part contains a dash, e.g. ("a-b", "c")
// and ("a", "b-c") both give "a-b-c".
func GenerateName(owner, workspace, app string) string {
	return strings.Join(parts(owner, workspace, app), "-")
}

// GeneratePath is the routing analogue of GenerateName: the non-empty parts
// joined and prefixed with a slash.
func GeneratePath(owner, workspace, app string) string {
	return "/" + strings.Join(parts(owner, workspace, app), "/")
}

// ParsePath splits a path built by GeneratePath back into its parts.
//
// A path of two segments is read as owner and workspace, so an identity with
// an app but no workspace is not recovered.
func ParsePath(path string) Identity {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	var id Identity
	switch {
	case len(segments) > 2:
		id.App = segments[2]
		fallthrough
	case len(segments) > 1:
		id.Workspace = segments[1]
		fallthrough
	default:
		id.Owner = segments[0]
	}

	return id
}

func parts(owner, workspace, app string) []string {
	out := []string{owner}
	if workspace != "" {
		out = append(out, workspace)
	}
	if app != "" {
		out = append(out, app)
	}

	return out
}

// Name is the dash-joined canonical name.
func (id Identity) Name() string {
	return GenerateName(id.Owner, id.Workspace, id.App)
}

// Path is the slash-prefixed routing path.
func (id Identity) Path() string {
	return GeneratePath(id.Owner, id.Workspace, id.App)
}

// SecretName is the name of the git credential object.
func (id Identity) SecretName() string {
	return id.Name() + SecretSuffix
}

// ServiceAccountName is the name of the synthesized remote shell identity.
func (id Identity) ServiceAccountName() string {
	return id.Name() + ServiceAccountSuffix
}

// RoleBindingName is the name of the namespace scoped binding.
func (id Identity) RoleBindingName() string {
	return id.Name() + RoleBindingSuffix
}

// ClusterRoleBindingName is the name of the cluster-wide binding.
func (id Identity) ClusterRoleBindingName() string {
	return id.Name() + ClusterRoleBindingSuffix
}

// ServiceName is the name of the network object.
func (id Identity) ServiceName() string {
	return id.Name() + ServiceSuffix
}

// StatefulSetName is the name of the workload object.
func (id Identity) StatefulSetName() string {
	return id.Name() + StatefulSetSuffix
}

// LabelValue is the value of the identity label.
func (id Identity) LabelValue() string {
	return id.Name() + LabelSuffix
}
