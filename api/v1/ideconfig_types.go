/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1

import (
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Feature is one of the services a workspace can run.
//
// The value is kept as a free string so unknown tags survive admission and
// are only reported as warnings.
type Feature string

const (
	// FeatureEditor runs the web code editor (code-server).
	FeatureEditor Feature = "vscode"

	// FeatureRemoteShell runs an SSH server and a web terminal bridged to it.
	FeatureRemoteShell Feature = "webssh"

	// FeatureNotebook runs a Jupyter notebook server.
	FeatureNotebook Feature = "notebook"
)

// PermissionScope tells where the remote shell identity is granted its role.
type PermissionScope string

const (
	// PermissionScopeNamespace binds the role inside the workspace namespace.
	PermissionScopeNamespace PermissionScope = "namespace"

	// PermissionScopeCluster binds the role cluster-wide.
	PermissionScopeCluster PermissionScope = "cluster"
)

// UsageMode tells whether the remote shell identity is created or reused.
type UsageMode string

const (
	// UsageModeCreate synthesizes a service account and its binding.
	UsageModeCreate UsageMode = "create"

	// UsageModeUse reuses an existing service account as is.
	UsageModeUse UsageMode = "use"
)

// Role names accepted in a permission policy.
const (
	RoleAdministrator = "administrator"
	RoleArchitect     = "architect"
	RoleDeveloper     = "developer"
	RoleCoder         = "coder"
)

// Annotations read from an IdeConfig.
const (
	// PackageTypeAnnotation selects the editor extension bundle (basic, python, java, ...).
	PackageTypeAnnotation = "packageType.cloriver.io/vscode"

	// ProxyDomainAnnotation overrides the configured proxy domain.
	ProxyDomainAnnotation = "proxyDomain.cloriver.io/vscode"
)

// InfrastructureSize is the compute and storage sizing of the workspace.
type InfrastructureSize struct {
	// CPU is used both as request and limit of the editor and notebook containers.
	// +optional
	CPU resource.Quantity `json:"cpu,omitempty"`

	// Memory is used both as request and limit of the editor and notebook containers.
	// +optional
	Memory resource.Quantity `json:"memory,omitempty"`

	// Disk is the capacity of the per-user volume claim.
	// +optional
	Disk resource.Quantity `json:"disk,omitempty"`
}

// Port is an extra port exposed by the workspace service.
type Port struct {
	Name string `json:"name"`
	// +kubebuilder:default=TCP
	Protocol   string `json:"protocol,omitempty"`
	Port       int32  `json:"port"`
	TargetPort int32  `json:"targetPort,omitempty"`
}

// Git holds the credentials cloned by the editor at startup.
type Git struct {
	ID         string `json:"id"`
	Repository string `json:"repository"`
	// +optional
	Token string `json:"token,omitempty"`
	// +optional
	Branch string `json:"branch,omitempty"`
}

// Vscode configures the editor.
type Vscode struct {
	// +optional
	Git *Git `json:"git,omitempty"`
}

// Permission is the remote-access permission policy of the remote shell.
type Permission struct {
	// Role is one of administrator, architect, developer or coder. Unknown
	// roles get the restricted role.
	Role string `json:"role,omitempty"`

	// +kubebuilder:default=namespace
	// +kubebuilder:validation:Enum=namespace;cluster
	Scope PermissionScope `json:"scope,omitempty"`

	// +kubebuilder:default=create
	// +kubebuilder:validation:Enum=create;use
	UseType UsageMode `json:"useType,omitempty"`

	// ServiceAccountName is the existing identity reused when UseType is "use".
	// +optional
	ServiceAccountName string `json:"serviceAccountName,omitempty"`
}

// WebSSH configures the remote shell.
type WebSSH struct {
	// +optional
	Permission *Permission `json:"permission,omitempty"`
}

// IdeConfigSpec defines the desired state of IdeConfig
type IdeConfigSpec struct {
	// UserName is the owner of the workspace.
	UserName string `json:"userName"`
	// WsName optionally scopes the workspace.
	// +optional
	WsName string `json:"wsName,omitempty"`
	// AppName optionally scopes the app within the workspace.
	// +optional
	AppName string `json:"appName,omitempty"`

	// ServiceTypes is the enabled feature set.
	ServiceTypes []Feature `json:"serviceTypes,omitempty"`

	// +kubebuilder:default=1
	// +kubebuilder:validation:Minimum=0
	Replicas int32 `json:"replicas,omitempty"`

	InfrastructureSize InfrastructureSize `json:"infrastructureSize,omitempty"`

	// PortList holds extra ports exposed next to the feature ports.
	// +optional
	PortList []Port `json:"portList,omitempty"`

	// +optional
	Vscode *Vscode `json:"vscode,omitempty"`

	// +optional
	Webssh *WebSSH `json:"webssh,omitempty"`
}

// IdeConfigStatus defines the observed state of IdeConfig
type IdeConfigStatus struct {
	// Message is overwritten on every reconciliation.
	Message string `json:"message,omitempty"`

	IsReady bool `json:"isReady"`

	// ObservedGeneration is the generation the message refers to.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="User",type=string,JSONPath=`.spec.userName`
// +kubebuilder:printcolumn:name="Services",type=string,JSONPath=`.spec.serviceTypes`
// +kubebuilder:printcolumn:name="Ready",type=boolean,JSONPath=`.status.isReady`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// IdeConfig is the Schema for the ideconfigs API
type IdeConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   IdeConfigSpec   `json:"spec,omitempty"`
	Status IdeConfigStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// IdeConfigList contains a list of IdeConfig
type IdeConfigList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []IdeConfig `json:"items"`
}

func init() {
	SchemeBuilder.Register(&IdeConfig{}, &IdeConfigList{})
}
