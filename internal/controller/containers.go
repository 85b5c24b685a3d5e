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

package controller

import (
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

// Fixed ports of the feature containers.
const (
	EditorPort         int32 = 8443
	ShellServerPort    int32 = 2222
	TerminalBridgePort int32 = 3000
	NotebookPort       int32 = 8888
)

const (
	editorContainerName         = "vscodeserver"
	shellServerContainerName    = "sshserver"
	terminalBridgeContainerName = "wetty"
	notebookContainerName       = "jupyter"

	// Per-user writable volume, from the claim template.
	userStorageVolume = "user-dev-storage"
	// Shared read-only volume, from the externally managed claim.
	sharedStorageVolume = "com-dev-storage"

	editorHealthPath = "/vscode/"
	gitSecretPath    = "/etc/git-secret"

	// Bootstrap account of the shell server image.
	shellUser     = "linuxserver.io"
	shellPassword = "password"
)

// Keys of the git credential object. The editor receives them upper-cased and
// prefixed with GIT_.
const (
	gitIDKey         = "id"
	gitTokenKey      = "token"
	gitRepositoryKey = "repository"
	gitBranchKey     = "branch"
)

var gitKeys = []string{gitIDKey, gitTokenKey, gitRepositoryKey, gitBranchKey}

// composeContainers returns the containers of the enabled features.
//
// The order is fixed (editor, remote shell, notebook) whatever the order of
// the service types, so the pod template stays stable. Unknown service types
// are returned as warnings.
func composeContainers(ide *amdevv1.IdeConfig, id naming.Identity, config Config) ([]corev1.Container, []string, error) {
	spec := &ide.Spec

	var warnings []string
	for _, feature := range spec.UnknownFeatures() {
		warnings = append(warnings, fmt.Sprintf("unknown service type %q is ignored", feature))
	}

	if spec.HasFeature(amdevv1.FeatureRemoteShell) && spec.RemoteAccessPolicy() == nil {
		return nil, warnings, fmt.Errorf("%q requires a permission policy", amdevv1.FeatureRemoteShell)
	}

	containers := []corev1.Container{}

	if spec.HasFeature(amdevv1.FeatureEditor) {
		containers = append(containers, initEditorContainer(ide, id, config))
	}

	if spec.HasFeature(amdevv1.FeatureRemoteShell) {
		containers = append(
			containers,
			initShellServerContainer(spec, config),
			initTerminalBridgeContainer(id, config),
		)
	}

	if spec.HasFeature(amdevv1.FeatureNotebook) {
		containers = append(containers, initNotebookContainer(spec, id, config))
	}

	return containers, warnings, nil
}

// sizedResources uses the infrastructure size as both requests and limits.
func sizedResources(size amdevv1.InfrastructureSize) corev1.ResourceRequirements {
	resources := corev1.ResourceRequirements{}

	list := corev1.ResourceList{}
	if !size.CPU.IsZero() {
		list[corev1.ResourceCPU] = size.CPU
	}
	if !size.Memory.IsZero() {
		list[corev1.ResourceMemory] = size.Memory
	}

	if len(list) > 0 {
		resources.Requests = list
		resources.Limits = list.DeepCopy()
	}

	return resources
}

// proxyURI is the template the editor uses to expose the ports of the user's
// apps. The {{port}} placeholder is filled in by the editor itself.
func proxyURI(ide *amdevv1.IdeConfig, id naming.Identity, config Config) string {
	domain := config.ProxyDomain
	if override, ok := ide.Annotations[amdevv1.ProxyDomainAnnotation]; ok {
		domain = override
	}

	if config.ProxyDomainType == ProxyDomainTypePath {
		return fmt.Sprintf("https://%s/%s/{{port}}", domain, id.Name())
	}

	return fmt.Sprintf("https://%sp{{port}}.%s", id.Name(), domain)
}

// initEditorContainer creates the code-server container.
//
// It keeps the user's home on the per-user volume and reads the extensions
// from the shared one.
func initEditorContainer(ide *amdevv1.IdeConfig, id naming.Identity, config Config) corev1.Container {
	spec := &ide.Spec

	probe := corev1.ProbeHandler{
		HTTPGet: &corev1.HTTPGetAction{
			Path: editorHealthPath,
			Port: intstr.FromInt32(EditorPort),
		},
	}

	container := corev1.Container{
		Name:            editorContainerName,
		Image:           config.EditorImage,
		ImagePullPolicy: config.ImagePullPolicy,
		Resources:       sizedResources(spec.InfrastructureSize),
		Ports: []corev1.ContainerPort{
			{
				ContainerPort: EditorPort,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		StartupProbe: &corev1.Probe{
			ProbeHandler:     probe,
			FailureThreshold: 30,
			PeriodSeconds:    10,
			TimeoutSeconds:   1,
			SuccessThreshold: 1,
		},
		LivenessProbe: &corev1.Probe{
			ProbeHandler:        probe,
			InitialDelaySeconds: 5,
			FailureThreshold:    3,
			PeriodSeconds:       30,
			TimeoutSeconds:      1,
			SuccessThreshold:    1,
		},
		VolumeMounts: []corev1.VolumeMount{
			{
				Name:      userStorageVolume,
				MountPath: "/config",
			},
			{
				Name:      sharedStorageVolume,
				MountPath: "/common-config",
				ReadOnly:  true,
			},
		},
	}

	// Selects the extension bundle installed at startup.
	if packageType, ok := ide.Annotations[amdevv1.PackageTypeAnnotation]; ok {
		container.Env = append(container.Env, corev1.EnvVar{
			Name:  "PACKAGETYPE",
			Value: packageType,
		})
	}

	container.Env = append(container.Env, corev1.EnvVar{
		Name:  "VSCODE_PROXY_URI",
		Value: proxyURI(ide, id, config),
	})

	if spec.HasGit() {
		secretName := id.SecretName()

		container.VolumeMounts = append(container.VolumeMounts, corev1.VolumeMount{
			Name:      secretName,
			MountPath: gitSecretPath,
			ReadOnly:  true,
		})

		// Never as literals.
		for _, key := range gitKeys {
			container.Env = append(container.Env, corev1.EnvVar{
				Name: gitEnvName(key),
				ValueFrom: &corev1.EnvVarSource{
					SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{
							Name: secretName,
						},
						Key: key,
					},
				},
			})
		}
	}

	return container
}

func gitEnvName(key string) string {
	switch key {
	case gitIDKey:
		return "GIT_ID"
	case gitTokenKey:
		return "GIT_TOKEN"
	case gitRepositoryKey:
		return "GIT_REPOSITORY"
	default:
		return "GIT_BRANCH"
	}
}

// initShellServerContainer creates the SSH server of the remote shell.
//
// FIXME: the bootstrap account is baked into the image and its password is
// passed in clear. It has to come from a per-workspace secret.
func initShellServerContainer(spec *amdevv1.IdeConfigSpec, config Config) corev1.Container {
	container := corev1.Container{
		Name:            shellServerContainerName,
		Image:           config.ShellServerImage,
		ImagePullPolicy: config.ImagePullPolicy,
		Command: []string{
			"/bin/sh",
			"-c",
			"/usr/local/bin/configure-kubeconfig && /start.sh && /init",
		},
		Ports: []corev1.ContainerPort{
			{
				ContainerPort: ShellServerPort,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env: []corev1.EnvVar{
			{Name: "USER_NAME", Value: shellUser},
			{Name: "PASSWORD_ACCESS", Value: "true"},
			{Name: "SUDO_ACCESS", Value: "true"},
			{Name: "USER_PASSWORD", Value: shellPassword},
		},
	}

	// The editor's volumes are shared with the shell.
	if spec.HasFeature(amdevv1.FeatureEditor) {
		container.VolumeMounts = []corev1.VolumeMount{
			{
				Name:      userStorageVolume,
				MountPath: "/config",
			},
			{
				Name:      sharedStorageVolume,
				MountPath: "/common-config",
			},
		}
	}

	return container
}

// initTerminalBridgeContainer creates the web terminal, talking to the SSH
// server over the pod loopback.
func initTerminalBridgeContainer(id naming.Identity, config Config) corev1.Container {
	return corev1.Container{
		Name:            terminalBridgeContainerName,
		Image:           config.TerminalBridgeImage,
		ImagePullPolicy: config.ImagePullPolicy,
		Ports: []corev1.ContainerPort{
			{
				ContainerPort: TerminalBridgePort,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env: []corev1.EnvVar{
			{Name: "BASE", Value: id.Path() + "/webssh"},
			{Name: "SSHHOST", Value: "127.0.0.1"},
			{Name: "SSHPORT", Value: strconv.Itoa(int(ShellServerPort))},
			{Name: "SSHUSER", Value: shellUser},
			{Name: "SSHPASS", Value: shellPassword},
			{Name: "COMMAND", Value: "/bin/zsh"},
		},
	}
}

// initNotebookContainer creates the Jupyter server.
//
// The cross-site protections are turned off, the proxy in front is trusted.
func initNotebookContainer(spec *amdevv1.IdeConfigSpec, id naming.Identity, config Config) corev1.Container {
	return corev1.Container{
		Name:            notebookContainerName,
		Image:           config.NotebookImage,
		ImagePullPolicy: config.ImagePullPolicy,
		Resources:       sizedResources(spec.InfrastructureSize),
		Ports: []corev1.ContainerPort{
			{
				ContainerPort: NotebookPort,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env: []corev1.EnvVar{
			{Name: "JUPYTER_ENABLE_LAB", Value: "yes"},
			{Name: "JUPYTER_TOKEN", Value: ""},
			{Name: "NOTEBOOK_BASE_PATH", Value: id.Path() + "/jupyter"},
			{Name: "NOTEBOOK_PORT", Value: strconv.Itoa(int(NotebookPort))},
			{Name: "STREAMLIT_SERVER_ENABLE_XSRF_PROTECTION", Value: "false"},
			{Name: "STREAMLIT_SERVER_ENABLE_CORS", Value: "false"},
		},
		VolumeMounts: []corev1.VolumeMount{
			{
				Name:      userStorageVolume,
				MountPath: "/config",
			},
		},
	}
}
