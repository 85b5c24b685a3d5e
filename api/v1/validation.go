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
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateSpec checks the invariants a spec must hold before anything is
// written on its behalf.
func ValidateSpec(spec *IdeConfigSpec) field.ErrorList {
	var errs field.ErrorList

	specPath := field.NewPath("spec")

	if spec.UserName == "" {
		errs = append(errs, field.Required(specPath.Child("userName"), "the owner is the naming key of every generated object"))
	}

	if spec.Replicas < 0 {
		errs = append(errs, field.Invalid(specPath.Child("replicas"), spec.Replicas, "must be greater than or equal to 0"))
	}

	if spec.HasFeature(FeatureEditor) || spec.HasFeature(FeatureNotebook) {
		if spec.InfrastructureSize.Disk.IsZero() {
			errs = append(errs, field.Required(specPath.Child("infrastructureSize", "disk"), "the per-user volume needs a capacity"))
		}
	}

	for i, port := range spec.PortList {
		portPath := specPath.Child("portList").Index(i)
		if port.Name == "" {
			errs = append(errs, field.Required(portPath.Child("name"), ""))
		}
		if port.Port <= 0 || port.Port > 65535 {
			errs = append(errs, field.Invalid(portPath.Child("port"), port.Port, "must be between 1 and 65535"))
		}
		if port.TargetPort < 0 || port.TargetPort > 65535 {
			errs = append(errs, field.Invalid(portPath.Child("targetPort"), port.TargetPort, "must be between 0 and 65535"))
		}
	}

	if git := spec.GitCredential(); git != nil {
		gitPath := specPath.Child("vscode", "git")
		if git.ID == "" {
			errs = append(errs, field.Required(gitPath.Child("id"), ""))
		}
		if git.Repository == "" {
			errs = append(errs, field.Required(gitPath.Child("repository"), ""))
		}
	}

	if spec.HasFeature(FeatureRemoteShell) {
		errs = append(errs, validatePermission(spec.RemoteAccessPolicy(), specPath.Child("webssh", "permission"))...)
	}

	return errs
}

func validatePermission(permission *Permission, path *field.Path) field.ErrorList {
	var errs field.ErrorList

	if permission == nil {
		return append(errs, field.Required(path, "the remote shell needs a permission policy"))
	}

	switch permission.Scope {
	case PermissionScopeNamespace, PermissionScopeCluster:
	default:
		errs = append(errs, field.NotSupported(path.Child("scope"), permission.Scope, []PermissionScope{PermissionScopeNamespace, PermissionScopeCluster}))
	}

	switch permission.UseType {
	case UsageModeCreate:
	case UsageModeUse:
		if permission.ServiceAccountName == "" {
			errs = append(errs, field.Required(path.Child("serviceAccountName"), "an existing service account is required when useType is \"use\""))
		}
	default:
		errs = append(errs, field.NotSupported(path.Child("useType"), permission.UseType, []UsageMode{UsageModeCreate, UsageModeUse}))
	}

	return errs
}
