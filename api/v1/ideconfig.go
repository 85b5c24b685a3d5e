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

import "slices"

// HasFeature tells whether the given feature is enabled.
func (s *IdeConfigSpec) HasFeature(feature Feature) bool {
	return slices.Contains(s.ServiceTypes, feature)
}

// GitCredential returns the git credentials, or nil if none are configured.
func (s *IdeConfigSpec) GitCredential() *Git {
	if s.Vscode == nil {
		return nil
	}

	return s.Vscode.Git
}

// HasGit tells whether the editor is enabled together with git credentials.
//
// It's the one condition under which the credential object exists.
func (s *IdeConfigSpec) HasGit() bool {
	return s.HasFeature(FeatureEditor) && s.GitCredential() != nil
}

// RemoteAccessPolicy returns the remote shell permission, or nil.
func (s *IdeConfigSpec) RemoteAccessPolicy() *Permission {
	if s.Webssh == nil {
		return nil
	}

	return s.Webssh.Permission
}

// UnknownFeatures returns the feature tags this operator does not know about.
func (s *IdeConfigSpec) UnknownFeatures() []Feature {
	var unknown []Feature
	for _, feature := range s.ServiceTypes {
		switch feature {
		case FeatureEditor, FeatureRemoteShell, FeatureNotebook:
		default:
			unknown = append(unknown, feature)
		}
	}

	return unknown
}

// UpdateStatus overwrites the status with the given outcome.
//
// It returns false when nothing changed, so the caller can skip the write.
func (ide *IdeConfig) UpdateStatus(message string, ready bool) bool {
	status := IdeConfigStatus{
		Message:            message,
		IsReady:            ready,
		ObservedGeneration: ide.Generation,
	}

	if status == ide.Status {
		return false
	}

	ide.Status = status

	return true
}
