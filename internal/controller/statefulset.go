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
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

// initStatefulSet creates the workload hosting the feature containers.
//
// The shared claim is always mounted. The per-user claim template only exists
// when the editor or the notebook needs it, and the git secret is only
// mounted along the editor.
func initStatefulSet(ide *amdevv1.IdeConfig, id naming.Identity, containers []corev1.Container, serviceAccountName string, config Config) *appsv1.StatefulSet {
	spec := &ide.Spec

	statefulSet := &appsv1.StatefulSet{}
	statefulSet.Name = id.StatefulSetName()
	statefulSet.Namespace = ide.Namespace
	statefulSet.Annotations = id.Annotations()

	// Labels
	labels := id.Labels()

	statefulSet.Labels = labels
	statefulSet.Spec.Selector = &metav1.LabelSelector{
		MatchLabels: labels,
	}
	statefulSet.Spec.Template.Labels = labels

	statefulSet.Spec.Replicas = ptr.To(spec.Replicas)
	statefulSet.Spec.ServiceName = id.ServiceName()

	volumes := []corev1.Volume{
		{
			Name: sharedStorageVolume,
			VolumeSource: corev1.VolumeSource{
				PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
					ClaimName: config.SharedClaimName,
				},
			},
		},
	}

	if spec.HasGit() {
		volumes = append(volumes, corev1.Volume{
			Name: id.SecretName(),
			VolumeSource: corev1.VolumeSource{
				Secret: &corev1.SecretVolumeSource{
					SecretName: id.SecretName(),
				},
			},
		})
	}

	if spec.HasFeature(amdevv1.FeatureEditor) || spec.HasFeature(amdevv1.FeatureNotebook) {
		claim := corev1.PersistentVolumeClaim{}
		claim.Name = userStorageVolume
		claim.Spec.AccessModes = []corev1.PersistentVolumeAccessMode{
			corev1.ReadWriteOnce,
		}
		claim.Spec.Resources.Requests = corev1.ResourceList{
			corev1.ResourceStorage: spec.InfrastructureSize.Disk,
		}

		// Empty means the default storage class.
		if config.UserStorageClassName != "" {
			claim.Spec.StorageClassName = ptr.To(config.UserStorageClassName)
		}

		statefulSet.Spec.VolumeClaimTemplates = []corev1.PersistentVolumeClaim{claim}
	}

	statefulSet.Spec.Template.Spec = corev1.PodSpec{
		ServiceAccountName: serviceAccountName,
		Containers:         containers,
		Volumes:            volumes,
	}

	return statefulSet
}

// podTemplateMatches tells whether the stored template already runs the
// composed one. Fields the API server defaults are ignored, but a container,
// volume, variable, port or mount that was removed is a difference, and so
// are resources that were dropped.
func podTemplateMatches(desired, existing *corev1.PodTemplateSpec) bool {
	if len(desired.Spec.Containers) != len(existing.Spec.Containers) ||
		len(desired.Spec.Volumes) != len(existing.Spec.Volumes) {
		return false
	}

	for index := range desired.Spec.Containers {
		want := &desired.Spec.Containers[index]
		got := &existing.Spec.Containers[index]

		if len(want.Env) != len(got.Env) ||
			len(want.Ports) != len(got.Ports) ||
			len(want.VolumeMounts) != len(got.VolumeMounts) {
			return false
		}

		if !equality.Semantic.DeepEqual(want.Resources, got.Resources) {
			return false
		}
	}

	return derives(desired, existing)
}

// claimTemplatesMatch compares the claim templates by name, requested size
// and storage class. A storage class left empty in desired is the cluster
// default, whatever the stored one says.
func claimTemplatesMatch(desired, existing []corev1.PersistentVolumeClaim) bool {
	if len(desired) != len(existing) {
		return false
	}

	for index := range desired {
		want := &desired[index]
		got := &existing[index]

		if want.Name != got.Name {
			return false
		}

		wantSize := want.Spec.Resources.Requests[corev1.ResourceStorage]
		gotSize := got.Spec.Resources.Requests[corev1.ResourceStorage]
		if wantSize.Cmp(gotSize) != 0 {
			return false
		}

		if want.Spec.StorageClassName != nil && !ptr.Equal(want.Spec.StorageClassName, got.Spec.StorageClassName) {
			return false
		}
	}

	return true
}
