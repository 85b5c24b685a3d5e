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
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/store"
)

// IdeConfigReconciler reconciles a IdeConfig object
type IdeConfigReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	Config   Config

	provisioner *Provisioner
}

// finalizer used to control the clean up of the workspace.
const finalizer = "amdev.cloriver.io/finalizer"

// +kubebuilder:rbac:groups=amdev.cloriver.io,resources=ideconfigs,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=amdev.cloriver.io,resources=ideconfigs/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=amdev.cloriver.io,resources=ideconfigs/finalizers,verbs=update
// +kubebuilder:rbac:groups=apps,resources=statefulsets,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=core,resources=services;secrets;serviceaccounts,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=core,resources=persistentvolumeclaims,verbs=get;list;watch
// +kubebuilder:rbac:groups=rbac.authorization.k8s.io,resources=rolebindings;clusterrolebindings,verbs=get;list;watch;create;update;patch;delete;bind
// +kubebuilder:rbac:groups=core,resources=events,verbs=create;patch

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
func (r *IdeConfigReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := log.FromContext(ctx)

	log.V(1).Info("Reconcile", "what", req.NamespacedName)

	// Fetch the ideconfig to reconcile.
	ide := amdevv1.IdeConfig{}
	if err := r.Get(ctx, req.NamespacedName, &ide); err != nil {
		// Not found means it's been deleted.
		if !errors.IsNotFound(err) {
			log.Error(err, "unable to fetch the ideconfig")
		}

		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	// Manage deletion and finalizers.
	containsFinalizer := controllerutil.ContainsFinalizer(&ide, finalizer)

	if !ide.DeletionTimestamp.IsZero() {
		// Object has been deleted
		if containsFinalizer {
			// It first removes the generated objects, then the finalizer.
			if err := r.cleanup(ctx, &ide); err != nil {
				return ctrl.Result{}, err
			}

			finalizersUpdated := controllerutil.RemoveFinalizer(&ide, finalizer)
			if finalizersUpdated {
				if err := r.Update(ctx, &ide); err != nil {
					return ctrl.Result{}, err
				}
			}
		}

		// Stop reconciliation as the object is being deleted.
		return ctrl.Result{}, nil
	}

	// verify that the finalizer exists.
	if !containsFinalizer {
		finalizersUpdated := controllerutil.AddFinalizer(&ide, finalizer)
		if finalizersUpdated {
			if err := r.Update(ctx, &ide); err != nil {
				return ctrl.Result{}, err
			}
		}
	}

	result := r.getProvisioner().Reconcile(ctx, &ide)

	for _, warning := range result.Warnings {
		r.Recorder.Event(&ide, "Warning", "Degraded", warning)
	}

	for _, change := range result.Changes {
		r.Recorder.Event(
			&ide,
			"Normal",
			eventReason(change),
			fmt.Sprintf(
				"%s %s %q in the namespace %q",
				change.Operation,
				change.Kind,
				change.Name,
				ide.Namespace,
			),
		)
	}

	if result.Err != nil {
		log.Error(result.Err, "Reconciliation aborted", "state", result.State)
		r.Recorder.Event(&ide, "Warning", "ReconcileFailed", result.Message)
	}

	// The status is the only side effect on the ideconfig itself.
	statusUpdated := (&ide).UpdateStatus(result.Message, result.Ready)
	if statusUpdated {
		if err := r.Status().Update(ctx, &ide); err != nil {
			log.V(1).Error(err, "Unable to update the IdeConfigStatus")
			return ctrl.Result{}, err
		}
	}

	// A spec that doesn't validate waits for the next change.
	if result.Err != nil && !IsPermanent(result.Err) {
		return ctrl.Result{}, result.Err
	}

	return ctrl.Result{}, nil
}

// cleanup runs the teardown and reports it on the ideconfig.
func (r *IdeConfigReconciler) cleanup(ctx context.Context, ide *amdevv1.IdeConfig) error {
	log := log.FromContext(ctx)

	result := r.getProvisioner().Cleanup(ctx, ide)

	for _, ref := range result.Deleted {
		r.Recorder.Event(
			ide,
			"Normal",
			"Deleting",
			fmt.Sprintf("Deleting %s from the namespace %q", ref, ide.Namespace),
		)
	}

	if result.OK {
		return nil
	}

	r.Recorder.Event(ide, "Warning", "DeleteFailed", result.Message)

	if ide.UpdateStatus(result.Message, false) {
		if err := r.Status().Update(ctx, ide); err != nil {
			log.V(1).Error(err, "Unable to update the IdeConfigStatus")
		}
	}

	return result.Err
}

func eventReason(change Change) string {
	switch change.Operation {
	case store.OperationCreated:
		return "Creating" + change.Kind
	case store.OperationUpdated:
		return "Updating" + change.Kind
	case OperationRecreated:
		return "Recreating" + change.Kind
	default:
		return "Deleting" + change.Kind
	}
}

func (r *IdeConfigReconciler) getProvisioner() *Provisioner {
	if r.provisioner == nil {
		r.provisioner = NewProvisioner(r.Client, r.Scheme, r.Config)
	}

	return r.provisioner
}

// SetupWithManager sets up the controller with the Manager.
func (r *IdeConfigReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&amdevv1.IdeConfig{}).
		Owns(&appsv1.StatefulSet{}).
		Owns(&corev1.Service{}).
		Owns(&corev1.Secret{}).
		Owns(&corev1.ServiceAccount{}).
		Owns(&rbacv1.RoleBinding{}).
		Complete(r)
}
