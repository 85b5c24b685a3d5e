package v1

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"
)

// log is for logging in this package.
var ideconfiglog = logf.Log.WithName("ideconfig-resource")

// SetupWebhookWithManager will setup the manager to manage the webhooks
func (r *IdeConfig) SetupWebhookWithManager(mgr ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(mgr, r).
		WithCustomDefaulter(&IdeConfigCustomDefaulter{}).
		WithCustomValidator(&IdeConfigCustomValidator{}).
		Complete()
}

// +kubebuilder:webhook:path=/mutate-amdev-cloriver-io-v1-ideconfig,mutating=true,failurePolicy=fail,sideEffects=None,groups=amdev.cloriver.io,resources=ideconfigs,verbs=create;update,versions=v1,name=mideconfig.kb.io,admissionReviewVersions=v1

// IdeConfigCustomDefaulter fills in the optional parts of the spec.
//
// +kubebuilder:object:generate=false
type IdeConfigCustomDefaulter struct{}

// Default implements admission.CustomDefaulter so a webhook will be registered for the type
func (d *IdeConfigCustomDefaulter) Default(_ context.Context, obj runtime.Object) error {
	ide, ok := obj.(*IdeConfig)
	if !ok {
		return fmt.Errorf("expected an IdeConfig object but got %T", obj)
	}
	ideconfiglog.Info("default", "name", ide.Name)

	ide.Default()

	return nil
}

// Default sets the default values of the spec in place.
func (r *IdeConfig) Default() {
	for index, port := range r.Spec.PortList {
		if port.Protocol == "" {
			r.Spec.PortList[index].Protocol = "TCP"
		}
		if port.TargetPort == 0 {
			r.Spec.PortList[index].TargetPort = port.Port
		}
	}

	if permission := r.Spec.RemoteAccessPolicy(); permission != nil {
		if permission.UseType == "" {
			permission.UseType = UsageModeCreate
		}
		if permission.Scope == "" {
			permission.Scope = PermissionScopeNamespace
		}
	}
}

// +kubebuilder:webhook:path=/validate-amdev-cloriver-io-v1-ideconfig,mutating=false,failurePolicy=fail,sideEffects=None,groups=amdev.cloriver.io,resources=ideconfigs,verbs=create;update,versions=v1,name=videconfig.kb.io,admissionReviewVersions=v1

// IdeConfigCustomValidator rejects specs that cannot be reconciled.
//
// +kubebuilder:object:generate=false
type IdeConfigCustomValidator struct{}

// ValidateCreate implements admission.CustomValidator so a webhook will be registered for the type
func (v *IdeConfigCustomValidator) ValidateCreate(_ context.Context, obj runtime.Object) (admission.Warnings, error) {
	ide, ok := obj.(*IdeConfig)
	if !ok {
		return nil, fmt.Errorf("expected an IdeConfig object but got %T", obj)
	}
	ideconfiglog.Info("validate create", "name", ide.Name)

	return ide.validate()
}

// ValidateUpdate implements admission.CustomValidator so a webhook will be registered for the type
func (v *IdeConfigCustomValidator) ValidateUpdate(_ context.Context, _, newObj runtime.Object) (admission.Warnings, error) {
	ide, ok := newObj.(*IdeConfig)
	if !ok {
		return nil, fmt.Errorf("expected an IdeConfig object but got %T", newObj)
	}
	ideconfiglog.Info("validate update", "name", ide.Name)

	return ide.validate()
}

// ValidateDelete implements admission.CustomValidator so a webhook will be registered for the type
func (v *IdeConfigCustomValidator) ValidateDelete(_ context.Context, _ runtime.Object) (admission.Warnings, error) {
	return nil, nil
}

func (r *IdeConfig) validate() (admission.Warnings, error) {
	var warnings admission.Warnings
	for _, feature := range r.Spec.UnknownFeatures() {
		warnings = append(warnings, fmt.Sprintf("spec.serviceTypes: unknown service type %q is ignored", feature))
	}

	errs := ValidateSpec(&r.Spec)
	if len(errs) == 0 {
		return warnings, nil
	}

	return warnings, apierrors.NewInvalid(GroupVersion.WithKind("IdeConfig").GroupKind(), r.Name, errs)
}
