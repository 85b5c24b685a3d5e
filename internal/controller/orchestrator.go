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
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
	"github.com/CHORUS-TRE/ide-operator/internal/store"
)

// State of a reconciliation.
type State string

const (
	StateStart              State = "Start"
	StateAuthResolved       State = "AuthResolved"
	StateSecretResolved     State = "SecretResolved"
	StateContainersComposed State = "ContainersComposed"
	StateApplied            State = "Applied"
	StateDone               State = "Done"
	StateAborted            State = "Aborted"
)

// ReadyMessage is the status message of a successful reconciliation.
const ReadyMessage = "Created StatefulSet and Service"

// Result is the outcome of one reconciliation.
type Result struct {
	State   State
	Ready   bool
	Message string
	// Err is a *StepError when State is StateAborted.
	Err error
	// Warnings are non fatal findings.
	Warnings []string
	// Changes lists the writes, in order.
	Changes []Change
}

func (r *Result) abort(err *StepError) Result {
	r.State = StateAborted
	r.Ready = false
	r.Message = err.Error()
	r.Err = err

	return *r
}

// Provisioner derives the object graph of a workspace and makes the store
// hold it.
//
// It keeps no state between calls. Calls for the same identity must not run
// concurrently.
type Provisioner struct {
	Store  store.Store
	Scheme *runtime.Scheme
	Config Config
}

// NewProvisioner returns a provisioner writing through the given client.
func NewProvisioner(c client.Client, scheme *runtime.Scheme, config Config) *Provisioner {
	return &Provisioner{
		Store:  store.New(c),
		Scheme: scheme,
		Config: config,
	}
}

func identityOf(ide *amdevv1.IdeConfig) naming.Identity {
	return naming.New(ide.Spec.UserName, ide.Spec.WsName, ide.Spec.AppName)
}

func (p *Provisioner) applier() *DiffApplier {
	return &DiffApplier{Store: p.Store, Scheme: p.Scheme}
}

// apply writes obj, owned by ide, and records the change.
func (p *Provisioner) apply(ctx context.Context, ide *amdevv1.IdeConfig, obj client.Object, result *Result) error {
	change, err := p.applier().Apply(ctx, ide, obj)
	if err != nil {
		return err
	}

	if change.Operation != "" {
		result.Changes = append(result.Changes, change)
	}

	return nil
}

// Reconcile runs the steps from Start to Done, stopping at the first failure.
//
// Objects written before a failure are left in place, the next successful
// call converges them. The result is never requeued by itself.
func (p *Provisioner) Reconcile(ctx context.Context, ide *amdevv1.IdeConfig) Result {
	log := log.FromContext(ctx)

	start := time.Now()
	result := Result{State: StateStart}

	defer func() {
		reconcileDurationSeconds.Observe(time.Since(start).Seconds())
		reconcileTotal.WithLabelValues(string(result.State)).Inc()
	}()

	// The admission defaults may not have run.
	ide = ide.DeepCopy()
	ide.Default()

	if errs := amdevv1.ValidateSpec(&ide.Spec); len(errs) > 0 {
		return result.abort(stepError(StepValidation, ErrValidation, errs.ToAggregate()))
	}

	id := identityOf(ide)

	// Start -> AuthResolved
	auth, err := resolveAuthorization(ide, id, p.Config)
	if err != nil {
		return result.abort(stepError(StepAuthorization, ErrAuthorization, err))
	}

	if err := p.ensureAuthorization(ctx, ide, id, auth, &result); err != nil {
		log.Error(err, "Authorization failed", "serviceAccount", auth.ServiceAccountName)
		return result.abort(stepError(StepAuthorization, ErrAuthorization, err))
	}

	result.State = StateAuthResolved

	// AuthResolved -> SecretResolved
	secret, err := initSecret(ide, id)
	if err != nil {
		return result.abort(stepError(StepSecret, ErrSecret, err))
	}

	if secret != nil {
		if err := p.apply(ctx, ide, secret, &result); err != nil {
			log.Error(err, "Secret failed", "secret", secret.Name)
			return result.abort(stepError(StepSecret, ErrSecret, err))
		}
	}

	result.State = StateSecretResolved

	// SecretResolved -> ContainersComposed
	containers, warnings, err := composeContainers(ide, id, p.Config)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return result.abort(stepError(StepContainers, ErrValidation, err))
	}

	result.State = StateContainersComposed

	// ContainersComposed -> Applied
	if warning := p.checkSharedClaim(ctx, ide.Namespace); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	statefulSet := initStatefulSet(ide, id, containers, auth.ServiceAccountName, p.Config)
	if err := p.apply(ctx, ide, statefulSet, &result); err != nil {
		log.Error(err, "StatefulSet failed", "statefulSet", statefulSet.Name)
		return result.abort(stepError(StepStatefulSet, ErrApply, err))
	}

	service := initService(ide, id)
	if err := p.apply(ctx, ide, service, &result); err != nil {
		log.Error(err, "Service failed", "service", service.Name)
		return result.abort(stepError(StepService, ErrApply, err))
	}

	result.State = StateApplied

	// Applied -> Done
	log.Info("Workspace reconciled",
		"statefulSet", statefulSet.Name,
		"service", service.Name,
		"serviceAccount", auth.ServiceAccountName,
		"changes", len(result.Changes),
	)

	result.State = StateDone
	result.Ready = true
	result.Message = ReadyMessage

	return result
}
