// Package store is the object store the reconciliation core reads and writes.
package store

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Operation tells what CreateOrReplace did.
type Operation string

const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
)

// Store is the get / create-or-replace / delete / list contract against the
// cluster. Implementations do not retry.
type Store interface {
	// Get fills obj with the stored object. It returns false, and no error,
	// when the object is absent.
	Get(ctx context.Context, key client.ObjectKey, obj client.Object) (bool, error)

	// CreateOrReplace creates obj when it carries no resource version and
	// replaces the stored object otherwise.
	CreateOrReplace(ctx context.Context, obj client.Object) (Operation, error)

	// Delete removes obj. It returns false, and no error, when the object was
	// already absent.
	Delete(ctx context.Context, obj client.Object) (bool, error)

	// List fills list with the objects of the namespace matching the labels.
	List(ctx context.Context, list client.ObjectList, namespace string, selector map[string]string) error
}

// KubeStore is a Store backed by a controller-runtime client.
type KubeStore struct {
	client client.Client
}

var _ Store = (*KubeStore)(nil)

// New returns a Store writing through the given client.
func New(c client.Client) *KubeStore {
	return &KubeStore{client: c}
}

func (s *KubeStore) Get(ctx context.Context, key client.ObjectKey, obj client.Object) (bool, error) {
	if err := s.client.Get(ctx, key, obj); err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("get %s: %w", key, err)
	}

	return true, nil
}

func (s *KubeStore) CreateOrReplace(ctx context.Context, obj client.Object) (Operation, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("object", client.ObjectKeyFromObject(obj))

	if obj.GetResourceVersion() == "" {
		log.V(1).Info("creating")
		if err := s.client.Create(ctx, obj); err != nil {
			return "", fmt.Errorf("create %s: %w", client.ObjectKeyFromObject(obj), err)
		}

		return OperationCreated, nil
	}

	log.V(1).Info("replacing", "resourceVersion", obj.GetResourceVersion())
	if err := s.client.Update(ctx, obj); err != nil {
		return "", fmt.Errorf("update %s: %w", client.ObjectKeyFromObject(obj), err)
	}

	return OperationUpdated, nil
}

func (s *KubeStore) Delete(ctx context.Context, obj client.Object) (bool, error) {
	err := s.client.Delete(ctx, obj, client.PropagationPolicy("Background"))
	if err != nil {
		if apierrors.IsNotFound(err) {
			logr.FromContextOrDiscard(ctx).V(1).Info("already absent", "object", client.ObjectKeyFromObject(obj))
			return false, nil
		}

		return false, fmt.Errorf("delete %s: %w", client.ObjectKeyFromObject(obj), err)
	}

	return true, nil
}

func (s *KubeStore) List(ctx context.Context, list client.ObjectList, namespace string, selector map[string]string) error {
	opts := []client.ListOption{client.MatchingLabels(selector)}
	if namespace != "" {
		opts = append(opts, client.InNamespace(namespace))
	}

	if err := s.client.List(ctx, list, opts...); err != nil {
		return fmt.Errorf("list in %q: %w", namespace, err)
	}

	return nil
}
