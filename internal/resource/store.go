package resource

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Mutator edits a freshly fetched copy of an instance before it is written back.
type Mutator func(obj *unstructured.Unstructured) error

// ObjectStore is the generic resource API of the dynamic object store.
type ObjectStore interface {
	// List returns every instance of the addressed kind in namespace. The address
	// version is advisory, see Address.
	List(ctx context.Context, addr Address, namespace string) ([]*unstructured.Unstructured, error)
	Get(ctx context.Context, handle Handle) (*unstructured.Unstructured, error)
	Create(ctx context.Context, addr Address, obj *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error)
	// Edit fetches the instance, applies mutate and submits it back with the
	// fetched resource version, so concurrent writers surface as conflicts.
	Edit(ctx context.Context, handle Handle, mutate Mutator) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, handle Handle) error
}
