package resource

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

var ErrInstanceNotFound = errors.New("instance not found")

// Locator finds a live instance by name within a namespace.
type Locator interface {
	Locate(ctx context.Context, addr Address, name, namespace string) (*unstructured.Unstructured, error)
}

type listLocator struct {
	store ObjectStore
}

// NewLocator returns a Locator that lists every instance of the kind and scans for
// the name. Lookups are O(n) in the instances of the kind in the namespace and
// nothing is cached; a direct get is not used because the address version cannot
// be trusted to scope results (see Address).
func NewLocator(store ObjectStore) Locator {
	return &listLocator{
		store: store,
	}
}

func (l *listLocator) Locate(ctx context.Context, addr Address, name, namespace string) (*unstructured.Unstructured, error) {
	items, err := l.store.List(ctx, addr, namespace)
	if err != nil {
		return nil, err
	}

	if obj := FindByName(items, name); obj != nil {
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %s %s/%s", ErrInstanceNotFound, addr.KindID, namespace, name)
}

// FindByName returns the first item whose metadata name equals name, or nil.
func FindByName(items []*unstructured.Unstructured, name string) *unstructured.Unstructured {
	for _, item := range items {
		if item.GetName() == name {
			return item
		}
	}
	return nil
}
