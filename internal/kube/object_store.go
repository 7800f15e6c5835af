package kube

import (
	"context"

	"go.uber.org/zap"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"

	"github.com/scc-digitalhub/custom-resource-manager/internal/resource"
)

type objectStore struct {
	logger *zap.Logger
	client dynamic.Interface
}

// NewObjectStore returns a resource.ObjectStore backed by the dynamic client.
// Every error leaving the store is classified into the gateway taxonomy.
func NewObjectStore(logger *zap.Logger, client dynamic.Interface) resource.ObjectStore {
	return &objectStore{
		logger: logger,
		client: client,
	}
}

func (s *objectStore) List(ctx context.Context, addr resource.Address, namespace string) ([]*unstructured.Unstructured, error) {
	list, err := s.client.Resource(addr.GroupVersionResource()).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classifyError("list "+addr.KindID, err)
	}

	items := make([]*unstructured.Unstructured, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, &list.Items[i])
	}

	s.logger.Debug("Listed instances",
		zap.Object("address", addr),
		zap.String("namespace", namespace),
		zap.Int("count", len(items)))

	return items, nil
}

func (s *objectStore) Get(ctx context.Context, handle resource.Handle) (*unstructured.Unstructured, error) {
	obj, err := s.client.Resource(handle.Resource).Namespace(handle.Namespace).Get(ctx, handle.Name, metav1.GetOptions{})
	if err != nil {
		return nil, classifyError("get "+handle.String(), err)
	}
	return obj, nil
}

func (s *objectStore) Create(ctx context.Context, addr resource.Address, obj *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	submitted := obj.DeepCopy()
	if namespace != "" {
		submitted.SetNamespace(namespace)
	}

	created, err := s.client.Resource(addr.GroupVersionResource()).Namespace(namespace).Create(ctx, submitted, metav1.CreateOptions{})
	if err != nil {
		return nil, classifyError("create "+addr.KindID, err)
	}

	s.logger.Info("Instance created",
		zap.Object("address", addr),
		zap.String("namespace", created.GetNamespace()),
		zap.String("name", created.GetName()))

	return created, nil
}

func (s *objectStore) Edit(ctx context.Context, handle resource.Handle, mutate resource.Mutator) (*unstructured.Unstructured, error) {
	current, err := s.Get(ctx, handle)
	if err != nil {
		return nil, err
	}

	edited := current.DeepCopy()
	if err := mutate(edited); err != nil {
		return nil, err
	}
	// the fetched token goes back unchanged; a concurrent writer turns this into a conflict
	edited.SetResourceVersion(current.GetResourceVersion())

	updated, err := s.client.Resource(handle.Resource).Namespace(handle.Namespace).Update(ctx, edited, metav1.UpdateOptions{})
	if err != nil {
		return nil, classifyError("update "+handle.String(), err)
	}

	s.logger.Info("Instance updated",
		zap.Object("handle", handle),
		zap.String("resourceVersion", updated.GetResourceVersion()))

	return updated, nil
}

func (s *objectStore) Delete(ctx context.Context, handle resource.Handle) error {
	err := s.client.Resource(handle.Resource).Namespace(handle.Namespace).Delete(ctx, handle.Name, metav1.DeleteOptions{})
	if err != nil {
		return classifyError("delete "+handle.String(), err)
	}

	s.logger.Info("Instance deleted", zap.Object("handle", handle))
	return nil
}
