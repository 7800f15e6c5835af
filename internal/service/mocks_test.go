package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/scc-digitalhub/custom-resource-manager/internal/resource"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

// mockAuthorizer is a mock implementation of auth.Authorizer for testing
type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) IsAllowed(ctx context.Context, kindID string) bool {
	args := m.Called(ctx, kindID)
	return args.Bool(0)
}

// mockSchemaService is a mock implementation of SchemaService for testing
type mockSchemaService struct {
	mock.Mock
}

func (m *mockSchemaService) Resolve(ctx context.Context, kindID, version string) (*schema.VersionedSchema, error) {
	args := m.Called(ctx, kindID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.VersionedSchema), args.Error(1)
}

func (m *mockSchemaService) Register(ctx context.Context, s *schema.VersionedSchema) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSchemaService) List(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error) {
	args := m.Called(ctx, kindID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.VersionedSchema), args.Error(1)
}

func (m *mockSchemaService) Delete(ctx context.Context, kindID, version string) error {
	args := m.Called(ctx, kindID, version)
	return args.Error(0)
}

func (m *mockSchemaService) ImportFromCluster(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error) {
	args := m.Called(ctx, kindID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.VersionedSchema), args.Error(1)
}

// mockCRDMetadataStore is a mock implementation of kube.CRDMetadataStore for testing
type mockCRDMetadataStore struct {
	mock.Mock
}

func (m *mockCRDMetadataStore) StoredVersion(ctx context.Context, kindID string) (string, error) {
	args := m.Called(ctx, kindID)
	return args.String(0), args.Error(1)
}

func (m *mockCRDMetadataStore) VersionSchemas(ctx context.Context, kindID string) (map[string]map[string]interface{}, error) {
	args := m.Called(ctx, kindID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[string]interface{}), args.Error(1)
}

func (m *mockCRDMetadataStore) Definitions(ctx context.Context) ([]*unstructured.Unstructured, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*unstructured.Unstructured), args.Error(1)
}

func (m *mockCRDMetadataStore) Definition(ctx context.Context, kindID string) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, kindID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

// mockObjectStore is a mock implementation of resource.ObjectStore for testing
type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) List(ctx context.Context, addr resource.Address, namespace string) ([]*unstructured.Unstructured, error) {
	args := m.Called(ctx, addr, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*unstructured.Unstructured), args.Error(1)
}

func (m *mockObjectStore) Get(ctx context.Context, handle resource.Handle) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockObjectStore) Create(ctx context.Context, addr resource.Address, obj *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, addr, obj, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockObjectStore) Edit(ctx context.Context, handle resource.Handle, mutate resource.Mutator) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, handle, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, handle resource.Handle) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

// assertUntouched fails when any store method was invoked
func (m *mockObjectStore) assertUntouched(t *testing.T) {
	assert.Empty(t, m.Calls)
}
