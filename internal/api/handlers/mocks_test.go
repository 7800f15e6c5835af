package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

// mockResourceService is a mock implementation of service.CustomResourceService for testing
type mockResourceService struct {
	mock.Mock
}

func (m *mockResourceService) List(ctx context.Context, kindID, namespace string) ([]*unstructured.Unstructured, error) {
	args := m.Called(ctx, kindID, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*unstructured.Unstructured), args.Error(1)
}

func (m *mockResourceService) Get(ctx context.Context, kindID, id, namespace string) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, kindID, id, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockResourceService) Create(ctx context.Context, kindID string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, kindID, payload, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockResourceService) Update(ctx context.Context, kindID, id string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, kindID, id, payload, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockResourceService) Patch(ctx context.Context, kindID, id string, patch []byte, namespace string) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, kindID, id, patch, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

func (m *mockResourceService) Delete(ctx context.Context, kindID, id, namespace string) error {
	args := m.Called(ctx, kindID, id, namespace)
	return args.Error(0)
}

// mockSchemaService is a mock implementation of service.SchemaService for testing
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

// mockAuthorizer is a mock implementation of auth.Authorizer for testing
type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) IsAllowed(ctx context.Context, kindID string) bool {
	args := m.Called(ctx, kindID)
	return args.Bool(0)
}
