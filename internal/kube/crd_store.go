package kube

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/lib"
)

// CRDMetadataStore reads resource kind definitions from the cluster.
type CRDMetadataStore interface {
	// StoredVersion returns the canonical version of a kind.
	StoredVersion(ctx context.Context, kindID string) (string, error)
	// VersionSchemas returns the openAPIV3Schema of each served version that declares one.
	VersionSchemas(ctx context.Context, kindID string) (map[string]map[string]interface{}, error)
	// Definitions returns every resource kind definition of the cluster.
	Definitions(ctx context.Context) ([]*unstructured.Unstructured, error)
	Definition(ctx context.Context, kindID string) (*unstructured.Unstructured, error)
}

type crdMetadataStore struct {
	logger *zap.Logger
	client apiextensionsclientset.Interface
}

func NewCRDMetadataStore(logger *zap.Logger, client apiextensionsclientset.Interface) CRDMetadataStore {
	return &crdMetadataStore{
		logger: logger,
		client: client,
	}
}

func (s *crdMetadataStore) StoredVersion(ctx context.Context, kindID string) (string, error) {
	crd, err := s.definition(ctx, kindID)
	if err != nil {
		return "", err
	}

	for _, version := range crd.Spec.Versions {
		if version.Storage {
			return version.Name, nil
		}
	}

	if stored := crd.Status.StoredVersions; len(stored) > 0 {
		return stored[len(stored)-1], nil
	}

	return "", internalerrors.NewNotFoundError(fmt.Sprintf("resource kind %s has no stored version", kindID))
}

func (s *crdMetadataStore) VersionSchemas(ctx context.Context, kindID string) (map[string]map[string]interface{}, error) {
	crd, err := s.definition(ctx, kindID)
	if err != nil {
		return nil, err
	}

	schemas := make(map[string]map[string]interface{}, len(crd.Spec.Versions))
	for _, version := range crd.Spec.Versions {
		if version.Schema == nil || version.Schema.OpenAPIV3Schema == nil {
			continue
		}

		data, err := json.Marshal(version.Schema.OpenAPIV3Schema)
		if err != nil {
			return nil, internalerrors.NewMarshalingError(
				fmt.Sprintf("failed to marshal schema of %s/%s", kindID, version.Name))
		}

		document := lib.DecodeJSONMap(string(data))
		if document == nil {
			s.logger.Warn("Skipping undecodable version schema",
				zap.String("crdId", kindID),
				zap.String("version", version.Name))
			continue
		}
		schemas[version.Name] = document
	}

	return schemas, nil
}

func (s *crdMetadataStore) Definitions(ctx context.Context) ([]*unstructured.Unstructured, error) {
	list, err := s.client.ApiextensionsV1().CustomResourceDefinitions().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classifyError("list resource kinds", err)
	}

	definitions := make([]*unstructured.Unstructured, 0, len(list.Items))
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i])
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, obj)
	}
	return definitions, nil
}

func (s *crdMetadataStore) Definition(ctx context.Context, kindID string) (*unstructured.Unstructured, error) {
	crd, err := s.definition(ctx, kindID)
	if err != nil {
		return nil, err
	}
	return toUnstructured(crd)
}

func (s *crdMetadataStore) definition(ctx context.Context, kindID string) (*apiextensionsv1.CustomResourceDefinition, error) {
	crd, err := s.client.ApiextensionsV1().CustomResourceDefinitions().Get(ctx, kindID, metav1.GetOptions{})
	if err != nil {
		return nil, classifyError("get resource kind "+kindID, err)
	}
	return crd, nil
}

// toUnstructured converts a typed definition. Typed clients drop the type meta,
// so it is set explicitly.
func toUnstructured(crd *apiextensionsv1.CustomResourceDefinition) (*unstructured.Unstructured, error) {
	object, err := runtime.DefaultUnstructuredConverter.ToUnstructured(crd)
	if err != nil {
		return nil, internalerrors.NewMarshalingError(
			fmt.Sprintf("failed to convert resource kind %s: %v", crd.Name, err))
	}

	obj := &unstructured.Unstructured{Object: object}
	obj.SetGroupVersionKind(apiextensionsv1.SchemeGroupVersion.WithKind("CustomResourceDefinition"))
	return obj, nil
}
