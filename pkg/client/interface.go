package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

// Object is a custom resource instance as exchanged with the API.
type Object = map[string]interface{}

// Client defines the interface for interacting with the custom resource manager API
type Client interface {
	ListResources(ctx context.Context, crdID string, opts ListOptions) (*types.ResourcePage, error)
	GetResource(ctx context.Context, crdID, namespace, name string) (Object, error)
	CreateResource(ctx context.Context, crdID, namespace string, resource Object) (Object, error)
	UpdateResource(ctx context.Context, crdID, namespace, name string, resource Object) (Object, error)
	// PatchResource sends an RFC 6902 JSON patch document.
	PatchResource(ctx context.Context, crdID, namespace, name string, patch []byte) (Object, error)
	DeleteResource(ctx context.Context, crdID, namespace, name string) error

	// ListDefinitions pages over the resource kinds visible to the caller. Namespace is ignored.
	ListDefinitions(ctx context.Context, opts ListOptions) (*types.ResourcePage, error)
	GetDefinition(ctx context.Context, crdID string) (Object, error)

	ListSchemas(ctx context.Context, crdID string) ([]*schema.VersionedSchema, error)
	GetSchema(ctx context.Context, crdID, version string) (*schema.VersionedSchema, error)
	PutSchema(ctx context.Context, crdID, version string, document map[string]interface{}) (*schema.VersionedSchema, error)
	DeleteSchema(ctx context.Context, crdID, version string) error
}

// ListOptions narrows and orders a resource listing. Zero values use server defaults.
type ListOptions struct {
	Namespace string
	Page      int
	Size      int
	// Sort is "<path>,<asc|desc>", e.g. "metadata.name,desc"
	Sort string
}

// Config holds configuration for the client
type Config struct {
	BaseURL string
	Timeout int
	Headers map[string]string
	TLS     TLSConfig
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	InsecureSkipVerify bool
	CertFile           string
	KeyFile            string
	CAFile             string
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Violations []types.Violation
}

func (e *APIError) Error() string {
	if len(e.Violations) == 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}

	violations := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		violations = append(violations, v.String())
	}
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, strings.Join(violations, "; "))
}
