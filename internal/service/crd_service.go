package service

import (
	"context"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/scc-digitalhub/custom-resource-manager/internal/auth"
	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/kube"
)

// CRDService gives read-only access to resource kind definitions. Only kinds the
// authorizer allows are visible.
type CRDService interface {
	List(ctx context.Context) ([]*unstructured.Unstructured, error)
	Get(ctx context.Context, kindID string) (*unstructured.Unstructured, error)
}

type crdService struct {
	logger     *zap.Logger
	authorizer auth.Authorizer
	crds       kube.CRDMetadataStore
}

func NewCRDService(logger *zap.Logger, authorizer auth.Authorizer, crds kube.CRDMetadataStore) CRDService {
	return &crdService{
		logger:     logger,
		authorizer: authorizer,
		crds:       crds,
	}
}

func (s *crdService) List(ctx context.Context) ([]*unstructured.Unstructured, error) {
	definitions, err := s.crds.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*unstructured.Unstructured, 0, len(definitions))
	for _, definition := range definitions {
		if s.authorizer.IsAllowed(ctx, definition.GetName()) {
			visible = append(visible, definition)
		}
	}

	s.logger.Debug("Listed resource kinds",
		zap.Int("total", len(definitions)),
		zap.Int("visible", len(visible)))

	return visible, nil
}

func (s *crdService) Get(ctx context.Context, kindID string) (*unstructured.Unstructured, error) {
	if !s.authorizer.IsAllowed(ctx, kindID) {
		return nil, internalerrors.NewPermissionDeniedError(kindID)
	}
	return s.crds.Definition(ctx, kindID)
}
