package service

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/kube"
	"github.com/scc-digitalhub/custom-resource-manager/internal/repository"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/validation"
)

type SchemaService interface {
	// Resolve returns the schema registered for exactly (kindID, version).
	Resolve(ctx context.Context, kindID, version string) (*schema.VersionedSchema, error)
	Register(ctx context.Context, s *schema.VersionedSchema) error
	List(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error)
	Delete(ctx context.Context, kindID, version string) error
	// ImportFromCluster registers the openAPIV3Schema of every version of a live kind.
	ImportFromCluster(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error)
}

type schemaService struct {
	logger *zap.Logger
	repo   repository.SchemaRepository
	crds   kube.CRDMetadataStore
}

func NewSchemaService(logger *zap.Logger, repo repository.SchemaRepository, crds kube.CRDMetadataStore) SchemaService {
	return &schemaService{
		logger: logger,
		repo:   repo,
		crds:   crds,
	}
}

func (s *schemaService) Resolve(ctx context.Context, kindID, version string) (*schema.VersionedSchema, error) {
	return s.repo.Get(ctx, kindID, version)
}

func (s *schemaService) Register(ctx context.Context, vs *schema.VersionedSchema) error {
	if err := validation.ValidateKindID(vs.KindID); err != nil {
		return asInvalidArgument(err)
	}
	if err := validation.ValidateVersion(vs.Version); err != nil {
		return asInvalidArgument(err)
	}
	if err := validation.CheckSchemaDocument(vs.Document); err != nil {
		return asInvalidArgument(err)
	}

	return s.repo.Put(ctx, vs)
}

func (s *schemaService) List(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error) {
	if kindID != "" {
		if err := validation.ValidateKindID(kindID); err != nil {
			return nil, asInvalidArgument(err)
		}
	}
	return s.repo.List(ctx, kindID)
}

func (s *schemaService) Delete(ctx context.Context, kindID, version string) error {
	return s.repo.Delete(ctx, kindID, version)
}

func (s *schemaService) ImportFromCluster(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error) {
	if err := validation.ValidateKindID(kindID); err != nil {
		return nil, asInvalidArgument(err)
	}

	documents, err := s.crds.VersionSchemas(ctx, kindID)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, internalerrors.NewNotFoundError("resource kind " + kindID + " declares no version schemas")
	}

	imported := make([]*schema.VersionedSchema, 0, len(documents))
	for version, document := range documents {
		vs := &schema.VersionedSchema{
			KindID:   kindID,
			Version:  version,
			Document: document,
		}
		if err := s.Register(ctx, vs); err != nil {
			return imported, err
		}
		imported = append(imported, vs)

		s.logger.Info("Imported version schema",
			zap.String("crdId", kindID),
			zap.String("version", version))
	}

	return imported, nil
}

func asInvalidArgument(err error) error {
	var validationErr *validation.ValidationError
	if stderrors.As(err, &validationErr) {
		return internalerrors.NewInvalidArgumentError(validationErr.Message)
	}
	return err
}
