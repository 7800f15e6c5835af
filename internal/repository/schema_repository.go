package repository

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/lib"
	"github.com/scc-digitalhub/custom-resource-manager/internal/repository/types"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

// SchemaRepository persists versioned schema documents keyed by (crdId, version).
type SchemaRepository interface {
	Get(ctx context.Context, kindID, version string) (*schema.VersionedSchema, error)
	Put(ctx context.Context, s *schema.VersionedSchema) error
	Delete(ctx context.Context, kindID, version string) error
	// List returns the schemas of kindID, or of every kind when kindID is empty.
	List(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error)
}

type schemaRepository struct {
	logger *zap.Logger
	client ClientWrapper
	prefix string
}

func NewSchemaRepository(logger *zap.Logger, client ClientWrapper, cfg *config.Config) SchemaRepository {
	return &schemaRepository{
		logger: logger,
		client: client,
		prefix: strings.TrimSuffix(cfg.ETCD.Prefix, "/"),
	}
}

func (r *schemaRepository) Get(ctx context.Context, kindID, version string) (*schema.VersionedSchema, error) {
	key := types.NewSchemaKey(kindID, version)

	data, err := r.client.Get(ctx, r.dbKey(key))
	if err != nil {
		if internalerrors.IsNotFound(err) {
			return nil, internalerrors.NewNotFoundError(fmt.Sprintf("schema %s not found", key))
		}
		return nil, err
	}

	return r.decode(key, data), nil
}

func (r *schemaRepository) Put(ctx context.Context, s *schema.VersionedSchema) error {
	key := types.NewSchemaKey(s.KindID, s.Version)

	data := lib.EncodeJSONMap(s.Document)
	if data == "" {
		return internalerrors.NewMarshalingError(fmt.Sprintf("failed to encode schema %s", key))
	}

	if err := r.client.Put(ctx, r.dbKey(key), data); err != nil {
		return err
	}

	r.logger.Info("Schema stored successfully", zap.Object("schemaKey", key))
	return nil
}

func (r *schemaRepository) Delete(ctx context.Context, kindID, version string) error {
	key := types.NewSchemaKey(kindID, version)

	deleted, err := r.client.Delete(ctx, r.dbKey(key))
	if err != nil {
		return err
	}
	if !deleted {
		return internalerrors.NewNotFoundError(fmt.Sprintf("schema %s not found", key))
	}

	r.logger.Info("Schema deleted successfully", zap.Object("schemaKey", key))
	return nil
}

func (r *schemaRepository) List(ctx context.Context, kindID string) ([]*schema.VersionedSchema, error) {
	kvs, err := r.client.List(ctx, r.prefix+types.SchemaKindKey{KindID: kindID}.ToKey(), 0)
	if err != nil {
		return nil, err
	}

	schemas := make([]*schema.VersionedSchema, 0, len(kvs))
	for _, kv := range kvs {
		key, err := types.ParseSchemaKey(strings.TrimPrefix(kv.Key, r.prefix))
		if err != nil {
			r.logger.Warn("Skipping unrecognized schema key", zap.String("key", kv.Key), zap.Error(err))
			continue
		}
		schemas = append(schemas, r.decode(key, kv.Value))
	}

	return schemas, nil
}

func (r *schemaRepository) dbKey(key types.DbKey) string {
	return r.prefix + key.ToKey()
}

// decode never fails: an undecodable document is kept as an absent one, which
// validates like the empty schema.
func (r *schemaRepository) decode(key types.SchemaKey, data []byte) *schema.VersionedSchema {
	document := lib.DecodeJSONMap(string(data))
	if document == nil {
		r.logger.Warn("Stored schema document could not be decoded", zap.Object("schemaKey", key))
	}

	return &schema.VersionedSchema{
		KindID:   key.KindID,
		Version:  key.Version,
		Document: document,
	}
}
