package repository

import (
	"context"

	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
)

// KeyValue represents a key-value pair from etcd
type KeyValue struct {
	Key   string
	Value []byte
}

// ClientWrapper provides a thin generic wrapper over etcd client
type ClientWrapper interface {
	Put(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete reports whether a key was removed
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string, limit int) ([]KeyValue, error)
}

type clientWrapper struct {
	logger *zap.Logger
	client *clientv3.Client
}

func NewClientWrapper(logger *zap.Logger, client *clientv3.Client) ClientWrapper {
	return &clientWrapper{
		logger: logger,
		client: client,
	}
}

func (c *clientWrapper) Put(ctx context.Context, key string, value string) error {
	if _, err := c.client.Put(ctx, key, value); err != nil {
		return errors.Wrap(err, "failed to put to etcd")
	}
	return nil
}

func (c *clientWrapper) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.client.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get from etcd")
	}

	if len(resp.Kvs) == 0 {
		return nil, internalerrors.NewNotFoundError("key " + key + " not found")
	}

	return resp.Kvs[0].Value, nil
}

func (c *clientWrapper) Delete(ctx context.Context, key string) (bool, error) {
	resp, err := c.client.Delete(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete from etcd")
	}
	return resp.Deleted > 0, nil
}

func (c *clientWrapper) List(ctx context.Context, prefix string, limit int) ([]KeyValue, error) {
	opts := []clientv3.OpOption{clientv3.WithPrefix(), clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend)}

	if limit > 0 {
		opts = append(opts, clientv3.WithLimit(int64(limit)))
	}

	resp, err := c.client.Get(ctx, prefix, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list from etcd")
	}

	kvs := make([]KeyValue, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		kvs = append(kvs, KeyValue{
			Key:   string(kv.Key),
			Value: kv.Value,
		})
	}

	return kvs, nil
}
