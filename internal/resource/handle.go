package resource

import (
	"fmt"

	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Handle points at one live instance in the object store.
type Handle struct {
	Resource  schema.GroupVersionResource
	Namespace string
	Name      string
}

// HandleFor builds the handle of a located instance. The version comes from the
// instance itself rather than from the advisory address version.
func HandleFor(addr Address, obj *unstructured.Unstructured) (Handle, error) {
	version := addr.Version
	if apiVersion := obj.GetAPIVersion(); apiVersion != "" {
		_, v, err := ParseAPIVersion(apiVersion)
		if err != nil {
			return Handle{}, err
		}
		version = v
	}

	return Handle{
		Resource: schema.GroupVersionResource{
			Group:    addr.Group,
			Version:  version,
			Resource: addr.Plural,
		},
		Namespace: obj.GetNamespace(),
		Name:      obj.GetName(),
	}, nil
}

func (h Handle) String() string {
	return fmt.Sprintf("%s/%s/%s", h.Resource.String(), h.Namespace, h.Name)
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging
func (h Handle) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("group", h.Resource.Group)
	enc.AddString("version", h.Resource.Version)
	enc.AddString("resource", h.Resource.Resource)
	enc.AddString("namespace", h.Namespace)
	enc.AddString("name", h.Name)
	return nil
}
