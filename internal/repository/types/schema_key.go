package types

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// SchemaKey identifies one versioned schema of a resource kind
type SchemaKey struct {
	KindID  string
	Version string
}

func NewSchemaKey(kindID, version string) SchemaKey {
	return SchemaKey{
		KindID:  kindID,
		Version: version,
	}
}

// ToKey returns the key relative to the schema prefix
func (k SchemaKey) ToKey() string {
	return fmt.Sprintf("/%s/%s", k.KindID, k.Version)
}

func (k SchemaKey) String() string {
	return fmt.Sprintf("%s/%s", k.KindID, k.Version)
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging
func (k SchemaKey) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("crdId", k.KindID)
	enc.AddString("version", k.Version)
	return nil
}

// SchemaKindKey addresses every schema of one kind
type SchemaKindKey struct {
	KindID string
}

func (k SchemaKindKey) ToKey() string {
	if k.KindID == "" {
		return "/"
	}
	return fmt.Sprintf("/%s/", k.KindID)
}

// ParseSchemaKey parses a relative key produced by SchemaKey.ToKey
func ParseSchemaKey(key string) (SchemaKey, error) {
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return SchemaKey{}, fmt.Errorf("invalid schema key format: expected exactly 2 parts, got %q", key)
	}

	return SchemaKey{
		KindID:  parts[0],
		Version: parts[1],
	}, nil
}
