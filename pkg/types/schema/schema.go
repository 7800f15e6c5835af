package schema

import "fmt"

// VersionedSchema is the schema document governing one version of a resource kind.
type VersionedSchema struct {
	KindID   string                 `json:"crdId" validate:"required"`
	Version  string                 `json:"version" validate:"required"`
	Document map[string]interface{} `json:"schema"`
}

func (s *VersionedSchema) String() string {
	return fmt.Sprintf("%s/%s", s.KindID, s.Version)
}
