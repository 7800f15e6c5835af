package resource

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime/schema"

	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
)

// Address locates a resource kind in the dynamic object store.
//
// Version is advisory. The object store client this gateway was built against does
// not reliably restrict listings to the requested version, so callers must never
// rely on Version to scope results and must filter by themselves where the version
// matters. This is a deliberate workaround for that client defect; do not replace
// lookups built on it with version-scoped calls without first confirming the store
// filters correctly.
type Address struct {
	Group   string
	Plural  string
	KindID  string
	Version string
}

// BuildAddress splits a kind id of the form <plural>.<group> on its first dot.
// The group keeps any remaining dots.
func BuildAddress(kindID, version string) (Address, error) {
	plural, group, found := strings.Cut(kindID, ".")
	if !found || plural == "" || group == "" {
		return Address{}, internalerrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid crd id %q: must be in format <plural>.<group>", kindID))
	}

	return Address{
		Group:   group,
		Plural:  plural,
		KindID:  kindID,
		Version: version,
	}, nil
}

func (a Address) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    a.Group,
		Version:  a.Version,
		Resource: a.Plural,
	}
}

func (a Address) String() string {
	return fmt.Sprintf("%s/%s", a.KindID, a.Version)
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging
func (a Address) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("group", a.Group)
	enc.AddString("plural", a.Plural)
	enc.AddString("crdId", a.KindID)
	enc.AddString("version", a.Version)
	return nil
}

// ParseAPIVersion splits an apiVersion of the form <group>/<version>.
func ParseAPIVersion(apiVersion string) (string, string, error) {
	group, version, found := strings.Cut(apiVersion, "/")
	if !found || group == "" || version == "" || strings.Contains(version, "/") {
		return "", "", internalerrors.NewInvalidArgumentError(
			fmt.Sprintf("invalid apiVersion %q: must be in format <group>/<version>", apiVersion))
	}
	return group, version, nil
}
