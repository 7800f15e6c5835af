package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxKindIDLength    = 253
	maxNamespaceLength = 63
	maxNameLength      = 253
)

var (
	reDNS1123Subdomain = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*$`)
	reDNS1123Label     = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)
	reVersion          = regexp.MustCompile(`^v[0-9]+((alpha|beta)[0-9]+)?$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
	}
}

// ValidateKindID checks that a resource kind id has the <plural>.<group> shape.
func ValidateKindID(kindID string) error {
	if kindID == "" {
		return NewValidationError("crd id cannot be empty")
	}

	if len(kindID) > maxKindIDLength || !reDNS1123Subdomain.MatchString(kindID) {
		return NewValidationError(fmt.Sprintf("invalid crd id %q: must be a DNS subdomain (RFC1123) up to %d chars", kindID, maxKindIDLength))
	}

	if !strings.Contains(kindID, ".") {
		return NewValidationError(fmt.Sprintf("invalid crd id %q: must be in format <plural>.<group>", kindID))
	}

	return nil
}

func ValidateVersion(version string) error {
	if version == "" {
		return NewValidationError("version cannot be empty")
	}

	// Allow v{X}alpha{Y}, v{X}beta{Y}, or v{X} where X and Y are numbers
	if !reVersion.MatchString(version) {
		return NewValidationError(fmt.Sprintf("invalid version %q: must be in format v{X}, v{X}alpha{Y}, or v{X}beta{Y} where X and Y are numbers", version))
	}

	return nil
}

func ValidateNamespace(ns string) error {
	if len(ns) > maxNamespaceLength || !reDNS1123Label.MatchString(ns) {
		return NewValidationError(fmt.Sprintf("invalid namespace %q: must be a DNS-1123 label up to %d chars", ns, maxNamespaceLength))
	}
	return nil
}

func ValidateName(name string) error {
	if name == "" {
		return NewValidationError("name cannot be empty")
	}

	if len(name) > maxNameLength || !reDNS1123Subdomain.MatchString(name) {
		return NewValidationError(fmt.Sprintf("invalid name %q: must be a DNS subdomain (RFC1123) up to %d chars", name, maxNameLength))
	}
	return nil
}
