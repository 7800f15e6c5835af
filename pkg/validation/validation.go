package validation

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
)

const rootField = "(root)"

// Validator checks a resource payload against a schema document.
type Validator interface {
	Validate(document map[string]interface{}, payload map[string]interface{}) ([]types.Violation, error)
}

type schemaValidator struct{}

// NewValidator returns a Validator that compiles a fresh schema on every call, so
// nothing compiled is shared between requests.
func NewValidator() Validator {
	return &schemaValidator{}
}

// Validate returns the violations of payload against document. A nil document is
// the empty schema and accepts everything. Neither argument is modified.
func (v *schemaValidator) Validate(document map[string]interface{}, payload map[string]interface{}) ([]types.Violation, error) {
	if document == nil {
		return []types.Violation{}, nil
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}

	loader := gojsonschema.NewSchemaLoader()
	loader.Draft = DetectDraft(document)
	loader.AutoDetect = false

	schema, err := loader.Compile(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile schema")
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate payload")
	}

	violations := make([]types.Violation, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		violations = append(violations, toViolation(resultErr))
	}

	return violations, nil
}

func toViolation(resultErr gojsonschema.ResultError) types.Violation {
	path := resultErr.Field()
	if path == rootField {
		path = ""
	}

	// required errors are reported on the parent object, point at the missing field instead
	if resultErr.Type() == "required" {
		if property, ok := resultErr.Details()["property"].(string); ok && path != property && !strings.HasSuffix(path, "."+property) {
			path = joinPath(path, property)
		}
	}

	return types.Violation{
		Path:    path,
		Rule:    resultErr.Type(),
		Message: resultErr.Description(),
	}
}

func joinPath(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}
