package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/xeipuuv/gojsonschema"
)

const schemaMarkerKey = "$schema"

var draftsByMarker = map[string]gojsonschema.Draft{
	"http://json-schema.org/draft-04/schema": gojsonschema.Draft4,
	"http://json-schema.org/draft-06/schema": gojsonschema.Draft6,
	"http://json-schema.org/draft-07/schema": gojsonschema.Draft7,
}

// DetectDraft picks the dialect declared by the document's $schema marker.
// Documents without a marker, or with one the validator does not know, are
// compiled in hybrid mode.
func DetectDraft(document map[string]interface{}) gojsonschema.Draft {
	if draft, ok := draftsByMarker[normalizeMarker(document)]; ok {
		return draft
	}
	return gojsonschema.Hybrid
}

func normalizeMarker(document map[string]interface{}) string {
	marker, _ := document[schemaMarkerKey].(string)
	marker = strings.TrimSuffix(strings.TrimSpace(marker), "#")
	return strings.Replace(marker, "https://", "http://", 1)
}

// CheckSchemaDocument makes sure a schema document compiles under the dialect it
// declares, including meta-validation of the document itself. Only draft-04, -06
// and -07 may be declared; unmarked documents are checked as draft-07, which is
// what payload validation enforces.
func CheckSchemaDocument(document map[string]interface{}) error {
	if document == nil {
		return NewValidationError("schema cannot be nil")
	}

	if marker := normalizeMarker(document); marker != "" {
		if _, ok := draftsByMarker[marker]; !ok {
			return NewValidationError(fmt.Sprintf("unsupported schema dialect %q", document[schemaMarkerKey]))
		}
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return NewValidationError("failed to marshal schema: " + err.Error())
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return NewValidationError("failed to unmarshal schema: " + err.Error())
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	if err := c.AddResource("schema.json", doc); err != nil {
		return NewValidationError(fmt.Sprintf("invalid JSON schema: %v", err))
	}

	if _, err := c.Compile("schema.json"); err != nil {
		return NewValidationError(fmt.Sprintf("invalid JSON schema: %v", err))
	}

	return nil
}
