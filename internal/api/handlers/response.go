package handlers

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/scc-digitalhub/custom-resource-manager/pkg/types"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

const recordIDField = "id"

// withRecordID returns a shallow copy of object carrying id under "id".
// The stored object is left untouched.
func withRecordID(object map[string]interface{}, id string) map[string]interface{} {
	record := make(map[string]interface{}, len(object)+1)
	for key, value := range object {
		record[key] = value
	}
	record[recordIDField] = id
	return record
}

// instanceRecord identifies instances and definitions by metadata.name.
func instanceRecord(obj *unstructured.Unstructured) map[string]interface{} {
	return withRecordID(obj.Object, obj.GetName())
}

func pageRecords(page types.ResourcePage) types.ResourcePage {
	content := make([]map[string]interface{}, 0, len(page.Content))
	for _, object := range page.Content {
		content = append(content, instanceRecord(&unstructured.Unstructured{Object: object}))
	}
	page.Content = content
	return page
}

// schemaRecord identifies a schema by "<crdId>/<version>".
func schemaRecord(s *schema.VersionedSchema) map[string]interface{} {
	return withRecordID(map[string]interface{}{
		"crdId":   s.KindID,
		"version": s.Version,
		"schema":  s.Document,
	}, s.String())
}

func schemaRecords(schemas []*schema.VersionedSchema) []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(schemas))
	for _, s := range schemas {
		records = append(records, schemaRecord(s))
	}
	return records
}

// stripRecordID drops an "id" that merely echoes metadata.name, as clients send
// back records they received.
func stripRecordID(obj *unstructured.Unstructured) {
	if id, ok := obj.Object[recordIDField].(string); ok && id == obj.GetName() {
		delete(obj.Object, recordIDField)
	}
}
