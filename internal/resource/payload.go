package resource

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

var identityFields = map[string]struct{}{
	"apiVersion": {},
	"kind":       {},
	"metadata":   {},
}

// Payload returns a copy of the instance's property bag: every top-level field
// except apiVersion, kind and metadata.
func Payload(obj *unstructured.Unstructured) map[string]interface{} {
	payload := map[string]interface{}{}
	if obj == nil {
		return payload
	}

	for key, value := range obj.Object {
		if _, identity := identityFields[key]; identity {
			continue
		}
		payload[key] = runtime.DeepCopyJSONValue(value)
	}
	return payload
}

// ReplacePayload swaps the property bag of dst for the one of src. Identity and
// metadata of dst are left untouched.
func ReplacePayload(dst, src *unstructured.Unstructured) {
	if dst.Object == nil {
		dst.Object = map[string]interface{}{}
	}

	for key := range dst.Object {
		if _, identity := identityFields[key]; !identity {
			delete(dst.Object, key)
		}
	}

	for key, value := range Payload(src) {
		dst.Object[key] = value
	}
}
