package lib

import (
	"encoding/json"
)

// EncodeJSONMap serializes a JSON-valued map for storage. A nil map and a map that
// cannot be serialized both encode to the empty string.
func EncodeJSONMap(m map[string]interface{}) string {
	if m == nil {
		return ""
	}

	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeJSONMap is the inverse of EncodeJSONMap. Empty or malformed input decodes
// to nil, which callers treat as "nothing stored".
func DecodeJSONMap(data string) map[string]interface{} {
	if data == "" {
		return nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil
	}
	return m
}
