package handlers

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"
	"sigs.k8s.io/yaml"

	apierrors "github.com/scc-digitalhub/custom-resource-manager/internal/api/errors"
	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/validation"
)

var yamlContentTypes = map[string]struct{}{
	"application/yaml":   {},
	"application/x-yaml": {},
	"text/yaml":          {},
}

// decodeObject reads a JSON or YAML request body holding a single object.
// Numbers decode to int64 or float64.
func decodeObject(c *gin.Context) (map[string]interface{}, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, apierrors.NewSerializationError("reading request body", err)
	}

	if isYAML(c.GetHeader("Content-Type")) {
		raw, err = yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, apierrors.NewSerializationError("converting YAML body", err)
		}
	}

	var object map[string]interface{}
	if err := utiljson.Unmarshal(raw, &object); err != nil {
		return nil, apierrors.NewSerializationError("decoding request body", err)
	}
	if object == nil {
		return nil, apierrors.NewSerializationError("decoding request body", fmt.Errorf("body must be an object"))
	}

	return object, nil
}

func decodeInstance(c *gin.Context) (*unstructured.Unstructured, error) {
	object, err := decodeObject(c)
	if err != nil {
		return nil, err
	}
	obj := &unstructured.Unstructured{Object: object}
	stripRecordID(obj)
	return obj, nil
}

func isYAML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	_, ok := yamlContentTypes[strings.ToLower(mediaType)]
	return ok
}

// namespaceParam returns the namespace query parameter or the configured default.
func namespaceParam(c *gin.Context, fallback string) (string, error) {
	namespace := c.DefaultQuery("namespace", fallback)
	if err := validation.ValidateNamespace(namespace); err != nil {
		return "", internalerrors.NewInvalidArgumentError(err.Error())
	}
	return namespace, nil
}

func nameParam(c *gin.Context, key string) (string, error) {
	name := c.Param(key)
	if err := validation.ValidateName(name); err != nil {
		return "", internalerrors.NewInvalidArgumentError(err.Error())
	}
	return name, nil
}
