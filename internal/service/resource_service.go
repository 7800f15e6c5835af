package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"

	"github.com/scc-digitalhub/custom-resource-manager/internal/auth"
	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/kube"
	"github.com/scc-digitalhub/custom-resource-manager/internal/resource"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/validation"
)

// Patches may only touch the property bag.
var restrictedPatchPaths = []string{
	"/apiVersion",
	"/kind",
	"/metadata",
}

// CustomResourceService gates every instance operation behind authorization and,
// for writes, schema validation.
//
// Reads and deletes resolve the schema of the kind's stored version, while creates
// and updates resolve the schema of the version declared by the payload. The two
// may differ for multi-version kinds.
type CustomResourceService interface {
	List(ctx context.Context, kindID, namespace string) ([]*unstructured.Unstructured, error)
	Get(ctx context.Context, kindID, id, namespace string) (*unstructured.Unstructured, error)
	Create(ctx context.Context, kindID string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error)
	Update(ctx context.Context, kindID, id string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error)
	// Patch applies an RFC 6902 patch to the instance and stores the result with
	// Update semantics.
	Patch(ctx context.Context, kindID, id string, patch []byte, namespace string) (*unstructured.Unstructured, error)
	// Delete removes the instance. Deleting an absent instance is not an error.
	Delete(ctx context.Context, kindID, id, namespace string) error
}

type customResourceService struct {
	logger     *zap.Logger
	authorizer auth.Authorizer
	schemas    SchemaService
	crds       kube.CRDMetadataStore
	store      resource.ObjectStore
	locator    resource.Locator
	validator  validation.Validator
}

func NewCustomResourceService(
	logger *zap.Logger,
	authorizer auth.Authorizer,
	schemas SchemaService,
	crds kube.CRDMetadataStore,
	store resource.ObjectStore,
	validator validation.Validator,
) CustomResourceService {
	return &customResourceService{
		logger:     logger,
		authorizer: authorizer,
		schemas:    schemas,
		crds:       crds,
		store:      store,
		locator:    resource.NewLocator(store),
		validator:  validator,
	}
}

func (s *customResourceService) List(ctx context.Context, kindID, namespace string) ([]*unstructured.Unstructured, error) {
	if err := s.authorize(ctx, kindID); err != nil {
		return nil, err
	}

	addr, err := s.storedAddress(ctx, kindID)
	if err != nil {
		return nil, err
	}

	return s.store.List(ctx, addr, namespace)
}

func (s *customResourceService) Get(ctx context.Context, kindID, id, namespace string) (*unstructured.Unstructured, error) {
	if err := s.authorize(ctx, kindID); err != nil {
		return nil, err
	}
	return s.get(ctx, kindID, id, namespace)
}

func (s *customResourceService) Create(ctx context.Context, kindID string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	if err := s.authorize(ctx, kindID); err != nil {
		return nil, err
	}

	version, err := targetVersion(kindID, payload)
	if err != nil {
		return nil, err
	}

	if err := s.validate(ctx, kindID, version, payload); err != nil {
		return nil, err
	}

	addr, err := resource.BuildAddress(kindID, version)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, addr, payload, namespace)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Custom resource created",
		zap.Object("address", addr),
		zap.String("namespace", namespace),
		zap.String("name", created.GetName()))

	return created, nil
}

func (s *customResourceService) Update(ctx context.Context, kindID, id string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	if err := s.authorize(ctx, kindID); err != nil {
		return nil, err
	}
	return s.update(ctx, kindID, id, payload, namespace)
}

func (s *customResourceService) Patch(ctx context.Context, kindID, id string, patchData []byte, namespace string) (*unstructured.Unstructured, error) {
	if err := s.authorize(ctx, kindID); err != nil {
		return nil, err
	}

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return nil, internalerrors.NewInvalidArgumentError("failed to decode patch: " + err.Error())
	}

	if err := validatePatchOperations(patch); err != nil {
		return nil, err
	}

	current, err := s.get(ctx, kindID, id, namespace)
	if err != nil {
		return nil, err
	}

	currentJSON, err := json.Marshal(current.Object)
	if err != nil {
		return nil, internalerrors.NewMarshalingError("failed to marshal existing resource")
	}

	patchedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return nil, internalerrors.NewInvalidArgumentError("failed to apply patch: " + err.Error())
	}

	patched := &unstructured.Unstructured{}
	if err := utiljson.Unmarshal(patchedJSON, &patched.Object); err != nil {
		return nil, internalerrors.NewMarshalingError("failed to unmarshal patched resource")
	}

	return s.update(ctx, kindID, id, patched, namespace)
}

func (s *customResourceService) Delete(ctx context.Context, kindID, id, namespace string) error {
	if err := s.authorize(ctx, kindID); err != nil {
		return err
	}

	addr, err := s.storedAddress(ctx, kindID)
	if err != nil {
		return err
	}

	obj, err := s.locator.Locate(ctx, addr, id, namespace)
	if stderrors.Is(err, resource.ErrInstanceNotFound) {
		s.logger.Debug("Nothing to delete",
			zap.Object("address", addr),
			zap.String("namespace", namespace),
			zap.String("name", id))
		return nil
	}
	if err != nil {
		return err
	}

	handle, err := resource.HandleFor(addr, obj)
	if err != nil {
		return err
	}

	// removed by someone else since it was located
	if err := s.store.Delete(ctx, handle); err != nil && !internalerrors.IsNotFound(err) {
		return err
	}

	return nil
}

func (s *customResourceService) get(ctx context.Context, kindID, id, namespace string) (*unstructured.Unstructured, error) {
	addr, err := s.storedAddress(ctx, kindID)
	if err != nil {
		return nil, err
	}

	obj, err := s.locate(ctx, addr, id, namespace)
	if err != nil {
		return nil, err
	}

	handle, err := resource.HandleFor(addr, obj)
	if err != nil {
		return nil, err
	}

	return s.store.Get(ctx, handle)
}

func (s *customResourceService) update(ctx context.Context, kindID, id string, payload *unstructured.Unstructured, namespace string) (*unstructured.Unstructured, error) {
	version, err := targetVersion(kindID, payload)
	if err != nil {
		return nil, err
	}

	vs, err := s.schemas.Resolve(ctx, kindID, version)
	if err != nil {
		return nil, err
	}

	addr, err := s.storedAddress(ctx, kindID)
	if err != nil {
		return nil, err
	}

	existing, err := s.locate(ctx, addr, id, namespace)
	if err != nil {
		return nil, err
	}

	if err := s.check(vs.Document, payload); err != nil {
		return nil, err
	}

	handle, err := resource.HandleFor(addr, existing)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Edit(ctx, handle, func(obj *unstructured.Unstructured) error {
		resource.ReplacePayload(obj, payload)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Custom resource updated",
		zap.Object("handle", handle),
		zap.String("resourceVersion", updated.GetResourceVersion()))

	return updated, nil
}

func (s *customResourceService) authorize(ctx context.Context, kindID string) error {
	if !s.authorizer.IsAllowed(ctx, kindID) {
		s.logger.Debug("Access denied", zap.String("crdId", kindID))
		return internalerrors.NewPermissionDeniedError(kindID)
	}
	return nil
}

// storedAddress resolves the stored version of a kind, requires a schema for it
// and builds the address used by reads and deletes.
func (s *customResourceService) storedAddress(ctx context.Context, kindID string) (resource.Address, error) {
	version, err := s.crds.StoredVersion(ctx, kindID)
	if err != nil {
		return resource.Address{}, err
	}

	if _, err := s.schemas.Resolve(ctx, kindID, version); err != nil {
		return resource.Address{}, err
	}

	return resource.BuildAddress(kindID, version)
}

func (s *customResourceService) locate(ctx context.Context, addr resource.Address, id, namespace string) (*unstructured.Unstructured, error) {
	obj, err := s.locator.Locate(ctx, addr, id, namespace)
	if stderrors.Is(err, resource.ErrInstanceNotFound) {
		return nil, internalerrors.NewNotFoundError(
			fmt.Sprintf("custom resource %s not found in namespace %q", id, namespace))
	}
	return obj, err
}

func (s *customResourceService) validate(ctx context.Context, kindID, version string, payload *unstructured.Unstructured) error {
	vs, err := s.schemas.Resolve(ctx, kindID, version)
	if err != nil {
		return err
	}
	return s.check(vs.Document, payload)
}

func (s *customResourceService) check(document map[string]interface{}, payload *unstructured.Unstructured) error {
	violations, err := s.validator.Validate(document, resource.Payload(payload))
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return internalerrors.NewValidationFailedError(violations)
	}
	return nil
}

// targetVersion reads the version a write is addressed to from the payload's
// apiVersion, whose group must match the kind's group.
func targetVersion(kindID string, payload *unstructured.Unstructured) (string, error) {
	if payload == nil {
		return "", internalerrors.NewInvalidArgumentError("payload cannot be empty")
	}

	group, version, err := resource.ParseAPIVersion(payload.GetAPIVersion())
	if err != nil {
		return "", err
	}

	if _, kindGroup, found := strings.Cut(kindID, "."); found && kindGroup != group {
		return "", internalerrors.NewInvalidArgumentError(
			fmt.Sprintf("apiVersion group %q does not match the group of %s", group, kindID))
	}

	return version, nil
}

func validatePatchOperations(patch jsonpatch.Patch) error {
	for i, op := range patch {
		paths := []string{}
		if path, err := op.Path(); err == nil {
			paths = append(paths, path)
		}
		if from, err := op.From(); err == nil {
			paths = append(paths, from)
		}

		for _, path := range paths {
			if isRestrictedPath(path) {
				return internalerrors.NewInvalidArgumentError(
					fmt.Sprintf("patch operation %d: cannot modify %s", i, path))
			}
		}
	}
	return nil
}

func isRestrictedPath(path string) bool {
	if path == "" || path == "/" {
		return true
	}
	for _, restricted := range restrictedPatchPaths {
		if path == restricted || strings.HasPrefix(path, restricted+"/") {
			return true
		}
	}
	return false
}
