package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	k8sschema "k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	clienttesting "k8s.io/client-go/testing"

	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/kube"
	"github.com/scc-digitalhub/custom-resource-manager/internal/resource"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/validation"
)

const widgetsKind = "widgets.example.io"

var widgetsGVR = k8sschema.GroupVersionResource{Group: "example.io", Version: "v1", Resource: "widgets"}

func widgetSchema(version string) *schema.VersionedSchema {
	return &schema.VersionedSchema{
		KindID:  widgetsKind,
		Version: version,
		Document: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"spec"},
			"properties": map[string]interface{}{
				"spec": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"size"},
					"properties": map[string]interface{}{
						"size": map[string]interface{}{"type": "integer", "minimum": 1},
					},
				},
			},
		},
	}
}

func widgetPayload(name string, spec map[string]interface{}) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "example.io/v1",
		"kind":       "Widget",
		"metadata":   map[string]interface{}{"name": name},
	}}
	if spec != nil {
		obj.Object["spec"] = spec
	}
	return obj
}

func storedWidget(name string, size int64) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "example.io/v1",
		"kind":       "Widget",
		"metadata": map[string]interface{}{
			"name":            name,
			"namespace":       "default",
			"uid":             "0f4c1a2e",
			"resourceVersion": "11",
			"labels":          map[string]interface{}{"team": "blue"},
		},
		"spec": map[string]interface{}{"size": size},
	}}
}

type fixture struct {
	authorizer *mockAuthorizer
	schemas    *mockSchemaService
	crds       *mockCRDMetadataStore
	service    CustomResourceService
}

func newFixture(store resource.ObjectStore) *fixture {
	f := &fixture{
		authorizer: &mockAuthorizer{},
		schemas:    &mockSchemaService{},
		crds:       &mockCRDMetadataStore{},
	}
	f.service = NewCustomResourceService(zap.NewNop(), f.authorizer, f.schemas, f.crds, store, validation.NewValidator())
	return f
}

func newFakeStore(objs ...runtime.Object) (resource.ObjectStore, *dynamicfake.FakeDynamicClient) {
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[k8sschema.GroupVersionResource]string{widgetsGVR: "WidgetList"},
		objs...)
	return kube.NewObjectStore(zap.NewNop(), client), client
}

// allowWidgets authorizes the widgets kind, stores it at v1 and registers the v1 schema
func (f *fixture) allowWidgets() {
	f.authorizer.On("IsAllowed", mock.Anything, widgetsKind).Return(true)
	f.crds.On("StoredVersion", mock.Anything, widgetsKind).Return("v1", nil)
	f.schemas.On("Resolve", mock.Anything, widgetsKind, "v1").Return(widgetSchema("v1"), nil)
}

func TestAuthorizationIsCheckedFirst(t *testing.T) {
	ctx := context.Background()
	malformed := &unstructured.Unstructured{Object: map[string]interface{}{"spec": "nonsense"}}

	operations := map[string]func(s CustomResourceService) error{
		"list": func(s CustomResourceService) error {
			_, err := s.List(ctx, widgetsKind, "default")
			return err
		},
		"get": func(s CustomResourceService) error {
			_, err := s.Get(ctx, widgetsKind, "w1", "default")
			return err
		},
		"create": func(s CustomResourceService) error {
			_, err := s.Create(ctx, widgetsKind, malformed, "default")
			return err
		},
		"update": func(s CustomResourceService) error {
			_, err := s.Update(ctx, widgetsKind, "w1", malformed, "default")
			return err
		},
		"patch": func(s CustomResourceService) error {
			_, err := s.Patch(ctx, widgetsKind, "w1", []byte("not a patch"), "default")
			return err
		},
		"delete": func(s CustomResourceService) error {
			return s.Delete(ctx, widgetsKind, "w1", "default")
		},
	}

	for name, operation := range operations {
		t.Run(name, func(t *testing.T) {
			store := &mockObjectStore{}
			f := newFixture(store)
			f.authorizer.On("IsAllowed", ctx, widgetsKind).Return(false)

			err := operation(f.service)

			var denied *internalerrors.PermissionDeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, widgetsKind, denied.KindID)
			assert.Empty(t, f.schemas.Calls)
			assert.Empty(t, f.crds.Calls)
			store.assertUntouched(t)
		})
	}
}

func TestMissingSchemaFailsBeforeStore(t *testing.T) {
	ctx := context.Background()
	missing := internalerrors.NewNotFoundError("schema widgets.example.io/v1 not found")

	operations := map[string]func(s CustomResourceService) error{
		"list": func(s CustomResourceService) error {
			_, err := s.List(ctx, widgetsKind, "default")
			return err
		},
		"get": func(s CustomResourceService) error {
			_, err := s.Get(ctx, widgetsKind, "w1", "default")
			return err
		},
		"delete": func(s CustomResourceService) error {
			return s.Delete(ctx, widgetsKind, "w1", "default")
		},
		"create": func(s CustomResourceService) error {
			_, err := s.Create(ctx, widgetsKind, widgetPayload("w1", map[string]interface{}{"size": int64(3)}), "default")
			return err
		},
		"update": func(s CustomResourceService) error {
			_, err := s.Update(ctx, widgetsKind, "w1", widgetPayload("w1", map[string]interface{}{"size": int64(3)}), "default")
			return err
		},
	}

	for name, operation := range operations {
		t.Run(name, func(t *testing.T) {
			store := &mockObjectStore{}
			f := newFixture(store)
			f.authorizer.On("IsAllowed", ctx, widgetsKind).Return(true)
			f.crds.On("StoredVersion", ctx, widgetsKind).Return("v1", nil)
			f.schemas.On("Resolve", ctx, widgetsKind, "v1").Return(nil, missing)

			err := operation(f.service)

			assert.True(t, internalerrors.IsNotFound(err))
			assert.Same(t, missing, err)
			store.assertUntouched(t)
		})
	}
}

func TestUnknownKindFailsBeforeStore(t *testing.T) {
	ctx := context.Background()
	store := &mockObjectStore{}
	f := newFixture(store)
	f.authorizer.On("IsAllowed", ctx, "gadgets.example.io").Return(true)
	f.crds.On("StoredVersion", ctx, "gadgets.example.io").
		Return("", internalerrors.NewNotFoundError("resource kind gadgets.example.io not found"))

	_, err := f.service.List(ctx, "gadgets.example.io", "default")

	assert.True(t, internalerrors.IsNotFound(err))
	assert.Empty(t, f.schemas.Calls)
	store.assertUntouched(t)
}

func TestListReturnsInstancesVerbatim(t *testing.T) {
	store, _ := newFakeStore(storedWidget("w1", 1), storedWidget("w2", 2))
	f := newFixture(store)
	f.allowWidgets()

	items, err := f.service.List(context.Background(), widgetsKind, "default")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "blue", item.GetLabels()["team"])
		assert.Equal(t, "11", item.GetResourceVersion())
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newFakeStore()
	f := newFixture(store)
	f.allowWidgets()

	payload := widgetPayload("w1", map[string]interface{}{
		"size":  int64(3),
		"color": "red",
		"tags":  []interface{}{"a", "b"},
	})

	created, err := f.service.Create(ctx, widgetsKind, payload, "team-a")
	require.NoError(t, err)
	assert.Equal(t, "team-a", created.GetNamespace())

	fetched, err := f.service.Get(ctx, widgetsKind, "w1", "team-a")
	require.NoError(t, err)
	assert.Equal(t, "w1", fetched.GetName())
	assert.Equal(t, "team-a", fetched.GetNamespace())
	assert.Equal(t, resource.Payload(payload), resource.Payload(fetched))
}

func TestGetMissingInstance(t *testing.T) {
	store, _ := newFakeStore(storedWidget("w1", 1))
	f := newFixture(store)
	f.allowWidgets()

	_, err := f.service.Get(context.Background(), widgetsKind, "w9", "default")

	assert.True(t, internalerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "w9")
}

func TestCreateWidgetScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("missing size is rejected", func(t *testing.T) {
		store := &mockObjectStore{}
		f := newFixture(store)
		f.allowWidgets()

		payload := &unstructured.Unstructured{Object: map[string]interface{}{
			"apiVersion": "example.io/v1",
			"spec":       map[string]interface{}{},
		}}

		_, err := f.service.Create(ctx, widgetsKind, payload, "default")

		var failed *internalerrors.ValidationFailedError
		require.ErrorAs(t, err, &failed)
		require.Len(t, failed.Violations, 1)
		assert.Contains(t, failed.Violations[0].Path, "size")
		assert.Equal(t, "required", failed.Violations[0].Rule)
		store.assertUntouched(t)
	})

	t.Run("valid size is created", func(t *testing.T) {
		store := &mockObjectStore{}
		f := newFixture(store)
		f.allowWidgets()

		payload := &unstructured.Unstructured{Object: map[string]interface{}{
			"apiVersion": "example.io/v1",
			"spec":       map[string]interface{}{"size": int64(3)},
		}}
		stored := storedWidget("generated", 3)
		store.On("Create", ctx, mock.MatchedBy(func(addr resource.Address) bool {
			return addr.Group == "example.io" && addr.Plural == "widgets" && addr.Version == "v1"
		}), payload, "default").Return(stored, nil)

		created, err := f.service.Create(ctx, widgetsKind, payload, "default")
		require.NoError(t, err)

		size, found, err := unstructured.NestedInt64(created.Object, "spec", "size")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(3), size)
		store.AssertExpectations(t)
	})
}

func TestCreateEmptyPayloadReportsEachMissingField(t *testing.T) {
	ctx := context.Background()
	store := &mockObjectStore{}
	f := newFixture(store)
	f.authorizer.On("IsAllowed", ctx, widgetsKind).Return(true)
	f.schemas.On("Resolve", ctx, widgetsKind, "v1").Return(&schema.VersionedSchema{
		KindID:  widgetsKind,
		Version: "v1",
		Document: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"spec", "owner", "region"},
		},
	}, nil)

	payload := &unstructured.Unstructured{Object: map[string]interface{}{"apiVersion": "example.io/v1"}}
	_, err := f.service.Create(ctx, widgetsKind, payload, "default")

	var failed *internalerrors.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Len(t, failed.Violations, 3)
	store.assertUntouched(t)
}

func TestCreateRejectsMalformedAPIVersion(t *testing.T) {
	ctx := context.Background()

	for _, apiVersion := range []string{"", "v1", "other.io/v1"} {
		store := &mockObjectStore{}
		f := newFixture(store)
		f.authorizer.On("IsAllowed", ctx, widgetsKind).Return(true)

		payload := widgetPayload("w1", map[string]interface{}{"size": int64(1)})
		payload.SetAPIVersion(apiVersion)

		_, err := f.service.Create(ctx, widgetsKind, payload, "default")

		var invalid *internalerrors.InvalidArgumentError
		assert.ErrorAs(t, err, &invalid, "apiVersion %q", apiVersion)
		assert.Empty(t, f.schemas.Calls)
		store.assertUntouched(t)
	}
}

func TestUpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	store, client := newFakeStore(storedWidget("w1", 1))
	f := newFixture(store)
	f.allowWidgets()

	payload := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "example.io/v1",
		"kind":       "Widget",
		"metadata": map[string]interface{}{
			"name":            "renamed",
			"namespace":       "elsewhere",
			"resourceVersion": "1",
			"labels":          map[string]interface{}{"team": "red"},
		},
		"spec": map[string]interface{}{"size": int64(8)},
	}}

	updated, err := f.service.Update(ctx, widgetsKind, "w1", payload, "default")
	require.NoError(t, err)

	assert.Equal(t, "w1", updated.GetName())
	assert.Equal(t, "default", updated.GetNamespace())
	assert.Equal(t, "0f4c1a2e", string(updated.GetUID()))
	assert.Equal(t, map[string]string{"team": "blue"}, updated.GetLabels())
	assert.Equal(t, map[string]interface{}{"size": int64(8)}, updated.Object["spec"])

	var submitted *unstructured.Unstructured
	for _, action := range client.Actions() {
		if update, ok := action.(clienttesting.UpdateAction); ok {
			submitted = update.GetObject().(*unstructured.Unstructured)
		}
	}
	require.NotNil(t, submitted)
	assert.Equal(t, "11", submitted.GetResourceVersion())
}

func TestUpdateMissingInstance(t *testing.T) {
	store, _ := newFakeStore()
	f := newFixture(store)
	f.allowWidgets()

	_, err := f.service.Update(context.Background(), widgetsKind, "w1",
		widgetPayload("w1", map[string]interface{}{"size": int64(2)}), "default")

	assert.True(t, internalerrors.IsNotFound(err))
}

func TestUpdateInvalidPayloadIsNotStored(t *testing.T) {
	store, client := newFakeStore(storedWidget("w1", 1))
	f := newFixture(store)
	f.allowWidgets()

	_, err := f.service.Update(context.Background(), widgetsKind, "w1",
		widgetPayload("w1", map[string]interface{}{"size": int64(0)}), "default")

	var failed *internalerrors.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "minimum", failed.Violations[0].Rule)
	for _, action := range client.Actions() {
		assert.NotEqual(t, "update", action.GetVerb())
	}
}

func TestUpdateUsesPayloadVersionForValidation(t *testing.T) {
	ctx := context.Background()
	store := &mockObjectStore{}
	f := newFixture(store)
	f.authorizer.On("IsAllowed", ctx, widgetsKind).Return(true)
	f.crds.On("StoredVersion", ctx, widgetsKind).Return("v2", nil)
	f.schemas.On("Resolve", ctx, widgetsKind, "v1").Return(widgetSchema("v1"), nil)
	f.schemas.On("Resolve", ctx, widgetsKind, "v2").Return(&schema.VersionedSchema{KindID: widgetsKind, Version: "v2"}, nil)

	existing := storedWidget("w1", 1)
	store.On("List", ctx, mock.MatchedBy(func(addr resource.Address) bool {
		return addr.Version == "v2"
	}), "default").Return([]*unstructured.Unstructured{existing}, nil)

	// the v1 schema applies even though the kind is stored at v2
	_, err := f.service.Update(ctx, widgetsKind, "w1", widgetPayload("w1", map[string]interface{}{}), "default")

	var failed *internalerrors.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	f.schemas.AssertCalled(t, "Resolve", ctx, widgetsKind, "v1")
	f.schemas.AssertCalled(t, "Resolve", ctx, widgetsKind, "v2")
	store.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSurfacesConflict(t *testing.T) {
	store, client := newFakeStore(storedWidget("w1", 1))
	client.PrependReactor("update", "widgets", func(clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewConflict(widgetsGVR.GroupResource(), "w1", errors.New("object has been modified"))
	})
	f := newFixture(store)
	f.allowWidgets()

	_, err := f.service.Update(context.Background(), widgetsKind, "w1",
		widgetPayload("w1", map[string]interface{}{"size": int64(2)}), "default")

	var conflict *internalerrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, internalerrors.IsRetryable(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing instance is removed", func(t *testing.T) {
		store, _ := newFakeStore(storedWidget("w1", 1))
		f := newFixture(store)
		f.allowWidgets()

		require.NoError(t, f.service.Delete(ctx, widgetsKind, "w1", "default"))

		_, err := f.service.Get(ctx, widgetsKind, "w1", "default")
		assert.True(t, internalerrors.IsNotFound(err))
	})

	t.Run("absent instance is a no-op", func(t *testing.T) {
		store := &mockObjectStore{}
		f := newFixture(store)
		f.allowWidgets()
		store.On("List", ctx, mock.Anything, "default").Return([]*unstructured.Unstructured{storedWidget("w2", 1)}, nil)

		assert.NoError(t, f.service.Delete(ctx, widgetsKind, "w1", "default"))
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("instance removed concurrently", func(t *testing.T) {
		store := &mockObjectStore{}
		f := newFixture(store)
		f.allowWidgets()
		store.On("List", ctx, mock.Anything, "default").Return([]*unstructured.Unstructured{storedWidget("w1", 1)}, nil)
		store.On("Delete", ctx, mock.Anything).Return(internalerrors.NewNotFoundError("gone"))

		assert.NoError(t, f.service.Delete(ctx, widgetsKind, "w1", "default"))
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := &mockObjectStore{}
		f := newFixture(store)
		f.allowWidgets()
		unavailable := internalerrors.NewTransientError("delete", errors.New("etcd leader changed"))
		store.On("List", ctx, mock.Anything, "default").Return([]*unstructured.Unstructured{storedWidget("w1", 1)}, nil)
		store.On("Delete", ctx, mock.Anything).Return(unavailable)

		err := f.service.Delete(ctx, widgetsKind, "w1", "default")
		assert.Same(t, unavailable, err)
	})
}
