package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/auth"
	internalerrors "github.com/scc-digitalhub/custom-resource-manager/internal/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/service"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/types/schema"
)

// SchemaHandler serves schema administration. Every kind is gated by the same
// authorizer as its instances.
type SchemaHandler struct {
	logger        *zap.Logger
	schemaService service.SchemaService
	authorizer    auth.Authorizer
}

func NewSchemaHandler(logger *zap.Logger, schemaService service.SchemaService, authorizer auth.Authorizer) *SchemaHandler {
	return &SchemaHandler{
		logger:        logger,
		schemaService: schemaService,
		authorizer:    authorizer,
	}
}

func (h *SchemaHandler) ListSchemas(c *gin.Context) {
	kindID := c.Query("crdId")
	if kindID != "" && !h.authorizer.IsAllowed(c.Request.Context(), kindID) {
		c.Error(internalerrors.NewPermissionDeniedError(kindID))
		return
	}

	schemas, err := h.schemaService.List(c.Request.Context(), kindID)
	if err != nil {
		c.Error(err)
		return
	}

	visible := make([]*schema.VersionedSchema, 0, len(schemas))
	for _, s := range schemas {
		if h.authorizer.IsAllowed(c.Request.Context(), s.KindID) {
			visible = append(visible, s)
		}
	}

	c.JSON(http.StatusOK, schemaRecords(visible))
}

func (h *SchemaHandler) GetSchema(c *gin.Context) {
	kindID, version := c.Param("crdId"), c.Param("version")
	if !h.authorizer.IsAllowed(c.Request.Context(), kindID) {
		c.Error(internalerrors.NewPermissionDeniedError(kindID))
		return
	}

	s, err := h.schemaService.Resolve(c.Request.Context(), kindID, version)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, schemaRecord(s))
}

func (h *SchemaHandler) PutSchema(c *gin.Context) {
	kindID, version := c.Param("crdId"), c.Param("version")
	if !h.authorizer.IsAllowed(c.Request.Context(), kindID) {
		c.Error(internalerrors.NewPermissionDeniedError(kindID))
		return
	}

	document, err := decodeObject(c)
	if err != nil {
		c.Error(err)
		return
	}

	s := &schema.VersionedSchema{
		KindID:   kindID,
		Version:  version,
		Document: document,
	}
	if err := h.schemaService.Register(c.Request.Context(), s); err != nil {
		c.Error(err)
		return
	}

	h.logger.Info("Schema registered", zap.String("crdId", kindID), zap.String("version", version))
	c.JSON(http.StatusOK, schemaRecord(s))
}

func (h *SchemaHandler) DeleteSchema(c *gin.Context) {
	kindID, version := c.Param("crdId"), c.Param("version")
	if !h.authorizer.IsAllowed(c.Request.Context(), kindID) {
		c.Error(internalerrors.NewPermissionDeniedError(kindID))
		return
	}

	if err := h.schemaService.Delete(c.Request.Context(), kindID, version); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
