package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apierrors "github.com/scc-digitalhub/custom-resource-manager/internal/api/errors"
	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
	"github.com/scc-digitalhub/custom-resource-manager/internal/service"
)

type ResourceHandler struct {
	logger          *zap.Logger
	resourceService service.CustomResourceService
	validator       *validator.Validate
	config          *config.APIConfig
}

func NewResourceHandler(
	logger *zap.Logger,
	resourceService service.CustomResourceService,
	validator *validator.Validate,
	cfg *config.Config,
) *ResourceHandler {
	return &ResourceHandler{
		logger:          logger,
		resourceService: resourceService,
		validator:       validator,
		config:          &cfg.API,
	}
}

func (h *ResourceHandler) ListResources(c *gin.Context) {
	namespace, err := namespaceParam(c, h.config.DefaultNamespace)
	if err != nil {
		c.Error(err)
		return
	}

	query, order, err := readListQuery(c, h.validator)
	if err != nil {
		c.Error(err)
		return
	}

	items, err := h.resourceService.List(c.Request.Context(), c.Param("crdId"), namespace)
	if err != nil {
		c.Error(err)
		return
	}

	page, err := paginate(items, order, query.Page, pageSize(h.config, query.Size))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pageRecords(page))
}

func (h *ResourceHandler) GetResource(c *gin.Context) {
	namespace, err := namespaceParam(c, h.config.DefaultNamespace)
	if err != nil {
		c.Error(err)
		return
	}

	id, err := nameParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	resource, err := h.resourceService.Get(c.Request.Context(), c.Param("crdId"), id, namespace)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, instanceRecord(resource))
}

func (h *ResourceHandler) CreateResource(c *gin.Context) {
	namespace, err := namespaceParam(c, h.config.DefaultNamespace)
	if err != nil {
		c.Error(err)
		return
	}

	payload, err := decodeInstance(c)
	if err != nil {
		c.Error(err)
		return
	}

	created, err := h.resourceService.Create(c.Request.Context(), c.Param("crdId"), payload, namespace)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, instanceRecord(created))
}

func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	namespace, err := namespaceParam(c, h.config.DefaultNamespace)
	if err != nil {
		c.Error(err)
		return
	}

	id, err := nameParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	payload, err := decodeInstance(c)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := h.resourceService.Update(c.Request.Context(), c.Param("crdId"), id, payload, namespace)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, instanceRecord(updated))
}

func (h *ResourceHandler) PatchResource(c *gin.Context) {
	namespace, err := namespaceParam(c, h.config.DefaultNamespace)
	if err != nil {
		c.Error(err)
		return
	}

	id, err := nameParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	patchData, err := c.GetRawData()
	if err != nil {
		c.Error(apierrors.NewSerializationError("reading request body", err))
		return
	}

	patched, err := h.resourceService.Patch(c.Request.Context(), c.Param("crdId"), id, patchData, namespace)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, instanceRecord(patched))
}

func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	namespace, err := namespaceParam(c, h.config.DefaultNamespace)
	if err != nil {
		c.Error(err)
		return
	}

	id, err := nameParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), c.Param("crdId"), id, namespace); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
