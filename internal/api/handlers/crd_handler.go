package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
	"github.com/scc-digitalhub/custom-resource-manager/internal/service"
)

// CRDHandler serves resource kind definitions read-only.
type CRDHandler struct {
	logger     *zap.Logger
	crdService service.CRDService
	validator  *validator.Validate
	config     *config.APIConfig
}

func NewCRDHandler(
	logger *zap.Logger,
	crdService service.CRDService,
	validator *validator.Validate,
	cfg *config.Config,
) *CRDHandler {
	return &CRDHandler{
		logger:     logger,
		crdService: crdService,
		validator:  validator,
		config:     &cfg.API,
	}
}

func (h *CRDHandler) ListDefinitions(c *gin.Context) {
	query, order, err := readListQuery(c, h.validator)
	if err != nil {
		c.Error(err)
		return
	}

	definitions, err := h.crdService.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	page, err := paginate(definitions, order, query.Page, pageSize(h.config, query.Size))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pageRecords(page))
}

func (h *CRDHandler) GetDefinition(c *gin.Context) {
	definition, err := h.crdService.Get(c.Request.Context(), c.Param("crdId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, instanceRecord(definition))
}
