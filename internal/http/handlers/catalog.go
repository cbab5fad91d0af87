package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/materials-catalog/internal/http/response"
	"github.com/yungbote/materials-catalog/internal/http/validation"
	"github.com/yungbote/materials-catalog/internal/platform/apierr"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
	"github.com/yungbote/materials-catalog/internal/services"
)

// CatalogHandler serves the read-mostly lookup endpoints.
type CatalogHandler struct {
	log   *logger.Logger
	query services.CatalogQueryService
}

func NewCatalogHandler(log *logger.Logger, query services.CatalogQueryService) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), query: query}
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	out, err := h.query.Categories(c.Request.Context())
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *CatalogHandler) Tags(c *gin.Context) {
	out, err := h.query.Tags(c.Request.Context())
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *CatalogHandler) Statistics(c *gin.Context) {
	stats, err := h.query.Statistics(c.Request.Context())
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/featured?limit=
func (h *CatalogHandler) Featured(c *gin.Context) {
	var q validation.FeaturedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, h.log, apierr.BadRequest("invalid_query", "limit must be an integer"))
		return
	}
	if err := validation.Validate(&q); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	out, err := h.query.Featured(c.Request.Context(), q.Limit)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
