package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/materials-catalog/internal/domain/catalog"
	"github.com/yungbote/materials-catalog/internal/http/response"
	"github.com/yungbote/materials-catalog/internal/http/validation"
	"github.com/yungbote/materials-catalog/internal/platform/apierr"
	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
	"github.com/yungbote/materials-catalog/internal/services"
)

type MaterialHandler struct {
	log        *logger.Logger
	query      services.CatalogQueryService
	write      services.CatalogWriteService
	engagement services.EngagementService
	maxUpload  int64
}

func NewMaterialHandler(
	log *logger.Logger,
	query services.CatalogQueryService,
	write services.CatalogWriteService,
	engagement services.EngagementService,
	maxUpload int64,
) *MaterialHandler {
	return &MaterialHandler{
		log:        log.With("handler", "MaterialHandler"),
		query:      query,
		write:      write,
		engagement: engagement,
		maxUpload:  maxUpload,
	}
}

// GET /api/materials
func (h *MaterialHandler) List(c *gin.Context) {
	var q validation.ListMaterialsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, h.log, apierr.BadRequest("invalid_query", "invalid query parameters"))
		return
	}
	if err := validation.Validate(&q); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	filter := types.Filter{
		CategoryID: q.Category,
		Search:     q.Search,
		Level:      types.ParseMaterialLevel(q.Level),
		DateRange:  types.DateRange(q.DateRange),
		MinRating:  q.MinRating,
	}
	page, err := h.query.List(c.Request.Context(), filter, types.Page{Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	m, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, m)
}

// POST /api/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	form, err := readMaterialForm(c, h.maxUpload)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	draft, err := form.draft()
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	tags, err := form.tags()
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	m, err := h.write.Create(c.Request.Context(), services.CreateMaterialRequest{
		Draft:    draft,
		TagNames: tags,
		Assets:   form.assets(),
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondCreated(c, m)
}

// PUT /api/materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	form, err := readMaterialForm(c, h.maxUpload)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	patch, err := form.patch()
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	req := services.UpdateMaterialRequest{MaterialID: id, Patch: patch, Assets: form.assets()}
	if form.has("tags") {
		tags, err := form.tags()
		if err != nil {
			response.Fail(c, h.log, err)
			return
		}
		req.TagNames = &tags
	}
	m, err := h.write.Update(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, m)
}

// DELETE /api/materials/:id?permanently=true
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	permanently := false
	if raw := c.Query("permanently"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Fail(c, h.log, apierr.BadRequest("invalid_query", "permanently must be true or false"))
			return
		}
		permanently = v
	}
	if err := h.write.Delete(c.Request.Context(), id, permanently); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "permanently": permanently})
}

// POST /api/materials/:id/rate
func (h *MaterialHandler) Rate(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	var req validation.RateRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	summary, err := h.write.Rate(c.Request.Context(), id, callerID(rd), *req.Value, req.Comment)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "rating": summary})
}

// POST /api/materials/:id/track
func (h *MaterialHandler) Track(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	var req validation.TrackRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.engagement.Track(c.Request.Context(), id, types.TrackAction(req.Action)); err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// POST /api/materials/:id/progress
func (h *MaterialHandler) SaveProgress(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	var req validation.ProgressRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	row, err := h.engagement.SaveProgress(c.Request.Context(), services.ProgressInput{
		UserID:     callerID(rd),
		MaterialID: id,
		Percentage: *req.Percentage,
		Position:   req.Position,
		Completed:  req.Completed,
	})
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, row)
}

// GET /api/materials/:id/progress
func (h *MaterialHandler) GetProgress(c *gin.Context) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	row, err := h.engagement.GetProgress(c.Request.Context(), callerID(rd), id)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	response.RespondOK(c, row)
}

func (h *MaterialHandler) File(c *gin.Context)      { h.streamAsset(c, services.AssetFile) }
func (h *MaterialHandler) Thumbnail(c *gin.Context) { h.streamAsset(c, services.AssetThumbnail) }

func (h *MaterialHandler) streamAsset(c *gin.Context, kind services.AssetKind) {
	id, ok := h.materialID(c)
	if !ok {
		return
	}
	stream, err := h.engagement.OpenAsset(c.Request.Context(), id, kind)
	if err != nil {
		response.Fail(c, h.log, err)
		return
	}
	defer stream.Body.Close()

	disposition := "inline"
	if kind == services.AssetFile {
		disposition = "attachment"
	}
	c.Header("Content-Type", stream.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, stream.Filename))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream.Body); err != nil {
		h.log.Warn("asset stream interrupted", append(ctxutil.LogFields(c.Request.Context()), "material_id", id, "error", err)...)
	}
}

func (h *MaterialHandler) materialID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, h.log, apierr.BadRequest("invalid_id", "invalid material id"))
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, log *logger.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, log, apierr.BadRequest("invalid_json", "invalid JSON body"))
		return false
	}
	if err := validation.Validate(dst); err != nil {
		response.Fail(c, log, err)
		return false
	}
	return true
}

func callerID(rd *ctxutil.RequestData) uuid.UUID {
	if rd == nil {
		return uuid.Nil
	}
	return rd.UserID
}
