package handler

import (
	"github.com/gin-gonic/gin"

	"cine-rag-api/internal/application/catalog"
	"cine-rag-api/internal/interfaces/http/dto"
	"cine-rag-api/pkg/logger"
)

// ShowHandler 场次处理器
type ShowHandler struct {
	catalog *catalog.Service
}

// NewShowHandler 创建场次处理器
func NewShowHandler(catalogSvc *catalog.Service) *ShowHandler {
	return &ShowHandler{catalog: catalogSvc}
}

// CreateShows 批量创建场次
// @Summary 批量创建场次
// @Description 为指定影片批量创建场次，场次变更不触发重新向量化
// @Tags Shows
// @Accept json
// @Produce json
// @Param body body dto.CreateShowsRequest true "场次信息"
// @Success 201 {object} dto.Response[string]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/shows [post]
func (h *ShowHandler) CreateShows(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateShowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.catalog.AddShows(ctx, req.MovieID, req.ToShowEntities()); err != nil {
		logger.Error(ctx, "failed to create shows", err, "movie_id", req.MovieID)
		dto.RespondError(c, err)
		return
	}

	dto.Created(c, "created")
}

// ListUpcomingShows 获取影片未来场次
// @Summary 获取影片未来场次
// @Description 按时间升序返回该影片当前时刻之后的全部场次
// @Tags Shows
// @Produce json
// @Param mid path string true "影片 ID"
// @Success 200 {object} dto.Response[[]dto.ShowResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/movies/{mid}/shows [get]
func (h *ShowHandler) ListUpcomingShows(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("mid")

	shows, err := h.catalog.ListUpcomingShows(ctx, movieID)
	if err != nil {
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, dto.ToShowListResponse(shows))
}
