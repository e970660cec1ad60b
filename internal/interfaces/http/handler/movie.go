package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cine-rag-api/internal/application/catalog"
	"cine-rag-api/internal/interfaces/http/dto"
	"cine-rag-api/pkg/logger"
)

// MovieHandler 影片处理器
type MovieHandler struct {
	catalog *catalog.Service
}

// NewMovieHandler 创建影片处理器
func NewMovieHandler(catalogSvc *catalog.Service) *MovieHandler {
	return &MovieHandler{catalog: catalogSvc}
}

// ListMovies 获取影片列表
// @Summary 获取影片列表
// @Description 获取全部影片，按上映日期降序
// @Tags Movies
// @Produce json
// @Success 200 {object} dto.Response[[]dto.MovieResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/movies [get]
func (h *MovieHandler) ListMovies(c *gin.Context) {
	ctx := c.Request.Context()

	movies, err := h.catalog.List(ctx)
	if err != nil {
		logger.Error(ctx, "failed to list movies", err)
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, dto.ToMovieListResponse(movies))
}

// CreateMovie 创建影片
// @Summary 创建影片
// @Description 创建影片并同步计算向量，向量化失败则整个创建失败
// @Tags Movies
// @Accept json
// @Produce json
// @Param body body dto.CreateMovieRequest true "影片信息"
// @Success 201 {object} dto.Response[dto.MovieResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/movies [post]
func (h *MovieHandler) CreateMovie(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	movie, err := h.catalog.Create(ctx, req.ToMovieEntity())
	if err != nil {
		logger.Error(ctx, "failed to create movie", err, "movie_id", req.ID)
		dto.RespondError(c, err)
		return
	}

	dto.Created(c, dto.ToMovieResponse(movie))
}

// GetMovie 获取影片详情
// @Summary 获取影片详情
// @Tags Movies
// @Produce json
// @Param mid path string true "影片 ID"
// @Success 200 {object} dto.Response[dto.MovieResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/movies/{mid} [get]
func (h *MovieHandler) GetMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("mid")

	movie, err := h.catalog.Get(ctx, movieID)
	if err != nil {
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, dto.ToMovieResponse(movie))
}

// UpdateMovie 部分更新影片
// @Summary 部分更新影片
// @Description 按补丁更新影片，语义字段变化或 force_reembed=true 时重新向量化
// @Tags Movies
// @Accept json
// @Produce json
// @Param mid path string true "影片 ID"
// @Param force_reembed query bool false "强制重新向量化"
// @Param body body entity.MoviePatch true "补丁内容"
// @Success 200 {object} dto.Response[dto.MovieResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/movies/{mid} [patch]
func (h *MovieHandler) UpdateMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("mid")

	patch, err := dto.BindMoviePatch(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	force, _ := strconv.ParseBool(c.Query("force_reembed"))

	movie, err := h.catalog.Update(ctx, movieID, patch, force)
	if err != nil {
		logger.Error(ctx, "failed to update movie", err, "movie_id", movieID)
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, dto.ToMovieResponse(movie))
}

// DeleteMovie 删除影片
// @Summary 删除影片
// @Description 删除影片及其全部场次
// @Tags Movies
// @Produce json
// @Param mid path string true "影片 ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/movies/{mid} [delete]
func (h *MovieHandler) DeleteMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("mid")

	if err := h.catalog.Delete(ctx, movieID); err != nil {
		logger.Error(ctx, "failed to delete movie", err, "movie_id", movieID)
		dto.RespondError(c, err)
		return
	}

	dto.NoContent(c)
}

// ReembedMovie 强制刷新单个影片向量
// @Summary 强制刷新影片向量
// @Description 不改变任何可见字段，仅重新计算并写入向量
// @Tags Movies
// @Produce json
// @Param mid path string true "影片 ID"
// @Success 200 {object} dto.Response[dto.MovieResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/movies/{mid}/reembed [post]
func (h *MovieHandler) ReembedMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("mid")

	movie, err := h.catalog.Reembed(ctx, movieID)
	if err != nil {
		logger.Error(ctx, "failed to reembed movie", err, "movie_id", movieID)
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, dto.ToMovieResponse(movie))
}

// ReembedAllMovies 批量刷新全库向量
// @Summary 批量刷新全库向量
// @Description 更换向量化模型或修复维度不一致后由运维触发
// @Tags Movies
// @Produce json
// @Success 200 {object} dto.Response[catalog.ReembedAllResult]
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/movies/reembed-all [post]
func (h *MovieHandler) ReembedAllMovies(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.catalog.ReembedAll(ctx)
	if err != nil {
		logger.Error(ctx, "failed to reembed all movies", err)
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, result)
}

// ImportNowPlaying 从 TMDB 导入正在上映影片
// @Summary 导入正在上映影片
// @Tags Movies
// @Accept json
// @Produce json
// @Param body body dto.ImportNowPlayingRequest false "导入参数"
// @Success 200 {object} dto.Response[catalog.ImportResult]
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/movies/import/now-playing [post]
func (h *MovieHandler) ImportNowPlaying(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ImportNowPlayingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.catalog.ImportNowPlaying(ctx, req.Page)
	if err != nil {
		logger.Error(ctx, "failed to import now playing movies", err)
		dto.RespondError(c, err)
		return
	}

	dto.Success(c, result)
}
