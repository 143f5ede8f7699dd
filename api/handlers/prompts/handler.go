package prompts

import (
	"errors"

	"github.com/gin-gonic/gin"

	handlerCommon "backend/api/handlers/common"
	"backend/internal/common"
	"backend/internal/models"
	"backend/internal/prompt"
)

// Handler 提示词 Handler
type Handler struct {
	service *prompt.Service
}

// NewHandler 创建 Handler
func NewHandler(service *prompt.Service) *Handler {
	return &Handler{service: service}
}

// List 查询提示词列表
// @Summary 查询提示词列表
// @Description 分页返回全部提示词
// @Tags Prompt
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} common.APIResponse
// @Router /api/prompts/all [get]
func (h *Handler) List(c *gin.Context) {
	page, ok := handlerCommon.BindPagination(c)
	if !ok {
		return
	}

	items, total, err := h.service.List(c.Request.Context(), page.GetOffset(), page.GetPageSize())
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseList(c, items, total, &page)
}

// Get 查询提示词
// @Summary 查询提示词
// @Description 按 ID 返回提示词
// @Tags Prompt
// @Produce json
// @Param id path string true "提示词 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/prompts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Create 创建提示词
// @Summary 创建提示词
// @Description 创建新的提示词
// @Tags Prompt
// @Accept json
// @Produce json
// @Param request body models.Prompt true "提示词内容"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/prompts/create [post]
func (h *Handler) Create(c *gin.Context) {
	var p models.Prompt
	if err := c.ShouldBindJSON(&p); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	id, err := h.service.Create(c.Request.Context(), &p)
	if err != nil {
		writeError(c, err)
		return
	}
	common.ResponseCreated(c, gin.H{"id": id})
}

// Update 更新提示词
// @Summary 更新提示词
// @Description 按 ID 全量更新提示词
// @Tags Prompt
// @Accept json
// @Produce json
// @Param id path string true "提示词 ID"
// @Param request body models.Prompt true "提示词内容"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/prompts/{id}/update [put]
func (h *Handler) Update(c *gin.Context) {
	var p models.Prompt
	if err := c.ShouldBindJSON(&p); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("id"), &p); err != nil {
		writeError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"id": c.Param("id")})
}

// Delete 删除提示词
// @Summary 删除提示词
// @Description 按 ID 删除提示词
// @Tags Prompt
// @Produce json
// @Param id path string true "提示词 ID"
// @Success 204
// @Failure 404 {object} common.APIResponse
// @Router /api/prompts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseNoContent(c)
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, prompt.ErrEmptyName) {
		common.ResponseBadRequest(c, err.Error())
		return
	}
	handlerCommon.WriteError(c, err)
}
