package agents

import (
	"github.com/gin-gonic/gin"

	handlerCommon "backend/api/handlers/common"
	"backend/internal/agent"
	"backend/internal/common"
	"backend/internal/export"
	"backend/internal/models"
)

// Handler 智能体 Handler
type Handler struct {
	service  *agent.Service
	pipeline *export.Pipeline
}

// NewHandler 创建 Handler
func NewHandler(service *agent.Service, pipeline *export.Pipeline) *Handler {
	return &Handler{service: service, pipeline: pipeline}
}

// List 查询智能体列表
// @Summary 查询智能体列表
// @Description 分页返回全部智能体
// @Tags Agent
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} common.APIResponse
// @Router /api/agents/all [get]
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

// Get 查询智能体
// @Summary 查询智能体
// @Description 按 ID 返回智能体
// @Tags Agent
// @Produce json
// @Param id path string true "智能体 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/agents/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Create 创建智能体
// @Summary 创建智能体
// @Description 创建引用既有实体的智能体
// @Tags Agent
// @Accept json
// @Produce json
// @Param request body models.Agent true "智能体信息"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/agents/create [post]
func (h *Handler) Create(c *gin.Context) {
	var a models.Agent
	if err := c.ShouldBindJSON(&a); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	id, err := h.service.Create(c.Request.Context(), &a)
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseCreated(c, gin.H{"id": id})
}

// Update 更新智能体
// @Summary 更新智能体
// @Description 按 ID 全量更新智能体
// @Tags Agent
// @Accept json
// @Produce json
// @Param id path string true "智能体 ID"
// @Param request body models.Agent true "智能体信息"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/agents/{id}/update [put]
func (h *Handler) Update(c *gin.Context) {
	var a models.Agent
	if err := c.ShouldBindJSON(&a); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("id"), &a); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"id": c.Param("id")})
}

// Delete 删除智能体
// @Summary 删除智能体
// @Description 按 ID 删除智能体
// @Tags Agent
// @Produce json
// @Param id path string true "智能体 ID"
// @Success 204
// @Failure 404 {object} common.APIResponse
// @Router /api/agents/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseNoContent(c)
}

// Export 导出智能体配置包
// @Summary 导出智能体配置包
// @Description 汇总智能体引用的全部实体，打包为 zip 并返回下载令牌
// @Tags Agent
// @Produce json
// @Param id path string true "智能体 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/agents/{id}/export [post]
func (h *Handler) Export(c *gin.Context) {
	token, err := h.pipeline.ExportAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"token": token})
}
