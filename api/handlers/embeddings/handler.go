package embeddings

import (
	"github.com/gin-gonic/gin"

	handlerCommon "backend/api/handlers/common"
	embeddingsSvc "backend/internal/embeddings"
	"backend/internal/common"
)

// Handler 向量化模型 Handler
type Handler struct {
	service *embeddingsSvc.Service
}

// NewHandler 创建 Handler
func NewHandler(service *embeddingsSvc.Service) *Handler {
	return &Handler{service: service}
}

// List 查询向量化模型列表
// @Summary 查询向量化模型列表
// @Description 分页返回全部向量化模型配置
// @Tags Embeddings
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} common.APIResponse
// @Router /api/embeddings/all [get]
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

// Get 查询向量化模型
// @Summary 查询向量化模型
// @Description 按 ID 返回向量化模型配置
// @Tags Embeddings
// @Produce json
// @Param id path string true "向量化模型 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/embeddings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Create 创建向量化模型
// @Summary 创建向量化模型
// @Description 按 type 字段创建对应厂商的向量化模型配置
// @Tags Embeddings
// @Accept json
// @Produce json
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/embeddings/create [post]
func (h *Handler) Create(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	id, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseCreated(c, gin.H{"id": id})
}

// Update 更新向量化模型
// @Summary 更新向量化模型
// @Description 按 ID 全量更新向量化模型配置
// @Tags Embeddings
// @Accept json
// @Produce json
// @Param id path string true "向量化模型 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/embeddings/{id}/update [put]
func (h *Handler) Update(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("id"), payload); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"id": c.Param("id")})
}

// Delete 删除向量化模型
// @Summary 删除向量化模型
// @Description 按 ID 删除向量化模型配置
// @Tags Embeddings
// @Produce json
// @Param id path string true "向量化模型 ID"
// @Success 204
// @Failure 404 {object} common.APIResponse
// @Router /api/embeddings/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseNoContent(c)
}
