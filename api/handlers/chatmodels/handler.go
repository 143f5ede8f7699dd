package chatmodels

import (
	"github.com/gin-gonic/gin"

	handlerCommon "backend/api/handlers/common"
	"backend/internal/chatmodel"
	"backend/internal/common"
)

// Handler 聊天模型 Handler
type Handler struct {
	service *chatmodel.Service
}

// NewHandler 创建 Handler
func NewHandler(service *chatmodel.Service) *Handler {
	return &Handler{service: service}
}

// List 查询聊天模型列表
// @Summary 查询聊天模型列表
// @Description 分页返回全部聊天模型配置
// @Tags ChatModel
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} common.APIResponse
// @Router /api/chat-models/all [get]
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

// Get 查询聊天模型
// @Summary 查询聊天模型
// @Description 按 ID 返回聊天模型配置
// @Tags ChatModel
// @Produce json
// @Param id path string true "聊天模型 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/chat-models/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Create 创建聊天模型
// @Summary 创建聊天模型
// @Description 按 type 字段创建对应厂商的聊天模型配置
// @Tags ChatModel
// @Accept json
// @Produce json
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/chat-models/create [post]
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

// Update 更新聊天模型
// @Summary 更新聊天模型
// @Description 按 ID 全量更新聊天模型配置
// @Tags ChatModel
// @Accept json
// @Produce json
// @Param id path string true "聊天模型 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/chat-models/{id}/update [put]
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

// Delete 删除聊天模型
// @Summary 删除聊天模型
// @Description 按 ID 删除聊天模型配置
// @Tags ChatModel
// @Produce json
// @Param id path string true "聊天模型 ID"
// @Success 204
// @Failure 404 {object} common.APIResponse
// @Router /api/chat-models/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseNoContent(c)
}
