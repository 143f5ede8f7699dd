package retrievers

import (
	"github.com/gin-gonic/gin"

	handlerCommon "backend/api/handlers/common"
	"backend/internal/retriever"
	"backend/internal/common"
)

// Handler 检索器 Handler
type Handler struct {
	service *retriever.Service
}

// NewHandler 创建 Handler
func NewHandler(service *retriever.Service) *Handler {
	return &Handler{service: service}
}

// List 查询检索器列表
// @Summary 查询检索器列表
// @Description 分页返回全部检索器配置
// @Tags Retriever
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} common.APIResponse
// @Router /api/retrievers/all [get]
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

// Get 查询检索器
// @Summary 查询检索器
// @Description 按 ID 返回检索器配置
// @Tags Retriever
// @Produce json
// @Param id path string true "检索器 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/retrievers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// Create 创建检索器
// @Summary 创建检索器
// @Description 按 type 字段创建对应类型的检索器配置
// @Tags Retriever
// @Accept json
// @Produce json
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/retrievers/create [post]
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

// Update 更新检索器
// @Summary 更新检索器
// @Description 按 ID 全量更新检索器配置
// @Tags Retriever
// @Accept json
// @Produce json
// @Param id path string true "检索器 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/retrievers/{id}/update [put]
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

// Delete 删除检索器
// @Summary 删除检索器
// @Description 按 ID 删除检索器配置
// @Tags Retriever
// @Produce json
// @Param id path string true "检索器 ID"
// @Success 204
// @Failure 404 {object} common.APIResponse
// @Router /api/retrievers/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseNoContent(c)
}
