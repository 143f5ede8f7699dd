package files

import (
	"errors"
	"mime"
	"path/filepath"

	"github.com/gin-gonic/gin"

	handlerCommon "backend/api/handlers/common"
	"backend/internal/common"
	"backend/internal/file"
)

// Handler 文件 Handler
type Handler struct {
	service *file.Service
}

// NewHandler 创建 Handler
func NewHandler(service *file.Service) *Handler {
	return &Handler{service: service}
}

// Upload 上传文件
// @Summary 上传文件
// @Description 接收 multipart 表单中的 file 字段，落盘并登记元数据
// @Tags File
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文件内容"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/files/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	src, err := header.Open()
	if err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	id, err := h.service.Upload(c.Request.Context(), header.Filename, mimeType, src)
	if err != nil {
		if errors.Is(err, file.ErrFileTooLarge) {
			common.ResponseBadRequest(c, err.Error())
			return
		}
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseCreated(c, gin.H{"id": id})
}

// List 查询文件列表
// @Summary 查询文件列表
// @Description 分页返回全部文件元数据
// @Tags File
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} common.APIResponse
// @Router /api/files/all [get]
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

// Get 查询文件元数据
// @Summary 查询文件元数据
// @Description 按 ID 返回文件元数据
// @Tags File
// @Produce json
// @Param id path string true "文件 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/files/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, item)
}

// DownloadToken 签发文件下载令牌
// @Summary 签发文件下载令牌
// @Description 为已登记的文件签发限时下载令牌
// @Tags File
// @Produce json
// @Param id path string true "文件 ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/files/{id}/download-token [get]
func (h *Handler) DownloadToken(c *gin.Context) {
	token, err := h.service.IssueDownloadToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"token": token})
}

// Delete 删除文件
// @Summary 删除文件
// @Description 按 ID 删除文件元数据与磁盘内容
// @Tags File
// @Produce json
// @Param id path string true "文件 ID"
// @Success 204
// @Failure 404 {object} common.APIResponse
// @Router /api/files/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlerCommon.WriteError(c, err)
		return
	}
	common.ResponseNoContent(c)
}
