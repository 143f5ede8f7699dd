package download

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/export"
	"backend/internal/metrics"
)

// Handler 下载兑换 Handler。唯一不需要其他校验的公开端点：
// 令牌本身就是访问凭证
type Handler struct {
	tokens *export.TokenCodec
}

// NewHandler 创建 Handler
func NewHandler(tokens *export.TokenCodec) *Handler {
	return &Handler{tokens: tokens}
}

// Download 兑换下载令牌
// @Summary 兑换下载令牌
// @Description 校验令牌后以登记的文件名和 MIME 类型回传文件内容
// @Tags Download
// @Produce octet-stream
// @Param token query string true "下载令牌"
// @Success 200 {file} binary
// @Failure 400 {object} common.APIResponse
// @Router /api/download [get]
func (h *Handler) Download(c *gin.Context) {
	info, err := h.tokens.Verify(c.Query("token"))
	if err != nil {
		metrics.DownloadsRejected.Inc()
		// 统一返回同一错误文案，不区分失败原因
		common.ResponseBadRequest(c, export.ErrInvalidToken.Error())
		return
	}

	if _, err := os.Stat(info.Path); err != nil {
		metrics.DownloadsRejected.Inc()
		common.ResponseNotFound(c, "file no longer available")
		return
	}

	metrics.DownloadsServed.Inc()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	c.Header("Content-Type", info.MimeType)
	c.File(info.Path)
}
