package common

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/export"
	"backend/internal/models"
	"backend/internal/store"
)

// WriteError 将服务层错误映射为统一响应
func WriteError(c *gin.Context, err error) {
	var notFound *export.EntitiesNotFoundError
	switch {
	case errors.Is(err, store.ErrNotFound):
		common.ResponseNotFound(c, err.Error())
	case errors.As(err, &notFound):
		common.ResponseNotFound(c, err.Error())
	case errors.Is(err, store.ErrInvalidID),
		errors.Is(err, models.ErrUnknownType),
		errors.Is(err, models.ErrInvalidDocument),
		errors.Is(err, export.ErrDuplicateMCPName),
		errors.Is(err, export.ErrUnsafeField):
		common.ResponseBadRequest(c, err.Error())
	default:
		common.ResponseServerError(c, err.Error())
	}
}

// BindPagination 解析分页查询参数
func BindPagination(c *gin.Context) (common.PaginationRequest, bool) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return page, false
	}
	return page, true
}
