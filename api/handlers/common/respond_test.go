package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"backend/internal/export"
	"backend/internal/models"
	"backend/internal/store"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "实体不存在",
			err:    fmt.Errorf("%w: chat_model/abc", store.ErrNotFound),
			status: http.StatusNotFound,
		},
		{
			name: "聚合缺失引用",
			err: &export.EntitiesNotFoundError{
				Missing: []export.MissingEntity{{Kind: export.KindTool, ID: "t-1"}},
			},
			status: http.StatusNotFound,
		},
		{
			name:   "非法 ObjectID",
			err:    fmt.Errorf("%w: %q", store.ErrInvalidID, "nope"),
			status: http.StatusBadRequest,
		},
		{
			name:   "未知实体类型",
			err:    fmt.Errorf("%w: %q", models.ErrUnknownType, "openai"),
			status: http.StatusBadRequest,
		},
		{
			name:   "字段含令牌分隔符",
			err:    fmt.Errorf("签发下载令牌失败: %w", export.ErrUnsafeField),
			status: http.StatusBadRequest,
		},
		{
			name:   "重名 MCP 服务器",
			err:    fmt.Errorf("%w: %q", export.ErrDuplicateMCPName, "search"),
			status: http.StatusBadRequest,
		},
		{
			name:   "未知错误",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			WriteError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
