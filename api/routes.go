package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有 API 路由
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	api := router.Group("/api")

	// 下载兑换端点（公开，令牌即凭证）
	api.GET("/download", h.Download.Download)

	registerEntityRoutes(api.Group("/chat-models"), entityHandler{
		List: h.ChatModels.List, Get: h.ChatModels.Get, Create: h.ChatModels.Create,
		Update: h.ChatModels.Update, Delete: h.ChatModels.Delete,
	})
	registerEntityRoutes(api.Group("/embeddings"), entityHandler{
		List: h.Embeddings.List, Get: h.Embeddings.Get, Create: h.Embeddings.Create,
		Update: h.Embeddings.Update, Delete: h.Embeddings.Delete,
	})
	registerEntityRoutes(api.Group("/retrievers"), entityHandler{
		List: h.Retrievers.List, Get: h.Retrievers.Get, Create: h.Retrievers.Create,
		Update: h.Retrievers.Update, Delete: h.Retrievers.Delete,
	})
	registerEntityRoutes(api.Group("/recognizers"), entityHandler{
		List: h.Recognizers.List, Get: h.Recognizers.Get, Create: h.Recognizers.Create,
		Update: h.Recognizers.Update, Delete: h.Recognizers.Delete,
	})
	registerEntityRoutes(api.Group("/mcp-servers"), entityHandler{
		List: h.MCPServers.List, Get: h.MCPServers.Get, Create: h.MCPServers.Create,
		Update: h.MCPServers.Update, Delete: h.MCPServers.Delete,
	})
	registerEntityRoutes(api.Group("/tools"), entityHandler{
		List: h.Tools.List, Get: h.Tools.Get, Create: h.Tools.Create,
		Update: h.Tools.Update, Delete: h.Tools.Delete,
	})
	registerEntityRoutes(api.Group("/prompts"), entityHandler{
		List: h.Prompts.List, Get: h.Prompts.Get, Create: h.Prompts.Create,
		Update: h.Prompts.Update, Delete: h.Prompts.Delete,
	})

	// 智能体：通用 CRUD 外加导出端点
	agents := api.Group("/agents")
	registerEntityRoutes(agents, entityHandler{
		List: h.Agents.List, Get: h.Agents.Get, Create: h.Agents.Create,
		Update: h.Agents.Update, Delete: h.Agents.Delete,
	})
	agents.POST("/:id/export", h.Agents.Export)

	// 文件：上传、元数据、下载令牌
	files := api.Group("/files")
	files.POST("/upload", h.Files.Upload)
	files.GET("/all", h.Files.List)
	files.GET("/:id", h.Files.Get)
	files.GET("/:id/download-token", h.Files.DownloadToken)
	files.DELETE("/:id", h.Files.Delete)
}

// entityHandler 实体配置的通用 CRUD 端点
type entityHandler struct {
	List   gin.HandlerFunc
	Get    gin.HandlerFunc
	Create gin.HandlerFunc
	Update gin.HandlerFunc
	Delete gin.HandlerFunc
}

func registerEntityRoutes(group *gin.RouterGroup, h entityHandler) {
	group.GET("/all", h.List)
	group.GET("/:id", h.Get)
	group.POST("/create", h.Create)
	group.PUT("/:id/update", h.Update)
	group.DELETE("/:id", h.Delete)
}
