package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	agentsHandlers "backend/api/handlers/agents"
	chatModelHandlers "backend/api/handlers/chatmodels"
	downloadHandlers "backend/api/handlers/download"
	embeddingsHandlers "backend/api/handlers/embeddings"
	fileHandlers "backend/api/handlers/files"
	mcpHandlers "backend/api/handlers/mcpservers"
	promptHandlers "backend/api/handlers/prompts"
	recognizerHandlers "backend/api/handlers/recognizers"
	retrieverHandlers "backend/api/handlers/retrievers"
	toolHandlers "backend/api/handlers/tools"

	agentSvc "backend/internal/agent"
	"backend/internal/chatmodel"
	"backend/internal/config"
	embeddingsSvc "backend/internal/embeddings"
	"backend/internal/export"
	fileSvc "backend/internal/file"
	"backend/internal/mcp"
	"backend/internal/metrics"
	"backend/internal/middleware"
	promptSvc "backend/internal/prompt"
	"backend/internal/recognizer"
	retrieverSvc "backend/internal/retriever"
	"backend/internal/store"
	toolSvc "backend/internal/tool"
)

// Handlers 全部 HTTP Handler
type Handlers struct {
	ChatModels  *chatModelHandlers.Handler
	Embeddings  *embeddingsHandlers.Handler
	Retrievers  *retrieverHandlers.Handler
	Recognizers *recognizerHandlers.Handler
	MCPServers  *mcpHandlers.Handler
	Tools       *toolHandlers.Handler
	Prompts     *promptHandlers.Handler
	Files       *fileHandlers.Handler
	Agents      *agentsHandlers.Handler
	Download    *downloadHandlers.Handler
}

// SetupRouter 装配服务依赖并返回 Gin 路由
func SetupRouter(db *mongo.Database, cfg *config.Config) *gin.Engine {
	st := store.New(db)
	tokens := export.NewTokenCodec(cfg.Export.SecretKey)

	// 服务层
	chatModels := chatmodel.NewService(st)
	embeddings := embeddingsSvc.NewService(st)
	prompts := promptSvc.NewService(st)
	mcpServers := mcp.NewService(st)
	tools := toolSvc.NewService(st)
	files := fileSvc.NewService(st, tokens, cfg.Storage.LocalFileDir, cfg.Storage.MaxFileSize, cfg.Export.TokenTTLDuration())
	retrievers := retrieverSvc.NewService(st, embeddings, files)
	recognizers := recognizer.NewService(st, files)
	agents := agentSvc.NewService(st)

	aggregator := export.NewAggregator(export.Fetchers{
		ChatModels:  chatModels,
		Prompts:     prompts,
		Retrievers:  retrievers,
		Recognizers: recognizers,
		MCPServers:  mcpServers,
		Tools:       tools,
	})
	pipeline := export.NewPipeline(agents, aggregator, tokens, cfg.Export.CacheDir, cfg.Export.TokenTTLDuration())

	handlers := &Handlers{
		ChatModels:  chatModelHandlers.NewHandler(chatModels),
		Embeddings:  embeddingsHandlers.NewHandler(embeddings),
		Retrievers:  retrieverHandlers.NewHandler(retrievers),
		Recognizers: recognizerHandlers.NewHandler(recognizers),
		MCPServers:  mcpHandlers.NewHandler(mcpServers),
		Tools:       toolHandlers.NewHandler(tools),
		Prompts:     promptHandlers.NewHandler(prompts),
		Files:       fileHandlers.NewHandler(files),
		Agents:      agentsHandlers.NewHandler(agents, pipeline),
		Download:    downloadHandlers.NewHandler(tokens),
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		RequestLogger(),
		CORS(),
		metrics.PrometheusMiddleware(),
	)

	// 监控与探针端点
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", HealthCheck())
	router.GET("/ready", ReadinessCheck(db))

	RegisterRoutes(router, handlers)
	return router
}
