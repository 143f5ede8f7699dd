package export

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backend/internal/models"
	"backend/internal/store"
)

// 实体种类名，用于缺失引用报告
const (
	KindChatModel  = "chat_model"
	KindPrompt     = "prompt"
	KindRecognizer = "recognizer"
	KindRetriever  = "retriever"
	KindMCPServer  = "mcp_server"
	KindTool       = "tool"
)

// ErrDuplicateMCPName 同一智能体引用了重名的 MCP 服务器
var ErrDuplicateMCPName = errors.New("duplicate mcp server name")

// ChatModelFetcher 按 ID 获取聊天模型
type ChatModelFetcher interface {
	Get(ctx context.Context, id string) (models.ChatModel, error)
}

// PromptFetcher 按 ID 获取提示词
type PromptFetcher interface {
	Get(ctx context.Context, id string) (*models.Prompt, error)
}

// RetrieverResolver 按 ID 解析检索器导出配置，附属文件写入 destDir
type RetrieverResolver interface {
	ResolveConfig(ctx context.Context, id, destDir string) (models.RetrieverConfig, error)
}

// RecognizerResolver 按 ID 解析识别器导出配置，附属文件写入 destDir
type RecognizerResolver interface {
	ResolveConfig(ctx context.Context, id, destDir string) (*models.RecognizerConfig, error)
}

// MCPServerFetcher 按 ID 获取 MCP 服务器
type MCPServerFetcher interface {
	Get(ctx context.Context, id string) (models.MCPServer, error)
}

// ToolFetcher 按 ID 获取工具
type ToolFetcher interface {
	Get(ctx context.Context, id string) (models.Tool, error)
}

// Fetchers 聚合装配所需的各实体获取器
type Fetchers struct {
	ChatModels  ChatModelFetcher
	Prompts     PromptFetcher
	Retrievers  RetrieverResolver
	Recognizers RecognizerResolver
	MCPServers  MCPServerFetcher
	Tools       ToolFetcher
}

// Aggregator 并发解析智能体引用的全部实体并装配组合配置。
// 任一引用缺失则整体失败，不产生部分结果。
type Aggregator struct {
	fetchers Fetchers
}

// NewAggregator 创建聚合器
func NewAggregator(fetchers Fetchers) *Aggregator {
	return &Aggregator{fetchers: fetchers}
}

// fetchResult 单个并发任务的结果槽
type fetchResult struct {
	kind  string
	id    string
	apply func(cfg *models.AgentConfiguration) error
	err   error
}

// Assemble 并发解析 agent 引用的所有实体并返回组合配置。
// recognizerDir、retrieverDir 分别接收识别器与检索器的附属文件。
func (a *Aggregator) Assemble(ctx context.Context, agent *models.Agent, recognizerDir, retrieverDir string) (*models.AgentConfiguration, error) {
	type task struct {
		kind string
		id   string
		run  func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error)
	}

	retrieverConfigs := make([]models.RetrieverConfig, len(agent.RetrieverIDs))
	mcpServers := make([]models.MCPServer, len(agent.MCPServerIDs))
	tools := make([]models.Tool, len(agent.ToolIDs))

	tasks := []task{
		{
			kind: KindChatModel,
			id:   agent.ChatModelID,
			run: func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error) {
				llm, err := a.fetchers.ChatModels.Get(ctx, agent.ChatModelID)
				if err != nil {
					return nil, err
				}
				return func(cfg *models.AgentConfiguration) error {
					cfg.LLM = llm.ExportConfig()
					return nil
				}, nil
			},
		},
		{
			kind: KindPrompt,
			id:   agent.PromptID,
			run: func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error) {
				p, err := a.fetchers.Prompts.Get(ctx, agent.PromptID)
				if err != nil {
					return nil, err
				}
				return func(cfg *models.AgentConfiguration) error {
					exported := p.ExportConfig()
					cfg.Prompt = &exported
					return nil
				}, nil
			},
		},
	}

	if agent.ImageRecognizerID != "" {
		tasks = append(tasks, task{
			kind: KindRecognizer,
			id:   agent.ImageRecognizerID,
			run: func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error) {
				rc, err := a.fetchers.Recognizers.ResolveConfig(ctx, agent.ImageRecognizerID, recognizerDir)
				if err != nil {
					return nil, err
				}
				return func(cfg *models.AgentConfiguration) error {
					cfg.ImageRecognizer = rc
					return nil
				}, nil
			},
		})
	}

	for i, id := range agent.RetrieverIDs {
		tasks = append(tasks, task{
			kind: KindRetriever,
			id:   id,
			run: func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error) {
				rc, err := a.fetchers.Retrievers.ResolveConfig(ctx, id, retrieverDir)
				if err != nil {
					return nil, err
				}
				retrieverConfigs[i] = rc
				return nil, nil
			},
		})
	}

	for i, id := range agent.MCPServerIDs {
		tasks = append(tasks, task{
			kind: KindMCPServer,
			id:   id,
			run: func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error) {
				srv, err := a.fetchers.MCPServers.Get(ctx, id)
				if err != nil {
					return nil, err
				}
				mcpServers[i] = srv
				return nil, nil
			},
		})
	}

	for i, id := range agent.ToolIDs {
		tasks = append(tasks, task{
			kind: KindTool,
			id:   id,
			run: func(ctx context.Context) (func(cfg *models.AgentConfiguration) error, error) {
				t, err := a.fetchers.Tools.Get(ctx, id)
				if err != nil {
					return nil, err
				}
				tools[i] = t.ExportConfig()
				return nil, nil
			},
		})
	}

	// 并发取数，按任务下标写入各自的结果槽
	results := make([]fetchResult, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(index int, t task) {
			defer wg.Done()
			apply, err := t.run(ctx)
			results[index] = fetchResult{kind: t.kind, id: t.id, apply: apply, err: err}
		}(i, t)
	}
	wg.Wait()

	// 统一收敛：缺失引用汇总为一个聚合错误，其余错误原样上抛
	var missing []MissingEntity
	for _, r := range results {
		if r.err == nil {
			continue
		}
		if errors.Is(r.err, store.ErrNotFound) || errors.Is(r.err, store.ErrInvalidID) {
			missing = append(missing, MissingEntity{Kind: r.kind, ID: r.id})
			continue
		}
		return nil, fmt.Errorf("解析 %s/%s 失败: %w", r.kind, r.id, r.err)
	}
	if len(missing) > 0 {
		return nil, &EntitiesNotFoundError{Missing: missing}
	}

	cfg := &models.AgentConfiguration{
		AgentName:   agent.Name,
		Description: agent.Description,
		Language:    agent.Language,
		Retrievers:  retrieverConfigs,
		Tools:       tools,
	}
	if len(retrieverConfigs) == 0 {
		cfg.Retrievers = nil
	}
	if len(tools) == 0 {
		cfg.Tools = nil
	}
	for _, r := range results {
		if r.apply == nil {
			continue
		}
		if err := r.apply(cfg); err != nil {
			return nil, err
		}
	}

	mcpConfig, err := buildMCPConfig(mcpServers)
	if err != nil {
		return nil, err
	}
	cfg.MCP = mcpConfig
	return cfg, nil
}

// buildMCPConfig 按服务器名组织连接配置，重名直接拒绝
func buildMCPConfig(servers []models.MCPServer) (*models.MCPConfig, error) {
	if len(servers) == 0 {
		return nil, nil
	}
	connections := make(map[string]models.MCPConnection, len(servers))
	for _, srv := range servers {
		name := srv.ServerName()
		if _, exists := connections[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMCPName, name)
		}
		connections[name] = srv.ConnectionConfig()
	}
	return &models.MCPConfig{Connections: connections}, nil
}
