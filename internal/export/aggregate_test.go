package export

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
	"backend/internal/store"
)

// --- 测试替身 ---

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s/%s", store.ErrNotFound, kind, id)
}

type fakeChatModels map[string]models.ChatModel

func (f fakeChatModels) Get(_ context.Context, id string) (models.ChatModel, error) {
	if m, ok := f[id]; ok {
		return m, nil
	}
	return nil, notFound(KindChatModel, id)
}

type fakePrompts map[string]*models.Prompt

func (f fakePrompts) Get(_ context.Context, id string) (*models.Prompt, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, notFound(KindPrompt, id)
}

type fakeRetrievers map[string]models.RetrieverConfig

func (f fakeRetrievers) ResolveConfig(_ context.Context, id, _ string) (models.RetrieverConfig, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	return nil, notFound(KindRetriever, id)
}

type fakeRecognizers map[string]*models.RecognizerConfig

func (f fakeRecognizers) ResolveConfig(_ context.Context, id, _ string) (*models.RecognizerConfig, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	return nil, notFound(KindRecognizer, id)
}

type fakeMCPServers map[string]models.MCPServer

func (f fakeMCPServers) Get(_ context.Context, id string) (models.MCPServer, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, notFound(KindMCPServer, id)
}

type fakeTools map[string]models.Tool

func (f fakeTools) Get(_ context.Context, id string) (models.Tool, error) {
	if tl, ok := f[id]; ok {
		return tl, nil
	}
	return nil, notFound(KindTool, id)
}

func testFetchers() Fetchers {
	return Fetchers{
		ChatModels: fakeChatModels{
			"llm-1": models.GoogleGenAIChatModel{
				ID:        primitive.NewObjectID(),
				Type:      models.ChatModelGoogleGenAI,
				ModelName: "gemini-pro",
			},
		},
		Prompts: fakePrompts{
			"prompt-1": {Name: "default", RespondPrompt: "你是一个助手"},
		},
		Retrievers: fakeRetrievers{
			"ret-1": models.BM25Config{Type: models.RetrieverBM25, Name: "bm25-a", Weight: 0.4},
			"ret-2": models.ChromaConfig{Type: models.RetrieverChroma, Name: "chroma-b", Weight: 0.6},
			"ret-3": models.BM25Config{Type: models.RetrieverBM25, Name: "bm25-c", Weight: 1.0},
		},
		Recognizers: fakeRecognizers{
			"rec-1": {Enable: true, MinProbability: 0.5, MaxResults: 3},
		},
		MCPServers: fakeMCPServers{
			"mcp-1": models.MCPStreamableServer{Name: "search", URL: "http://mcp.local/a"},
			"mcp-2": models.MCPStdioServer{Name: "files", Command: "mcp-files"},
		},
		Tools: fakeTools{
			"tool-1": models.DuckDuckGoSearchTool{Type: models.ToolDuckDuckGoSearch, Name: "ddg", MaxResults: 4},
		},
	}
}

func testAgent() *models.Agent {
	return &models.Agent{
		Name:              "demo-agent",
		Description:       "测试智能体",
		Language:          "en",
		ChatModelID:       "llm-1",
		PromptID:          "prompt-1",
		ImageRecognizerID: "rec-1",
		RetrieverIDs:      []string{"ret-1", "ret-2", "ret-3"},
		MCPServerIDs:      []string{"mcp-1", "mcp-2"},
		ToolIDs:           []string{"tool-1"},
	}
}

func TestAssembleFullAgent(t *testing.T) {
	agg := NewAggregator(testFetchers())

	cfg, err := agg.Assemble(context.Background(), testAgent(), t.TempDir(), t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "demo-agent", cfg.AgentName)
	assert.Equal(t, "en", cfg.Language)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, models.ChatModelGoogleGenAI, cfg.LLM.Kind())
	// 导出配置不携带文档 ID
	assert.True(t, cfg.LLM.DocumentID().IsZero())
	require.NotNil(t, cfg.Prompt)
	assert.Equal(t, "default", cfg.Prompt.Name)
	require.NotNil(t, cfg.ImageRecognizer)
	assert.True(t, cfg.ImageRecognizer.Enable)

	// 检索器保持引用顺序
	require.Len(t, cfg.Retrievers, 3)
	assert.Equal(t, "bm25-a", cfg.Retrievers[0].(models.BM25Config).Name)
	assert.Equal(t, "chroma-b", cfg.Retrievers[1].(models.ChromaConfig).Name)
	assert.Equal(t, "bm25-c", cfg.Retrievers[2].(models.BM25Config).Name)

	require.NotNil(t, cfg.MCP)
	assert.Len(t, cfg.MCP.Connections, 2)
	assert.Contains(t, cfg.MCP.Connections, "search")
	assert.Contains(t, cfg.MCP.Connections, "files")

	require.Len(t, cfg.Tools, 1)
}

func TestAssembleMinimalAgent(t *testing.T) {
	agg := NewAggregator(testFetchers())
	agent := &models.Agent{
		Name:        "minimal",
		Language:    "vi",
		ChatModelID: "llm-1",
		PromptID:    "prompt-1",
	}

	cfg, err := agg.Assemble(context.Background(), agent, t.TempDir(), t.TempDir())
	require.NoError(t, err)

	assert.Nil(t, cfg.ImageRecognizer)
	assert.Nil(t, cfg.Retrievers)
	assert.Nil(t, cfg.MCP)
	assert.Nil(t, cfg.Tools)
}

func TestAssembleAtomicOnMissingRetriever(t *testing.T) {
	agg := NewAggregator(testFetchers())
	agent := testAgent()
	agent.RetrieverIDs = []string{"ret-1", "ret-missing", "ret-3"}

	cfg, err := agg.Assemble(context.Background(), agent, t.TempDir(), t.TempDir())
	assert.Nil(t, cfg)

	var notFoundErr *EntitiesNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	require.Len(t, notFoundErr.Missing, 1)
	assert.Equal(t, MissingEntity{Kind: KindRetriever, ID: "ret-missing"}, notFoundErr.Missing[0])
}

func TestAssembleCollectsAllMissing(t *testing.T) {
	agg := NewAggregator(testFetchers())
	agent := testAgent()
	agent.ChatModelID = "llm-missing"
	agent.ToolIDs = []string{"tool-missing"}

	_, err := agg.Assemble(context.Background(), agent, t.TempDir(), t.TempDir())

	var notFoundErr *EntitiesNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Len(t, notFoundErr.Missing, 2)
	assert.Contains(t, err.Error(), "llm-missing")
	assert.Contains(t, err.Error(), "tool-missing")
}

func TestAssembleRejectsDuplicateMCPNames(t *testing.T) {
	fetchers := testFetchers()
	fetchers.MCPServers = fakeMCPServers{
		"mcp-1": models.MCPStreamableServer{Name: "search", URL: "http://mcp.local/a"},
		"mcp-2": models.MCPStdioServer{Name: "search", Command: "mcp-files"},
	}
	agg := NewAggregator(fetchers)

	_, err := agg.Assemble(context.Background(), testAgent(), t.TempDir(), t.TempDir())
	assert.ErrorIs(t, err, ErrDuplicateMCPName)
}
