package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agent 智能体文档，仅保存对其他实体的引用
type Agent struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name" binding:"required"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Language          string             `bson:"language" json:"language" binding:"required"`
	ChatModelID       string             `bson:"llm_id" json:"llm_id" binding:"required"`
	PromptID          string             `bson:"prompt_id" json:"prompt_id" binding:"required"`
	ImageRecognizerID string             `bson:"image_recognizer_id,omitempty" json:"image_recognizer_id,omitempty"`
	RetrieverIDs      []string           `bson:"retriever_ids,omitempty" json:"retriever_ids,omitempty"`
	MCPServerIDs      []string           `bson:"mcp_server_ids,omitempty" json:"mcp_server_ids,omitempty"`
	ToolIDs           []string           `bson:"tool_ids,omitempty" json:"tool_ids,omitempty"`
}

// Validate 校验智能体字段约束
func (a *Agent) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name 不能为空", ErrInvalidDocument)
	}
	if _, ok := SupportedLanguages[a.Language]; !ok {
		return fmt.Errorf("%w: 不支持的语言 %q", ErrInvalidDocument, a.Language)
	}
	if a.ChatModelID == "" || a.PromptID == "" {
		return fmt.Errorf("%w: llm_id 和 prompt_id 不能为空", ErrInvalidDocument)
	}
	return nil
}

// AgentConfiguration 组合导出配置：一次导出的最终产物
// 组装完成后即不再变更，仅用于序列化为 config.json
type AgentConfiguration struct {
	AgentName       string            `json:"agent_name"`
	Description     string            `json:"description,omitempty"`
	Language        string            `json:"language,omitempty"`
	LLM             ChatModel         `json:"llm"`
	Prompt          *Prompt           `json:"prompt"`
	ImageRecognizer *RecognizerConfig `json:"image_recognizer,omitempty"`
	Retrievers      []RetrieverConfig `json:"retrievers,omitempty"`
	MCP             *MCPConfig        `json:"mcp,omitempty"`
	Tools           []Tool            `json:"tools,omitempty"`
}

// CredentialEnvs 汇总运行该导出配置所需的全部凭证环境变量名（去重，保序）
func (c *AgentConfiguration) CredentialEnvs() []string {
	seen := make(map[string]struct{})
	var envs []string
	add := func(env string) {
		if env == "" {
			return
		}
		if _, ok := seen[env]; ok {
			return
		}
		seen[env] = struct{}{}
		envs = append(envs, env)
	}

	if c.LLM != nil {
		add(c.LLM.APIKeyEnv())
	}
	for _, r := range c.Retrievers {
		for _, env := range r.CredentialEnvs() {
			add(env)
		}
	}
	for _, t := range c.Tools {
		add(t.APIKeyEnv())
	}
	return envs
}
