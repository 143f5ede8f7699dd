package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatModelType 聊天模型类型
type ChatModelType string

const (
	ChatModelGoogleGenAI ChatModelType = "google_genai"
	ChatModelOllama      ChatModelType = "ollama"
)

// ChatModel 聊天模型文档（封闭变体集合）
type ChatModel interface {
	DocumentID() primitive.ObjectID
	Kind() ChatModelType
	// APIKeyEnv 返回该提供商的凭证环境变量名，无需凭证时返回空串
	APIKeyEnv() string
	// ExportConfig 返回导出用配置（去掉文档 ID 的裸配置负载）
	ExportConfig() ChatModel
}

// GoogleGenAIChatModel Google GenAI 聊天模型
type GoogleGenAIChatModel struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type           ChatModelType      `bson:"type" json:"type"`
	ModelName      string             `bson:"model_name" json:"model_name"`
	Temperature    float64            `bson:"temperature" json:"temperature"`
	MaxTokens      int                `bson:"max_tokens" json:"max_tokens"`
	MaxRetries     int                `bson:"max_retries" json:"max_retries"`
	Timeout        *float64           `bson:"timeout,omitempty" json:"timeout,omitempty"`
	TopK           *int               `bson:"top_k,omitempty" json:"top_k,omitempty"`
	TopP           *float64           `bson:"top_p,omitempty" json:"top_p,omitempty"`
	SafetySettings map[string]string  `bson:"safety_settings,omitempty" json:"safety_settings,omitempty"`
}

func (m GoogleGenAIChatModel) DocumentID() primitive.ObjectID { return m.ID }
func (m GoogleGenAIChatModel) Kind() ChatModelType            { return ChatModelGoogleGenAI }
func (m GoogleGenAIChatModel) APIKeyEnv() string              { return "GOOGLE_API_KEY" }

func (m GoogleGenAIChatModel) ExportConfig() ChatModel {
	m.ID = primitive.NilObjectID
	return m
}

// OllamaChatModel Ollama 本地聊天模型
type OllamaChatModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type        ChatModelType      `bson:"type" json:"type"`
	ModelName   string             `bson:"model_name" json:"model_name"`
	BaseURL     string             `bson:"base_url,omitempty" json:"base_url,omitempty"`
	Temperature float64            `bson:"temperature" json:"temperature"`
	NumPredict  int                `bson:"num_predict" json:"num_predict"`
	TopK        *int               `bson:"top_k,omitempty" json:"top_k,omitempty"`
	TopP        *float64           `bson:"top_p,omitempty" json:"top_p,omitempty"`
}

func (m OllamaChatModel) DocumentID() primitive.ObjectID { return m.ID }
func (m OllamaChatModel) Kind() ChatModelType            { return ChatModelOllama }

// Ollama 为本地部署，不需要凭证
func (m OllamaChatModel) APIKeyEnv() string { return "" }

func (m OllamaChatModel) ExportConfig() ChatModel {
	m.ID = primitive.NilObjectID
	return m
}

type chatModelHead struct {
	Type ChatModelType `bson:"type" json:"type"`
}

// DecodeChatModelBSON 按 type 字段解码聊天模型文档
func DecodeChatModelBSON(raw bson.Raw) (ChatModel, error) {
	var head chatModelHead
	if err := bson.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解码聊天模型失败: %w", err)
	}
	switch head.Type {
	case ChatModelGoogleGenAI:
		var m GoogleGenAIChatModel
		if err := bson.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case ChatModelOllama:
		var m OllamaChatModel
		if err := bson.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的聊天模型类型 %q", ErrUnknownType, head.Type)
	}
}

// DecodeChatModelJSON 按 type 字段解码聊天模型请求体
func DecodeChatModelJSON(data []byte) (ChatModel, error) {
	var head chatModelHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("解析聊天模型请求失败: %w", err)
	}
	switch head.Type {
	case ChatModelGoogleGenAI:
		var m GoogleGenAIChatModel
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		if m.ModelName == "" {
			return nil, fmt.Errorf("%w: model_name 不能为空", ErrInvalidDocument)
		}
		return m, nil
	case ChatModelOllama:
		var m OllamaChatModel
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		if m.ModelName == "" {
			return nil, fmt.Errorf("%w: model_name 不能为空", ErrInvalidDocument)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的聊天模型类型 %q", ErrUnknownType, head.Type)
	}
}
