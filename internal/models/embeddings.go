package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmbeddingsType 向量化模型类型
type EmbeddingsType string

const (
	EmbeddingsGoogleGenAI EmbeddingsType = "google_genai"
	EmbeddingsHuggingFace EmbeddingsType = "hugging_face"
)

// Embeddings 向量化模型文档（封闭变体集合）
type Embeddings interface {
	DocumentID() primitive.ObjectID
	Kind() EmbeddingsType
	APIKeyEnv() string
	ExportConfig() Embeddings
}

// GoogleGenAIEmbeddings Google GenAI 向量化模型
type GoogleGenAIEmbeddings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type      EmbeddingsType     `bson:"type" json:"type"`
	Name      string             `bson:"name" json:"name"`
	ModelName string             `bson:"model_name" json:"model_name"`
	TaskType  string             `bson:"task_type,omitempty" json:"task_type,omitempty"`
}

func (m GoogleGenAIEmbeddings) DocumentID() primitive.ObjectID { return m.ID }
func (m GoogleGenAIEmbeddings) Kind() EmbeddingsType           { return EmbeddingsGoogleGenAI }
func (m GoogleGenAIEmbeddings) APIKeyEnv() string              { return "GOOGLE_API_KEY" }

func (m GoogleGenAIEmbeddings) ExportConfig() Embeddings {
	m.ID = primitive.NilObjectID
	return m
}

// HuggingFaceEmbeddings HuggingFace 向量化模型
type HuggingFaceEmbeddings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type      EmbeddingsType     `bson:"type" json:"type"`
	Name      string             `bson:"name" json:"name"`
	ModelName string             `bson:"model_name" json:"model_name"`
}

func (m HuggingFaceEmbeddings) DocumentID() primitive.ObjectID { return m.ID }
func (m HuggingFaceEmbeddings) Kind() EmbeddingsType           { return EmbeddingsHuggingFace }
func (m HuggingFaceEmbeddings) APIKeyEnv() string              { return "HUGGINGFACEHUB_API_TOKEN" }

func (m HuggingFaceEmbeddings) ExportConfig() Embeddings {
	m.ID = primitive.NilObjectID
	return m
}

type embeddingsHead struct {
	Type EmbeddingsType `bson:"type" json:"type"`
}

// DecodeEmbeddingsBSON 按 type 字段解码向量化模型文档
func DecodeEmbeddingsBSON(raw bson.Raw) (Embeddings, error) {
	var head embeddingsHead
	if err := bson.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解码向量化模型失败: %w", err)
	}
	switch head.Type {
	case EmbeddingsGoogleGenAI:
		var m GoogleGenAIEmbeddings
		if err := bson.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case EmbeddingsHuggingFace:
		var m HuggingFaceEmbeddings
		if err := bson.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的向量化模型类型 %q", ErrUnknownType, head.Type)
	}
}

// DecodeEmbeddingsJSON 按 type 字段解码向量化模型请求体
func DecodeEmbeddingsJSON(data []byte) (Embeddings, error) {
	var head embeddingsHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("解析向量化模型请求失败: %w", err)
	}
	switch head.Type {
	case EmbeddingsGoogleGenAI:
		var m GoogleGenAIEmbeddings
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		if m.ModelName == "" {
			return nil, fmt.Errorf("%w: model_name 不能为空", ErrInvalidDocument)
		}
		return m, nil
	case EmbeddingsHuggingFace:
		var m HuggingFaceEmbeddings
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		if m.ModelName == "" {
			return nil, fmt.Errorf("%w: model_name 不能为空", ErrInvalidDocument)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的向量化模型类型 %q", ErrUnknownType, head.Type)
	}
}
