package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RetrieverType 检索器类型
type RetrieverType string

const (
	RetrieverBM25   RetrieverType = "bm25"
	RetrieverChroma RetrieverType = "chroma_db"
)

// Retriever 检索器文档（封闭变体集合）
type Retriever interface {
	DocumentID() primitive.ObjectID
	Kind() RetrieverType
	RetrieverName() string
	// EmbeddingsRef 返回关联向量化模型的 ID
	EmbeddingsRef() string
}

// BM25Retriever 基于 BM25 的检索器
type BM25Retriever struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type               RetrieverType      `bson:"type" json:"type"`
	Name               string             `bson:"name" json:"name"`
	Weight             float64            `bson:"weight" json:"weight"`
	K1                 float64            `bson:"k1" json:"k1"`
	B                  float64            `bson:"b" json:"b"`
	EmbeddingsID       string             `bson:"embeddings_id" json:"embeddings_id"`
	RemovalWordsFileID string             `bson:"removal_words_file_id,omitempty" json:"removal_words_file_id,omitempty"`
}

func (r BM25Retriever) DocumentID() primitive.ObjectID { return r.ID }
func (r BM25Retriever) Kind() RetrieverType            { return RetrieverBM25 }
func (r BM25Retriever) RetrieverName() string          { return r.Name }
func (r BM25Retriever) EmbeddingsRef() string          { return r.EmbeddingsID }

// ChromaRetriever 基于 Chroma 向量库的检索器
type ChromaRetriever struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type         RetrieverType      `bson:"type" json:"type"`
	Name         string             `bson:"name" json:"name"`
	Weight       float64            `bson:"weight" json:"weight"`
	Tenant       string             `bson:"tenant" json:"tenant"`
	Database     string             `bson:"database" json:"database"`
	EmbeddingsID string             `bson:"embeddings_id" json:"embeddings_id"`
	ExternalData []ExternalDocument `bson:"external_data,omitempty" json:"external_data,omitempty"`
}

func (r ChromaRetriever) DocumentID() primitive.ObjectID { return r.ID }
func (r ChromaRetriever) Kind() RetrieverType            { return RetrieverChroma }
func (r ChromaRetriever) RetrieverName() string          { return r.Name }
func (r ChromaRetriever) EmbeddingsRef() string          { return r.EmbeddingsID }

// ExternalDocument 检索器附带的外部文档
type ExternalDocument struct {
	Name    string `bson:"name" json:"name"`
	Content string `bson:"content" json:"content"`
}

// ExternalDocumentConfig 外部文档导出文件格式
type ExternalDocumentConfig struct {
	Version   string             `json:"version"`
	Documents []ExternalDocument `json:"documents"`
}

// RetrieverConfig 导出态检索器配置（封闭变体集合）
type RetrieverConfig interface {
	retrieverConfig()
	// CredentialEnvs 返回该检索器运行所需的凭证环境变量名
	CredentialEnvs() []string
}

// BM25Config BM25 检索器导出配置
type BM25Config struct {
	Type             RetrieverType `json:"type"`
	Name             string        `json:"name"`
	Weight           float64       `json:"weight"`
	K1               float64       `json:"k1"`
	B                float64       `json:"b"`
	EmbeddingsModel  Embeddings    `json:"embeddings_model"`
	RemovalWordsPath string        `json:"removal_words_path,omitempty"`
}

func (BM25Config) retrieverConfig() {}

func (c BM25Config) CredentialEnvs() []string {
	if c.EmbeddingsModel == nil {
		return nil
	}
	if env := c.EmbeddingsModel.APIKeyEnv(); env != "" {
		return []string{env}
	}
	return nil
}

// ChromaConfig Chroma 检索器导出配置
type ChromaConfig struct {
	Type                   RetrieverType `json:"type"`
	Name                   string        `json:"name"`
	Weight                 float64       `json:"weight"`
	Tenant                 string        `json:"tenant"`
	Database               string        `json:"database"`
	EmbeddingsModel        Embeddings    `json:"embeddings_model"`
	ExternalDataConfigPath string        `json:"external_data_config_path,omitempty"`
}

func (ChromaConfig) retrieverConfig() {}

func (c ChromaConfig) CredentialEnvs() []string {
	if c.EmbeddingsModel == nil {
		return nil
	}
	if env := c.EmbeddingsModel.APIKeyEnv(); env != "" {
		return []string{env}
	}
	return nil
}

type retrieverHead struct {
	Type RetrieverType `bson:"type" json:"type"`
}

// DecodeRetrieverBSON 按 type 字段解码检索器文档
func DecodeRetrieverBSON(raw bson.Raw) (Retriever, error) {
	var head retrieverHead
	if err := bson.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解码检索器失败: %w", err)
	}
	switch head.Type {
	case RetrieverBM25:
		var r BM25Retriever
		if err := bson.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return r, nil
	case RetrieverChroma:
		var r ChromaRetriever
		if err := bson.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的检索器类型 %q", ErrUnknownType, head.Type)
	}
}

// DecodeRetrieverJSON 按 type 字段解码检索器请求体
func DecodeRetrieverJSON(data []byte) (Retriever, error) {
	var head retrieverHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("解析检索器请求失败: %w", err)
	}
	switch head.Type {
	case RetrieverBM25:
		var r BM25Retriever
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		if r.Name == "" || r.EmbeddingsID == "" {
			return nil, fmt.Errorf("%w: name 和 embeddings_id 不能为空", ErrInvalidDocument)
		}
		return r, nil
	case RetrieverChroma:
		var r ChromaRetriever
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		if r.Name == "" || r.EmbeddingsID == "" {
			return nil, fmt.Errorf("%w: name 和 embeddings_id 不能为空", ErrInvalidDocument)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的检索器类型 %q", ErrUnknownType, head.Type)
	}
}
