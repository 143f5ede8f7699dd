package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToolType 工具类型
type ToolType string

const (
	ToolDuckDuckGoSearch ToolType = "duckduckgo_search"
)

// Tool 工具文档（封闭变体集合）
type Tool interface {
	DocumentID() primitive.ObjectID
	Kind() ToolType
	ToolName() string
	APIKeyEnv() string
	ExportConfig() Tool
}

// DuckDuckGoSearchTool DuckDuckGo 搜索工具
type DuckDuckGoSearchTool struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type       ToolType           `bson:"type" json:"type"`
	Name       string             `bson:"name" json:"name"`
	MaxResults int                `bson:"max_results" json:"max_results"`
}

func (t DuckDuckGoSearchTool) DocumentID() primitive.ObjectID { return t.ID }
func (t DuckDuckGoSearchTool) Kind() ToolType                 { return ToolDuckDuckGoSearch }
func (t DuckDuckGoSearchTool) ToolName() string               { return t.Name }

// DuckDuckGo 搜索无需凭证
func (t DuckDuckGoSearchTool) APIKeyEnv() string { return "" }

func (t DuckDuckGoSearchTool) ExportConfig() Tool {
	t.ID = primitive.NilObjectID
	return t
}

type toolHead struct {
	Type ToolType `bson:"type" json:"type"`
}

// DecodeToolBSON 按 type 字段解码工具文档
func DecodeToolBSON(raw bson.Raw) (Tool, error) {
	var head toolHead
	if err := bson.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解码工具失败: %w", err)
	}
	switch head.Type {
	case ToolDuckDuckGoSearch:
		var t DuckDuckGoSearchTool
		if err := bson.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的工具类型 %q", ErrUnknownType, head.Type)
	}
}

// DecodeToolJSON 按 type 字段解码工具请求体
func DecodeToolJSON(data []byte) (Tool, error) {
	var head toolHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("解析工具请求失败: %w", err)
	}
	switch head.Type {
	case ToolDuckDuckGoSearch:
		var t DuckDuckGoSearchTool
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		if t.Name == "" {
			return nil, fmt.Errorf("%w: name 不能为空", ErrInvalidDocument)
		}
		if t.MaxResults <= 0 {
			t.MaxResults = 4
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的工具类型 %q", ErrUnknownType, head.Type)
	}
}
