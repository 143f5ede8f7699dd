package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MCPServerType MCP 服务器连接类型
type MCPServerType string

const (
	MCPStreamable MCPServerType = "streamable"
	MCPStdio      MCPServerType = "stdio"
)

// MCPServer MCP 服务器文档（封闭变体集合）
type MCPServer interface {
	DocumentID() primitive.ObjectID
	Kind() MCPServerType
	ServerName() string
	// ConnectionConfig 返回导出用连接配置（不含文档 ID 与名称之外的引用）
	ConnectionConfig() MCPConnection
}

// MCPConnection 导出态 MCP 连接配置（封闭变体集合）
type MCPConnection interface {
	mcpConnection()
}

// MCPStreamableServer 基于 Streamable HTTP 的 MCP 服务器
type MCPStreamableServer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type           MCPServerType      `bson:"type" json:"type"`
	Name           string             `bson:"name" json:"name"`
	URL            string             `bson:"url" json:"url"`
	Headers        map[string]string  `bson:"headers,omitempty" json:"headers,omitempty"`
	TimeoutSeconds int                `bson:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty"`
}

func (s MCPStreamableServer) DocumentID() primitive.ObjectID { return s.ID }
func (s MCPStreamableServer) Kind() MCPServerType            { return MCPStreamable }
func (s MCPStreamableServer) ServerName() string             { return s.Name }

func (s MCPStreamableServer) ConnectionConfig() MCPConnection {
	return MCPStreamableConnection{
		Transport:      MCPStreamable,
		URL:            s.URL,
		Headers:        s.Headers,
		TimeoutSeconds: s.TimeoutSeconds,
	}
}

// MCPStdioServer 基于 stdio 的 MCP 服务器
type MCPStdioServer struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type    MCPServerType      `bson:"type" json:"type"`
	Name    string             `bson:"name" json:"name"`
	Command string             `bson:"command" json:"command"`
	Args    []string           `bson:"args,omitempty" json:"args,omitempty"`
	Env     map[string]string  `bson:"env,omitempty" json:"env,omitempty"`
}

func (s MCPStdioServer) DocumentID() primitive.ObjectID { return s.ID }
func (s MCPStdioServer) Kind() MCPServerType            { return MCPStdio }
func (s MCPStdioServer) ServerName() string             { return s.Name }

func (s MCPStdioServer) ConnectionConfig() MCPConnection {
	return MCPStdioConnection{
		Transport: MCPStdio,
		Command:   s.Command,
		Args:      s.Args,
		Env:       s.Env,
	}
}

// MCPStreamableConnection Streamable HTTP 连接配置
type MCPStreamableConnection struct {
	Transport      MCPServerType     `json:"transport"`
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
}

func (MCPStreamableConnection) mcpConnection() {}

// MCPStdioConnection stdio 连接配置
type MCPStdioConnection struct {
	Transport MCPServerType     `json:"transport"`
	Command   string            `json:"command"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

func (MCPStdioConnection) mcpConnection() {}

// MCPConfig 导出态 MCP 配置，按服务器名索引连接
type MCPConfig struct {
	Connections map[string]MCPConnection `json:"connections"`
}

type mcpHead struct {
	Type MCPServerType `bson:"type" json:"type"`
}

// DecodeMCPServerBSON 按 type 字段解码 MCP 服务器文档
func DecodeMCPServerBSON(raw bson.Raw) (MCPServer, error) {
	var head mcpHead
	if err := bson.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解码 MCP 服务器失败: %w", err)
	}
	switch head.Type {
	case MCPStreamable:
		var s MCPStreamableServer
		if err := bson.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case MCPStdio:
		var s MCPStdioServer
		if err := bson.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的 MCP 服务器类型 %q", ErrUnknownType, head.Type)
	}
}

// DecodeMCPServerJSON 按 type 字段解码 MCP 服务器请求体
func DecodeMCPServerJSON(data []byte) (MCPServer, error) {
	var head mcpHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("解析 MCP 服务器请求失败: %w", err)
	}
	switch head.Type {
	case MCPStreamable:
		var s MCPStreamableServer
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if s.Name == "" || s.URL == "" {
			return nil, fmt.Errorf("%w: name 和 url 不能为空", ErrInvalidDocument)
		}
		return s, nil
	case MCPStdio:
		var s MCPStdioServer
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if s.Name == "" || s.Command == "" {
			return nil, fmt.Errorf("%w: name 和 command 不能为空", ErrInvalidDocument)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的 MCP 服务器类型 %q", ErrUnknownType, head.Type)
	}
}
