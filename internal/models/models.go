package models

import "errors"

// 实体文档通用错误
var (
	// ErrUnknownType 文档的 type 判别字段不属于已知变体
	ErrUnknownType = errors.New("unknown entity type")
	// ErrInvalidDocument 文档字段不满足约束
	ErrInvalidDocument = errors.New("invalid entity document")
)

// SupportedLanguages 智能体支持的语言
var SupportedLanguages = map[string]string{
	"vi": "Vietnamese",
	"en": "English",
}
