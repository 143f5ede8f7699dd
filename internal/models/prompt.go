package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prompt 提示词文档
type Prompt struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                  string             `bson:"name" json:"name" binding:"required"`
	RespondPrompt         string             `bson:"respond_prompt" json:"respond_prompt" binding:"required,min=11"`
	SuggestQuestionsPrompt string            `bson:"suggest_questions_prompt,omitempty" json:"suggest_questions_prompt,omitempty"`
}

// ExportConfig 返回导出用配置（去掉文档 ID）
func (p Prompt) ExportConfig() Prompt {
	p.ID = primitive.NilObjectID
	return p
}

// File 上传文件元数据文档
type File struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	MimeType string             `bson:"mime_type" json:"mime_type"`
	Path     string             `bson:"path" json:"path"`
}
