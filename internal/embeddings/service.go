package embeddings

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
	"backend/internal/store"
)

// Store 本服务依赖的文档存取能力
type Store interface {
	GetRawByID(ctx context.Context, collection, id string) (bson.Raw, error)
	FindRawPage(ctx context.Context, collection string, offset, limit int) ([]bson.Raw, int64, error)
	Create(ctx context.Context, collection string, doc any) (string, error)
	UpdateByID(ctx context.Context, collection, id string, doc any) error
	DeleteByID(ctx context.Context, collection, id string) error
}

// Service 向量化模型配置服务
type Service struct {
	store Store
}

// NewService 创建向量化模型服务
func NewService(st Store) *Service {
	return &Service{store: st}
}

// Get 按 ID 查询向量化模型
func (s *Service) Get(ctx context.Context, id string) (models.Embeddings, error) {
	raw, err := s.store.GetRawByID(ctx, store.CollectionEmbeddings, id)
	if err != nil {
		return nil, err
	}
	return models.DecodeEmbeddingsBSON(raw)
}

// List 分页查询向量化模型
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Embeddings, int64, error) {
	raws, total, err := s.store.FindRawPage(ctx, store.CollectionEmbeddings, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.Embeddings, 0, len(raws))
	for _, raw := range raws {
		m, err := models.DecodeEmbeddingsBSON(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("解码向量化模型失败: %w", err)
		}
		items = append(items, m)
	}
	return items, total, nil
}

// Create 创建向量化模型
func (s *Service) Create(ctx context.Context, payload []byte) (string, error) {
	doc, err := models.DecodeEmbeddingsJSON(payload)
	if err != nil {
		return "", err
	}
	return s.store.Create(ctx, store.CollectionEmbeddings, doc)
}

// Update 按 ID 更新向量化模型
func (s *Service) Update(ctx context.Context, id string, payload []byte) error {
	doc, err := models.DecodeEmbeddingsJSON(payload)
	if err != nil {
		return err
	}
	return s.store.UpdateByID(ctx, store.CollectionEmbeddings, id, doc)
}

// Delete 按 ID 删除向量化模型
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, store.CollectionEmbeddings, id)
}
