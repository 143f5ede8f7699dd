package prompt

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
	"backend/internal/store"
)

// ErrEmptyName 提示词名称不能为空
var ErrEmptyName = errors.New("prompt name is required")

// Store 本服务依赖的文档存取能力
type Store interface {
	GetByID(ctx context.Context, collection, id string, out any) error
	FindRawPage(ctx context.Context, collection string, offset, limit int) ([]bson.Raw, int64, error)
	Create(ctx context.Context, collection string, doc any) (string, error)
	UpdateByID(ctx context.Context, collection, id string, doc any) error
	DeleteByID(ctx context.Context, collection, id string) error
}

// Service 提示词配置服务
type Service struct {
	store Store
}

// NewService 创建提示词服务
func NewService(st Store) *Service {
	return &Service{store: st}
}

// Get 按 ID 查询提示词
func (s *Service) Get(ctx context.Context, id string) (*models.Prompt, error) {
	var p models.Prompt
	if err := s.store.GetByID(ctx, store.CollectionPrompt, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List 分页查询提示词
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Prompt, int64, error) {
	raws, total, err := s.store.FindRawPage(ctx, store.CollectionPrompt, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.Prompt, 0, len(raws))
	for _, raw := range raws {
		var p models.Prompt
		if err := bson.Unmarshal(raw, &p); err != nil {
			return nil, 0, fmt.Errorf("解码提示词失败: %w", err)
		}
		items = append(items, p)
	}
	return items, total, nil
}

// Create 创建提示词
func (s *Service) Create(ctx context.Context, p *models.Prompt) (string, error) {
	if p.Name == "" {
		return "", ErrEmptyName
	}
	return s.store.Create(ctx, store.CollectionPrompt, p)
}

// Update 按 ID 更新提示词
func (s *Service) Update(ctx context.Context, id string, p *models.Prompt) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	return s.store.UpdateByID(ctx, store.CollectionPrompt, id, p)
}

// Delete 按 ID 删除提示词
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, store.CollectionPrompt, id)
}
