package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/export"
	"backend/internal/models"
	"backend/internal/store"
)

// Store 本服务依赖的文档存取能力
type Store interface {
	GetByID(ctx context.Context, collection, id string, out any) error
	Exists(ctx context.Context, collection, id string) error
	FindRawPage(ctx context.Context, collection string, offset, limit int) ([]bson.Raw, int64, error)
	Create(ctx context.Context, collection string, doc any) (string, error)
	UpdateByID(ctx context.Context, collection, id string, doc any) error
	DeleteByID(ctx context.Context, collection, id string) error
}

// Service 智能体配置服务
type Service struct {
	store Store
}

// NewService 创建智能体服务
func NewService(st Store) *Service {
	return &Service{store: st}
}

// Get 按 ID 查询智能体
func (s *Service) Get(ctx context.Context, id string) (*models.Agent, error) {
	var a models.Agent
	if err := s.store.GetByID(ctx, store.CollectionAgent, id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List 分页查询智能体
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Agent, int64, error) {
	raws, total, err := s.store.FindRawPage(ctx, store.CollectionAgent, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.Agent, 0, len(raws))
	for _, raw := range raws {
		var a models.Agent
		if err := bson.Unmarshal(raw, &a); err != nil {
			return nil, 0, fmt.Errorf("解码智能体失败: %w", err)
		}
		items = append(items, a)
	}
	return items, total, nil
}

// Create 创建智能体
func (s *Service) Create(ctx context.Context, a *models.Agent) (string, error) {
	if err := s.validate(ctx, a); err != nil {
		return "", err
	}
	return s.store.Create(ctx, store.CollectionAgent, a)
}

// Update 按 ID 更新智能体
func (s *Service) Update(ctx context.Context, id string, a *models.Agent) error {
	if err := s.validate(ctx, a); err != nil {
		return err
	}
	return s.store.UpdateByID(ctx, store.CollectionAgent, id, a)
}

// Delete 按 ID 删除智能体
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, store.CollectionAgent, id)
}

// entityRef 一条待校验的实体引用
type entityRef struct {
	kind       string
	collection string
	id         string
}

// validate 校验字段约束，并并发确认每条引用的实体都存在；
// 缺失的引用汇总为一个 EntitiesNotFoundError，不做部分通过
func (s *Service) validate(ctx context.Context, a *models.Agent) error {
	if err := a.Validate(); err != nil {
		return err
	}

	refs := []entityRef{
		{export.KindChatModel, store.CollectionChatModel, a.ChatModelID},
		{export.KindPrompt, store.CollectionPrompt, a.PromptID},
	}
	if a.ImageRecognizerID != "" {
		refs = append(refs, entityRef{export.KindRecognizer, store.CollectionRecognizer, a.ImageRecognizerID})
	}
	for _, id := range a.RetrieverIDs {
		refs = append(refs, entityRef{export.KindRetriever, store.CollectionRetriever, id})
	}
	for _, id := range a.MCPServerIDs {
		refs = append(refs, entityRef{export.KindMCPServer, store.CollectionMCPServer, id})
	}
	for _, id := range a.ToolIDs {
		refs = append(refs, entityRef{export.KindTool, store.CollectionTool, id})
	}

	results := make([]error, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref entityRef) {
			defer wg.Done()
			results[i] = s.store.Exists(ctx, ref.collection, ref.id)
		}(i, ref)
	}
	wg.Wait()

	var missing []export.MissingEntity
	for i, err := range results {
		switch {
		case err == nil:
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
			missing = append(missing, export.MissingEntity{Kind: refs[i].kind, ID: refs[i].id})
		default:
			return fmt.Errorf("校验引用 %s/%s 失败: %w", refs[i].kind, refs[i].id, err)
		}
	}
	if len(missing) > 0 {
		return &export.EntitiesNotFoundError{Missing: missing}
	}
	return nil
}
