package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
	"backend/internal/store"
)

// externalDataVersion 外部文档导出文件的格式版本
const externalDataVersion = "1.0"

// EmbeddingsFetcher 按 ID 获取向量化模型
type EmbeddingsFetcher interface {
	Get(ctx context.Context, id string) (models.Embeddings, error)
}

// FileCopier 把已登记的文件复制进目标目录
type FileCopier interface {
	CopyTo(ctx context.Context, id, destDir string) (string, error)
}

// Store 本服务依赖的文档存取能力
type Store interface {
	GetRawByID(ctx context.Context, collection, id string) (bson.Raw, error)
	FindRawPage(ctx context.Context, collection string, offset, limit int) ([]bson.Raw, int64, error)
	Create(ctx context.Context, collection string, doc any) (string, error)
	UpdateByID(ctx context.Context, collection, id string, doc any) error
	DeleteByID(ctx context.Context, collection, id string) error
}

// Service 检索器配置服务
type Service struct {
	store      Store
	embeddings EmbeddingsFetcher
	files      FileCopier
}

// NewService 创建检索器服务
func NewService(st Store, embeddings EmbeddingsFetcher, files FileCopier) *Service {
	return &Service{store: st, embeddings: embeddings, files: files}
}

// Get 按 ID 查询检索器
func (s *Service) Get(ctx context.Context, id string) (models.Retriever, error) {
	raw, err := s.store.GetRawByID(ctx, store.CollectionRetriever, id)
	if err != nil {
		return nil, err
	}
	return models.DecodeRetrieverBSON(raw)
}

// List 分页查询检索器
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Retriever, int64, error) {
	raws, total, err := s.store.FindRawPage(ctx, store.CollectionRetriever, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.Retriever, 0, len(raws))
	for _, raw := range raws {
		r, err := models.DecodeRetrieverBSON(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("解码检索器失败: %w", err)
		}
		items = append(items, r)
	}
	return items, total, nil
}

// Create 创建检索器，写入前确认引用的向量化模型存在
func (s *Service) Create(ctx context.Context, payload []byte) (string, error) {
	doc, err := models.DecodeRetrieverJSON(payload)
	if err != nil {
		return "", err
	}
	if _, err := s.embeddings.Get(ctx, doc.EmbeddingsRef()); err != nil {
		return "", fmt.Errorf("校验检索器 %s 的向量化模型引用失败: %w", doc.RetrieverName(), err)
	}
	return s.store.Create(ctx, store.CollectionRetriever, doc)
}

// Update 按 ID 更新检索器，写入前确认引用的向量化模型存在
func (s *Service) Update(ctx context.Context, id string, payload []byte) error {
	doc, err := models.DecodeRetrieverJSON(payload)
	if err != nil {
		return err
	}
	if _, err := s.embeddings.Get(ctx, doc.EmbeddingsRef()); err != nil {
		return fmt.Errorf("校验检索器 %s 的向量化模型引用失败: %w", doc.RetrieverName(), err)
	}
	return s.store.UpdateByID(ctx, store.CollectionRetriever, id, doc)
}

// Delete 按 ID 删除检索器
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, store.CollectionRetriever, id)
}

// archiveRelPath 物化产物在配置归档内的相对路径：目录名/文件名
func archiveRelPath(destDir, path string) string {
	return filepath.ToSlash(filepath.Join(filepath.Base(destDir), filepath.Base(path)))
}

// ResolveConfig 解析检索器为导出态配置：载入关联的向量化模型，
// 并将附属文件（停用词表、外部文档）物化到 destDir。
// 配置中记录的是归档内相对路径，供配置包的使用方按相对位置读取
func (s *Service) ResolveConfig(ctx context.Context, id, destDir string) (models.RetrieverConfig, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	emb, err := s.embeddings.Get(ctx, doc.EmbeddingsRef())
	if err != nil {
		return nil, fmt.Errorf("解析检索器 %s 的向量化模型失败: %w", doc.RetrieverName(), err)
	}

	switch r := doc.(type) {
	case models.BM25Retriever:
		return s.resolveBM25(ctx, r, emb, destDir)
	case models.ChromaRetriever:
		return s.resolveChroma(r, emb, destDir)
	default:
		return nil, fmt.Errorf("%w: 检索器类型 %q", models.ErrUnknownType, doc.Kind())
	}
}

func (s *Service) resolveBM25(ctx context.Context, r models.BM25Retriever, emb models.Embeddings, destDir string) (models.RetrieverConfig, error) {
	cfg := models.BM25Config{
		Type:            models.RetrieverBM25,
		Name:            r.Name,
		Weight:          r.Weight,
		K1:              r.K1,
		B:               r.B,
		EmbeddingsModel: emb.ExportConfig(),
	}
	if r.RemovalWordsFileID != "" {
		path, err := s.files.CopyTo(ctx, r.RemovalWordsFileID, destDir)
		if err != nil {
			return nil, fmt.Errorf("导出检索器 %s 的停用词表失败: %w", r.Name, err)
		}
		cfg.RemovalWordsPath = archiveRelPath(destDir, path)
	}
	return cfg, nil
}

func (s *Service) resolveChroma(r models.ChromaRetriever, emb models.Embeddings, destDir string) (models.RetrieverConfig, error) {
	cfg := models.ChromaConfig{
		Type:            models.RetrieverChroma,
		Name:            r.Name,
		Weight:          r.Weight,
		Tenant:          r.Tenant,
		Database:        r.Database,
		EmbeddingsModel: emb.ExportConfig(),
	}
	if len(r.ExternalData) > 0 {
		path := filepath.Join(destDir, fmt.Sprintf("%s_external_data.json", r.Name))
		data, err := json.MarshalIndent(models.ExternalDocumentConfig{
			Version:   externalDataVersion,
			Documents: r.ExternalData,
		}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("编码检索器 %s 的外部文档失败: %w", r.Name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("导出检索器 %s 的外部文档失败: %w", r.Name, err)
		}
		cfg.ExternalDataConfigPath = archiveRelPath(destDir, path)
	}
	return cfg, nil
}
