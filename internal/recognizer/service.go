package recognizer

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

// classesFileName 识别器输出类别文件名
const classesFileName = "classes.json"

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

// Service 图像识别器配置服务
type Service struct {
	store Store
	files FileCopier
}

// NewService 创建识别器服务
func NewService(st Store, files FileCopier) *Service {
	return &Service{store: st, files: files}
}

// Get 按 ID 查询识别器
func (s *Service) Get(ctx context.Context, id string) (*models.ImageRecognizer, error) {
	raw, err := s.store.GetRawByID(ctx, store.CollectionRecognizer, id)
	if err != nil {
		return nil, err
	}
	return models.DecodeRecognizerBSON(raw)
}

// List 分页查询识别器
func (s *Service) List(ctx context.Context, offset, limit int) ([]*models.ImageRecognizer, int64, error) {
	raws, total, err := s.store.FindRawPage(ctx, store.CollectionRecognizer, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]*models.ImageRecognizer, 0, len(raws))
	for _, raw := range raws {
		r, err := models.DecodeRecognizerBSON(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("解码识别器失败: %w", err)
		}
		items = append(items, r)
	}
	return items, total, nil
}

// Create 创建识别器
func (s *Service) Create(ctx context.Context, payload []byte) (string, error) {
	doc, err := models.DecodeRecognizerJSON(payload)
	if err != nil {
		return "", err
	}
	return s.store.Create(ctx, store.CollectionRecognizer, doc)
}

// Update 按 ID 更新识别器
func (s *Service) Update(ctx context.Context, id string, payload []byte) error {
	doc, err := models.DecodeRecognizerJSON(payload)
	if err != nil {
		return err
	}
	return s.store.UpdateByID(ctx, store.CollectionRecognizer, id, doc)
}

// Delete 按 ID 删除识别器
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, store.CollectionRecognizer, id)
}

// archiveRelPath 物化产物在配置归档内的相对路径：目录名/文件名
func archiveRelPath(destDir, path string) string {
	return filepath.ToSlash(filepath.Join(filepath.Base(destDir), filepath.Base(path)))
}

// ResolveConfig 解析识别器为导出态配置：模型文件复制到 destDir，
// 输出类别去重后写入类别文件。
// 配置中记录的是归档内相对路径，供配置包的使用方按相对位置读取
func (s *Service) ResolveConfig(ctx context.Context, id, destDir string) (*models.RecognizerConfig, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	modelPath, err := s.files.CopyTo(ctx, doc.ModelFileID, destDir)
	if err != nil {
		return nil, fmt.Errorf("导出识别器 %s 的模型文件失败: %w", doc.Name, err)
	}

	output := models.RecognizerOutput{
		IsConfigured: true,
		Classes:      models.DedupOutputClasses(doc.OutputClasses),
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("编码识别器 %s 的输出类别失败: %w", doc.Name, err)
	}
	classesPath := filepath.Join(destDir, classesFileName)
	if err := os.WriteFile(classesPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("导出识别器 %s 的输出类别失败: %w", doc.Name, err)
	}

	return &models.RecognizerConfig{
		Enable:           doc.Enable,
		MinProbability:   doc.MinProbability,
		MaxResults:       doc.MaxResults,
		Path:             archiveRelPath(destDir, modelPath),
		OutputConfigPath: archiveRelPath(destDir, classesPath),
		Preprocessing:    doc.PreprocessingConfigs,
	}, nil
}
