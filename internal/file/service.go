package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"backend/internal/export"
	"backend/internal/logger"
	"backend/internal/models"
	"backend/internal/store"
)

// ErrFileTooLarge 上传内容超过大小限制
var ErrFileTooLarge = errors.New("file exceeds size limit")

// Store 本服务依赖的文档存取能力
type Store interface {
	GetByID(ctx context.Context, collection, id string, out any) error
	FindRawPage(ctx context.Context, collection string, offset, limit int) ([]bson.Raw, int64, error)
	Create(ctx context.Context, collection string, doc any) (string, error)
	DeleteByID(ctx context.Context, collection, id string) error
}

// Service 文件存储服务：上传落盘、元数据管理与下载令牌签发
type Service struct {
	store    Store
	tokens   *export.TokenCodec
	localDir string
	maxSize  int64
	tokenTTL time.Duration
}

// NewService 创建文件服务
func NewService(st Store, tokens *export.TokenCodec, localDir string, maxSize int64, tokenTTL time.Duration) *Service {
	return &Service{
		store:    st,
		tokens:   tokens,
		localDir: localDir,
		maxSize:  maxSize,
		tokenTTL: tokenTTL,
	}
}

// Upload 保存上传内容到本地存储并登记元数据，返回文件 ID
func (s *Service) Upload(ctx context.Context, name, mimeType string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.localDir, 0o755); err != nil {
		return "", fmt.Errorf("创建存储目录失败: %w", err)
	}

	// 磁盘文件名用随机标识，原始名只存在元数据中
	path := filepath.Join(s.localDir, uuid.NewString()+filepath.Ext(name))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建存储文件失败: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(r, s.maxSize+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxSize {
		err = fmt.Errorf("%w: 限制 %d 字节", ErrFileTooLarge, s.maxSize)
	}
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			logger.Warn("清理上传残留文件失败", zap.Error(removeErr))
		}
		return "", err
	}

	doc := models.File{Name: name, MimeType: mimeType, Path: path}
	id, err := s.store.Create(ctx, store.CollectionFile, doc)
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			logger.Warn("清理上传残留文件失败", zap.Error(removeErr))
		}
		return "", err
	}
	return id, nil
}

// Get 按 ID 查询文件元数据
func (s *Service) Get(ctx context.Context, id string) (*models.File, error) {
	var f models.File
	if err := s.store.GetByID(ctx, store.CollectionFile, id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// List 分页查询文件元数据
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.File, int64, error) {
	raws, total, err := s.store.FindRawPage(ctx, store.CollectionFile, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.File, 0, len(raws))
	for _, raw := range raws {
		var f models.File
		if err := bson.Unmarshal(raw, &f); err != nil {
			return nil, 0, fmt.Errorf("解码文件元数据失败: %w", err)
		}
		items = append(items, f)
	}
	return items, total, nil
}

// Delete 删除文件元数据与磁盘内容
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, store.CollectionFile, id); err != nil {
		return err
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除磁盘文件失败: %w", err)
	}
	return nil
}

// IssueDownloadToken 为已登记的文件签发限时下载令牌
func (s *Service) IssueDownloadToken(ctx context.Context, id string) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(export.FileInformation{
		Name:     f.Name,
		MimeType: f.MimeType,
		Path:     f.Path,
	}, s.tokenTTL, "")
}

// CopyTo 把已登记的文件复制进目标目录，文件名用元数据中的原始名，
// 返回复制后的绝对路径
func (s *Service) CopyTo(ctx context.Context, id, destDir string) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	src, err := os.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("打开存储文件失败: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, f.Name)
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("创建导出文件失败: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("复制导出文件失败: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("写入导出文件失败: %w", err)
	}
	return destPath, nil
}
