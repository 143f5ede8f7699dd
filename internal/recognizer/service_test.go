package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
	"backend/internal/store"
)

// fakeStore 以内存文档模拟存储层，仅读路径参与测试
type fakeStore struct {
	docs map[string]any
}

func (f *fakeStore) GetRawByID(_ context.Context, _, id string) (bson.Raw, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, store.CollectionRecognizer, id)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return bson.Raw(raw), nil
}

func (f *fakeStore) FindRawPage(context.Context, string, int, int) ([]bson.Raw, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) Create(context.Context, string, any) (string, error) { return "", nil }

func (f *fakeStore) UpdateByID(context.Context, string, string, any) error { return nil }

func (f *fakeStore) DeleteByID(context.Context, string, string) error { return nil }

type fakeCopier map[string]string

func (f fakeCopier) CopyTo(_ context.Context, id, destDir string) (string, error) {
	name, ok := f[id]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", store.ErrNotFound, store.CollectionFile, id)
	}
	path := filepath.Join(destDir, name)
	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func testRecognizer() *models.ImageRecognizer {
	return &models.ImageRecognizer{
		Type:           models.RecognizerImage,
		Name:           "classifier",
		Enable:         true,
		ModelFileID:    "file-1",
		MinProbability: 0.6,
		MaxResults:     3,
		OutputClasses: []models.OutputClass{
			{Name: "cat", Description: "猫"},
			{Name: "dog", Description: "狗"},
			{Name: "cat", Description: "重复的猫"},
		},
		PreprocessingConfigs: []models.ImagePreprocessing{
			models.ImageResize{Type: models.PreprocessingResize, TargetSize: 224, Antialias: true},
			models.ImageGrayscale{Type: models.PreprocessingGrayscale, NumOutputChannel: 1},
		},
	}
}

func TestResolveConfig(t *testing.T) {
	destDir := filepath.Join(t.TempDir(), "recognizer")
	require.NoError(t, os.MkdirAll(destDir, 0o755))
	svc := NewService(
		&fakeStore{docs: map[string]any{"rec-1": testRecognizer()}},
		fakeCopier{"file-1": "model.onnx"},
	)

	cfg, err := svc.ResolveConfig(context.Background(), "rec-1", destDir)
	require.NoError(t, err)

	assert.True(t, cfg.Enable)
	assert.Equal(t, 0.6, cfg.MinProbability)
	assert.Equal(t, 3, cfg.MaxResults)
	assert.Equal(t, "recognizer/model.onnx", cfg.Path, "配置里应是归档内相对路径")
	assert.Equal(t, "recognizer/classes.json", cfg.OutputConfigPath)
	assert.FileExists(t, filepath.Join(destDir, "model.onnx"))
	require.Len(t, cfg.Preprocessing, 2)
	assert.Equal(t, models.PreprocessingResize, cfg.Preprocessing[0].PreprocessingKind())

	data, err := os.ReadFile(filepath.Join(destDir, classesFileName))
	require.NoError(t, err)
	var output models.RecognizerOutput
	require.NoError(t, json.Unmarshal(data, &output))
	assert.True(t, output.IsConfigured)
	require.Len(t, output.Classes, 2, "重复类别应被去重")
	assert.Equal(t, "猫", output.Classes[0].Description)
	assert.Equal(t, "dog", output.Classes[1].Name)
}

func TestResolveConfigMissingModelFile(t *testing.T) {
	svc := NewService(
		&fakeStore{docs: map[string]any{"rec-1": testRecognizer()}},
		fakeCopier{},
	)

	_, err := svc.ResolveConfig(context.Background(), "rec-1", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveConfigMissingRecognizer(t *testing.T) {
	svc := NewService(&fakeStore{docs: map[string]any{}}, fakeCopier{})

	_, err := svc.ResolveConfig(context.Background(), "rec-gone", t.TempDir())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
