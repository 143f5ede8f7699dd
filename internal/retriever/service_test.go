package retriever

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
	"go.mongodb.org/mongo-driver/bson/primitive"

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
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, store.CollectionRetriever, id)
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

type fakeEmbeddings map[string]models.Embeddings

func (f fakeEmbeddings) Get(_ context.Context, id string) (models.Embeddings, error) {
	m, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", store.ErrNotFound, store.CollectionEmbeddings, id)
	}
	return m, nil
}

// fakeCopier 把登记过的文件名落到目标目录
type fakeCopier map[string]string

func (f fakeCopier) CopyTo(_ context.Context, id, destDir string) (string, error) {
	name, ok := f[id]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", store.ErrNotFound, store.CollectionFile, id)
	}
	path := filepath.Join(destDir, name)
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func exportDestDir(t *testing.T) string {
	t.Helper()
	destDir := filepath.Join(t.TempDir(), "retriever")
	require.NoError(t, os.MkdirAll(destDir, 0o755))
	return destDir
}

func TestResolveConfigBM25(t *testing.T) {
	destDir := exportDestDir(t)
	svc := NewService(
		&fakeStore{docs: map[string]any{
			"ret-1": models.BM25Retriever{
				Type:               models.RetrieverBM25,
				Name:               "keyword",
				Weight:             0.4,
				K1:                 1.2,
				B:                  0.75,
				EmbeddingsID:       "emb-1",
				RemovalWordsFileID: "file-1",
			},
		}},
		fakeEmbeddings{"emb-1": models.GoogleGenAIEmbeddings{
			ID:        primitive.NewObjectID(),
			Type:      models.EmbeddingsGoogleGenAI,
			Name:      "gemini-emb",
			ModelName: "text-embedding-004",
		}},
		fakeCopier{"file-1": "removal_words.txt"},
	)

	cfg, err := svc.ResolveConfig(context.Background(), "ret-1", destDir)
	require.NoError(t, err)

	bm25, ok := cfg.(models.BM25Config)
	require.True(t, ok, "期望 BM25Config，得到 %T", cfg)
	assert.Equal(t, "keyword", bm25.Name)
	assert.Equal(t, 1.2, bm25.K1)
	assert.Equal(t, 0.75, bm25.B)
	assert.Equal(t, "retriever/removal_words.txt", bm25.RemovalWordsPath, "配置里应是归档内相对路径")
	assert.FileExists(t, filepath.Join(destDir, "removal_words.txt"))

	emb, ok := bm25.EmbeddingsModel.(models.GoogleGenAIEmbeddings)
	require.True(t, ok)
	assert.True(t, emb.DocumentID().IsZero(), "导出配置不应携带数据库 ID")
	assert.Equal(t, []string{"GOOGLE_API_KEY"}, bm25.CredentialEnvs())
}

func TestResolveConfigBM25WithoutRemovalWords(t *testing.T) {
	svc := NewService(
		&fakeStore{docs: map[string]any{
			"ret-1": models.BM25Retriever{
				Type:         models.RetrieverBM25,
				Name:         "keyword",
				EmbeddingsID: "emb-1",
			},
		}},
		fakeEmbeddings{"emb-1": models.HuggingFaceEmbeddings{
			Type:      models.EmbeddingsHuggingFace,
			Name:      "minilm",
			ModelName: "all-MiniLM-L6-v2",
		}},
		fakeCopier{},
	)

	cfg, err := svc.ResolveConfig(context.Background(), "ret-1", t.TempDir())
	require.NoError(t, err)

	bm25, ok := cfg.(models.BM25Config)
	require.True(t, ok)
	assert.Empty(t, bm25.RemovalWordsPath)
}

func TestResolveConfigChromaWritesExternalData(t *testing.T) {
	destDir := exportDestDir(t)
	svc := NewService(
		&fakeStore{docs: map[string]any{
			"ret-2": models.ChromaRetriever{
				Type:         models.RetrieverChroma,
				Name:         "vector",
				Weight:       0.6,
				Tenant:       "default_tenant",
				Database:     "default_database",
				EmbeddingsID: "emb-1",
				ExternalData: []models.ExternalDocument{
					{Name: "faq", Content: "常见问题"},
					{Name: "manual", Content: "使用手册"},
				},
			},
		}},
		fakeEmbeddings{"emb-1": models.GoogleGenAIEmbeddings{
			Type:      models.EmbeddingsGoogleGenAI,
			Name:      "gemini-emb",
			ModelName: "text-embedding-004",
		}},
		fakeCopier{},
	)

	cfg, err := svc.ResolveConfig(context.Background(), "ret-2", destDir)
	require.NoError(t, err)

	chroma, ok := cfg.(models.ChromaConfig)
	require.True(t, ok, "期望 ChromaConfig，得到 %T", cfg)
	assert.Equal(t, "default_tenant", chroma.Tenant)
	assert.Equal(t, "retriever/vector_external_data.json", chroma.ExternalDataConfigPath, "配置里应是归档内相对路径")

	data, err := os.ReadFile(filepath.Join(destDir, "vector_external_data.json"))
	require.NoError(t, err)
	var external models.ExternalDocumentConfig
	require.NoError(t, json.Unmarshal(data, &external))
	assert.Equal(t, externalDataVersion, external.Version)
	require.Len(t, external.Documents, 2)
	assert.Equal(t, "faq", external.Documents[0].Name)
}

func TestResolveConfigChromaWithoutExternalData(t *testing.T) {
	svc := NewService(
		&fakeStore{docs: map[string]any{
			"ret-2": models.ChromaRetriever{
				Type:         models.RetrieverChroma,
				Name:         "vector",
				EmbeddingsID: "emb-1",
			},
		}},
		fakeEmbeddings{"emb-1": models.HuggingFaceEmbeddings{
			Type:      models.EmbeddingsHuggingFace,
			ModelName: "all-MiniLM-L6-v2",
		}},
		fakeCopier{},
	)

	cfg, err := svc.ResolveConfig(context.Background(), "ret-2", t.TempDir())
	require.NoError(t, err)

	chroma, ok := cfg.(models.ChromaConfig)
	require.True(t, ok)
	assert.Empty(t, chroma.ExternalDataConfigPath)
}

func TestResolveConfigMissingEmbeddings(t *testing.T) {
	svc := NewService(
		&fakeStore{docs: map[string]any{
			"ret-1": models.BM25Retriever{
				Type:         models.RetrieverBM25,
				Name:         "keyword",
				EmbeddingsID: "emb-gone",
			},
		}},
		fakeEmbeddings{},
		fakeCopier{},
	)

	_, err := svc.ResolveConfig(context.Background(), "ret-1", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveConfigMissingRetriever(t *testing.T) {
	svc := NewService(&fakeStore{docs: map[string]any{}}, fakeEmbeddings{}, fakeCopier{})

	_, err := svc.ResolveConfig(context.Background(), "ret-gone", t.TempDir())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
