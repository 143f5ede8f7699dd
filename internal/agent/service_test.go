package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/export"
	"backend/internal/models"
	"backend/internal/store"
)

// fakeStore 以集合/ID 键模拟存在性校验与写入
type fakeStore struct {
	existing map[string]bool
	created  []*models.Agent
}

func refKey(collection, id string) string { return collection + "/" + id }

func (f *fakeStore) Exists(_ context.Context, collection, id string) error {
	if _, err := store.ParseID(id); err != nil {
		return err
	}
	if !f.existing[refKey(collection, id)] {
		return fmt.Errorf("%w: %s/%s", store.ErrNotFound, collection, id)
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, collection, id string, _ any) error {
	return fmt.Errorf("%w: %s/%s", store.ErrNotFound, collection, id)
}

func (f *fakeStore) FindRawPage(context.Context, string, int, int) ([]bson.Raw, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) Create(_ context.Context, _ string, doc any) (string, error) {
	f.created = append(f.created, doc.(*models.Agent))
	return "68af0000000000000000ffff", nil
}

func (f *fakeStore) UpdateByID(context.Context, string, string, any) error { return nil }

func (f *fakeStore) DeleteByID(context.Context, string, string) error { return nil }

// 测试里引用统一用 24 位十六进制 ID
const (
	llmID  = "68af00000000000000000001"
	prmID  = "68af00000000000000000002"
	retID1 = "68af00000000000000000003"
	retID2 = "68af00000000000000000004"
	toolID = "68af00000000000000000005"
)

func storeWithRefs() *fakeStore {
	return &fakeStore{existing: map[string]bool{
		refKey(store.CollectionChatModel, llmID):  true,
		refKey(store.CollectionPrompt, prmID):     true,
		refKey(store.CollectionRetriever, retID1): true,
		refKey(store.CollectionRetriever, retID2): true,
		refKey(store.CollectionTool, toolID):      true,
	}}
}

func validAgent() *models.Agent {
	return &models.Agent{
		Name:         "demo-agent",
		Language:     "en",
		ChatModelID:  llmID,
		PromptID:     prmID,
		RetrieverIDs: []string{retID1, retID2},
		ToolIDs:      []string{toolID},
	}
}

func TestCreateVerifiesReferences(t *testing.T) {
	st := storeWithRefs()
	svc := NewService(st)

	id, err := svc.Create(context.Background(), validAgent())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, st.created, 1)
}

func TestCreateCollectsAllMissingReferences(t *testing.T) {
	st := storeWithRefs()
	delete(st.existing, refKey(store.CollectionRetriever, retID2))
	delete(st.existing, refKey(store.CollectionTool, toolID))
	svc := NewService(st)

	_, err := svc.Create(context.Background(), validAgent())
	require.Error(t, err)

	var notFound *export.EntitiesNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.ElementsMatch(t, []export.MissingEntity{
		{Kind: export.KindRetriever, ID: retID2},
		{Kind: export.KindTool, ID: toolID},
	}, notFound.Missing)
	assert.Empty(t, st.created, "引用缺失时不应写入")
}

func TestCreateRejectsMalformedReference(t *testing.T) {
	svc := NewService(storeWithRefs())

	a := validAgent()
	a.RetrieverIDs = append(a.RetrieverIDs, "not-an-object-id")
	_, err := svc.Create(context.Background(), a)
	require.Error(t, err)

	var notFound *export.EntitiesNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Missing, export.MissingEntity{Kind: export.KindRetriever, ID: "not-an-object-id"})
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc := NewService(storeWithRefs())

	a := validAgent()
	a.Language = "fr"
	_, err := svc.Create(context.Background(), a)
	assert.ErrorIs(t, err, models.ErrInvalidDocument)
}

func TestUpdateVerifiesReferences(t *testing.T) {
	st := storeWithRefs()
	delete(st.existing, refKey(store.CollectionChatModel, llmID))
	svc := NewService(st)

	err := svc.Update(context.Background(), "68af000000000000000000aa", validAgent())
	require.Error(t, err)

	var notFound *export.EntitiesNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []export.MissingEntity{{Kind: export.KindChatModel, ID: llmID}}, notFound.Missing)
}
