package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseID(t *testing.T) {
	t.Run("合法 ObjectID", func(t *testing.T) {
		want := primitive.NewObjectID()
		got, err := ParseID(want.Hex())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("非法输入", func(t *testing.T) {
		for _, id := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
			_, err := ParseID(id)
			assert.ErrorIs(t, err, ErrInvalidID, "id=%q", id)
		}
	})
}

func TestToUpdateFieldsStripsID(t *testing.T) {
	doc := struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
		Kind string             `bson:"type"`
	}{
		ID:   primitive.NewObjectID(),
		Name: "demo",
		Kind: "ollama",
	}

	fields, err := toUpdateFields(doc)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	for _, f := range fields {
		assert.NotEqual(t, "_id", f.Key)
	}
}
