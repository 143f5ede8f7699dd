package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 集合名称
const (
	CollectionChatModel  = "chat_model"
	CollectionEmbeddings = "embeddings"
	CollectionRetriever  = "retriever"
	CollectionRecognizer = "recognizer"
	CollectionMCPServer  = "mcp_server"
	CollectionTool       = "tool"
	CollectionPrompt     = "prompt"
	CollectionFile       = "file"
	CollectionAgent      = "agent"
)

var (
	// ErrNotFound 按 ID 查询不到实体
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidID ID 不是合法的 ObjectID
	ErrInvalidID = errors.New("invalid entity id")
)

// ParseID 严格解析 ObjectID，非法输入返回 ErrInvalidID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// Store MongoDB 文档存取层
type Store struct {
	db *mongo.Database
}

// New 创建 Store 实例
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Collection 返回指定集合
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// GetRawByID 按 ID 查询文档原始内容
func (s *Store) GetRawByID(ctx context.Context, collection, id string) (bson.Raw, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	raw, err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("查询 %s 文档失败: %w", collection, err)
	}
	return raw, nil
}

// Exists 校验指定 ID 的文档是否存在，不取回文档内容
func (s *Store) Exists(ctx context.Context, collection, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}, opts).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return fmt.Errorf("查询 %s 文档失败: %w", collection, err)
	}
	return nil
}

// GetByID 按 ID 查询文档并解码到 out
func (s *Store) GetByID(ctx context.Context, collection, id string, out any) error {
	raw, err := s.GetRawByID(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("解码 %s 文档失败: %w", collection, err)
	}
	return nil
}

// Create 插入文档并返回新文档的十六进制 ID
func (s *Store) Create(ctx context.Context, collection string, doc any) (string, error) {
	result, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("创建 %s 文档失败: %w", collection, err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("创建 %s 文档失败: 非预期的 ID 类型 %T", collection, result.InsertedID)
	}
	return oid.Hex(), nil
}

// UpdateByID 按 ID 全量更新文档字段，忽略 doc 中携带的 _id
func (s *Store) UpdateByID(ctx context.Context, collection, id string, doc any) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	fields, err := toUpdateFields(doc)
	if err != nil {
		return fmt.Errorf("编码 %s 更新内容失败: %w", collection, err)
	}
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("更新 %s 文档失败: %w", collection, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// DeleteByID 按 ID 删除文档
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("删除 %s 文档失败: %w", collection, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// toUpdateFields 将文档编码为 $set 字段集，剔除不可变的 _id
func toUpdateFields(doc any) (bson.D, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.D
	if err := bson.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	out := make(bson.D, 0, len(fields))
	for _, field := range fields {
		if field.Key == "_id" {
			continue
		}
		out = append(out, field)
	}
	return out, nil
}

// FindRawPage 分页查询文档原始内容，返回当前页与总记录数
func (s *Store) FindRawPage(ctx context.Context, collection string, offset, limit int) ([]bson.Raw, int64, error) {
	coll := s.db.Collection(collection)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("统计 %s 文档失败: %w", collection, err)
	}

	opts := options.Find().
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("查询 %s 文档失败: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, raw)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("遍历 %s 文档失败: %w", collection, err)
	}
	return docs, total, nil
}
