package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDecodeRecognizerJSONWithPreprocessing(t *testing.T) {
	doc, err := DecodeRecognizerJSON([]byte(`{
		"type": "image",
		"name": "flower-classifier",
		"enable": true,
		"model_file_id": "66f000000000000000000001",
		"min_probability": 0.6,
		"max_results": 3,
		"output_classes": [{"name": "rose", "description": "红色"}],
		"preprocessing_configs": [
			{"type": "resize", "target_size": 224, "antialias": true},
			{"type": "normalize", "mean": [0.485, 0.456, 0.406], "std": [0.229, 0.224, 0.225]}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "flower-classifier", doc.Name)
	require.Len(t, doc.PreprocessingConfigs, 2)
	resize, ok := doc.PreprocessingConfigs[0].(ImageResize)
	require.True(t, ok)
	assert.Equal(t, 224, resize.TargetSize)
	normalize, ok := doc.PreprocessingConfigs[1].(ImageNormalize)
	require.True(t, ok)
	assert.InDelta(t, 0.485, normalize.Mean[0], 1e-9)
}

// 预处理链经 BSON 存储后必须完整还原成具体变体
func TestRecognizerBSONRoundTrip(t *testing.T) {
	doc := &ImageRecognizer{
		Type:           RecognizerImage,
		Name:           "rt",
		Enable:         true,
		ModelFileID:    "66f000000000000000000001",
		MinProbability: 0.5,
		MaxResults:     2,
		OutputClasses:  []OutputClass{{Name: "cat"}},
		PreprocessingConfigs: []ImagePreprocessing{
			ImageGrayscale{Type: PreprocessingGrayscale, NumOutputChannel: 1},
			ImageCenterCrop{Type: PreprocessingCenterCrop, Size: []int{224, 224}},
		},
	}

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	decoded, err := DecodeRecognizerBSON(raw)
	require.NoError(t, err)
	require.Len(t, decoded.PreprocessingConfigs, 2)
	assert.Equal(t, PreprocessingGrayscale, decoded.PreprocessingConfigs[0].PreprocessingKind())
	crop, ok := decoded.PreprocessingConfigs[1].(ImageCenterCrop)
	require.True(t, ok)
	assert.Equal(t, []int{224, 224}, crop.Size)
}

func TestDecodeRecognizerJSONValidation(t *testing.T) {
	t.Run("未知预处理类型", func(t *testing.T) {
		_, err := DecodeRecognizerJSON([]byte(`{
			"type": "image",
			"name": "x",
			"model_file_id": "66f000000000000000000001",
			"output_classes": [{"name": "a"}],
			"preprocessing_configs": [{"type": "rotate"}]
		}`))
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("缺少模型文件", func(t *testing.T) {
		_, err := DecodeRecognizerJSON([]byte(`{
			"type": "image",
			"name": "x",
			"output_classes": [{"name": "a"}]
		}`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("非图像识别器", func(t *testing.T) {
		_, err := DecodeRecognizerJSON([]byte(`{"type": "audio"}`))
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestDedupOutputClasses(t *testing.T) {
	classes := []OutputClass{
		{Name: "rose", Description: "第一"},
		{Name: "tulip", Description: "第二"},
		{Name: "rose", Description: "重复"},
	}

	deduped := DedupOutputClasses(classes)
	require.Len(t, deduped, 2)
	// 保留首次出现的描述
	assert.Equal(t, "第一", deduped[0].Description)
	assert.Equal(t, "tulip", deduped[1].Name)
}
