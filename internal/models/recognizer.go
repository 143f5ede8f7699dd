package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecognizerType 识别器类型
type RecognizerType string

const (
	RecognizerImage RecognizerType = "image"
)

// PreprocessingType 图像预处理类型
type PreprocessingType string

const (
	PreprocessingResize     PreprocessingType = "resize"
	PreprocessingCenterCrop PreprocessingType = "center_crop"
	PreprocessingPad        PreprocessingType = "pad"
	PreprocessingGrayscale  PreprocessingType = "grayscale"
	PreprocessingNormalize  PreprocessingType = "normalize"
)

// ImagePreprocessing 图像预处理步骤（封闭变体集合）
type ImagePreprocessing interface {
	PreprocessingKind() PreprocessingType
}

// ImageResize 缩放
type ImageResize struct {
	Type          PreprocessingType `bson:"type" json:"type"`
	TargetSize    int               `bson:"target_size" json:"target_size"`
	Interpolation string            `bson:"interpolation,omitempty" json:"interpolation,omitempty"`
	MaxSize       int               `bson:"max_size,omitempty" json:"max_size,omitempty"`
	Antialias     bool              `bson:"antialias" json:"antialias"`
}

func (ImageResize) PreprocessingKind() PreprocessingType { return PreprocessingResize }

// ImageCenterCrop 居中裁剪
type ImageCenterCrop struct {
	Type PreprocessingType `bson:"type" json:"type"`
	Size []int             `bson:"size" json:"size"`
}

func (ImageCenterCrop) PreprocessingKind() PreprocessingType { return PreprocessingCenterCrop }

// ImagePad 边缘填充
type ImagePad struct {
	Type        PreprocessingType `bson:"type" json:"type"`
	Padding     []int             `bson:"padding" json:"padding"`
	Fill        int               `bson:"fill" json:"fill"`
	PaddingMode string            `bson:"padding_mode,omitempty" json:"padding_mode,omitempty"`
}

func (ImagePad) PreprocessingKind() PreprocessingType { return PreprocessingPad }

// ImageGrayscale 灰度化
type ImageGrayscale struct {
	Type             PreprocessingType `bson:"type" json:"type"`
	NumOutputChannel int               `bson:"num_output_channels" json:"num_output_channels"`
}

func (ImageGrayscale) PreprocessingKind() PreprocessingType { return PreprocessingGrayscale }

// ImageNormalize 归一化
type ImageNormalize struct {
	Type    PreprocessingType `bson:"type" json:"type"`
	Mean    []float64         `bson:"mean" json:"mean"`
	Std     []float64         `bson:"std" json:"std"`
	Inplace bool              `bson:"inplace" json:"inplace"`
}

func (ImageNormalize) PreprocessingKind() PreprocessingType { return PreprocessingNormalize }

// OutputClass 识别输出类别
type OutputClass struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

// ImageRecognizer 图像识别器文档
// PreprocessingConfigs 为接口切片，编码（JSON/BSON）可直接进行，
// 解码必须经由 DecodeRecognizerBSON / DecodeRecognizerJSON 展开变体
type ImageRecognizer struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Type                 RecognizerType       `bson:"type" json:"type"`
	Name                 string               `bson:"name" json:"name"`
	Enable               bool                 `bson:"enable" json:"enable"`
	ModelFileID          string               `bson:"model_file_id" json:"model_file_id"`
	MinProbability       float64              `bson:"min_probability" json:"min_probability"`
	MaxResults           int                  `bson:"max_results" json:"max_results"`
	OutputClasses        []OutputClass        `bson:"output_classes" json:"output_classes"`
	PreprocessingConfigs []ImagePreprocessing `bson:"preprocessing_configs,omitempty" json:"preprocessing_configs,omitempty"`
}

// recognizerDoc 解码用影子结构，预处理链先保留原始形式
type recognizerDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Type           RecognizerType     `bson:"type" json:"type"`
	Name           string             `bson:"name" json:"name"`
	Enable         bool               `bson:"enable" json:"enable"`
	ModelFileID    string             `bson:"model_file_id" json:"model_file_id"`
	MinProbability float64            `bson:"min_probability" json:"min_probability"`
	MaxResults     int                `bson:"max_results" json:"max_results"`
	OutputClasses  []OutputClass      `bson:"output_classes" json:"output_classes"`
	PreprocBSON    []bson.Raw         `bson:"preprocessing_configs,omitempty" json:"-"`
	PreprocJSON    []json.RawMessage  `bson:"-" json:"preprocessing_configs,omitempty"`
}

func (d *recognizerDoc) toModel(steps []ImagePreprocessing) *ImageRecognizer {
	return &ImageRecognizer{
		ID:                   d.ID,
		Type:                 d.Type,
		Name:                 d.Name,
		Enable:               d.Enable,
		ModelFileID:          d.ModelFileID,
		MinProbability:       d.MinProbability,
		MaxResults:           d.MaxResults,
		OutputClasses:        d.OutputClasses,
		PreprocessingConfigs: steps,
	}
}

// RecognizerConfig 导出态识别器配置
type RecognizerConfig struct {
	Enable           bool                 `json:"enable"`
	MinProbability   float64              `json:"min_probability"`
	MaxResults       int                  `json:"max_results"`
	Path             string               `json:"path"`
	OutputConfigPath string               `json:"output_config_path"`
	Preprocessing    []ImagePreprocessing `json:"preprocessing,omitempty"`
}

// RecognizerOutput classes.json 文件格式
type RecognizerOutput struct {
	IsConfigured bool          `json:"is_configured"`
	Classes      []OutputClass `json:"classes"`
}

// DedupOutputClasses 按类别名去重，保留首次出现的描述
func DedupOutputClasses(classes []OutputClass) []OutputClass {
	seen := make(map[string]struct{}, len(classes))
	result := make([]OutputClass, 0, len(classes))
	for _, c := range classes {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		result = append(result, c)
	}
	return result
}

type preprocessingHead struct {
	Type PreprocessingType `bson:"type" json:"type"`
}

// DecodePreprocessingBSON 按 type 字段解码预处理步骤
func DecodePreprocessingBSON(raw bson.Raw) (ImagePreprocessing, error) {
	var head preprocessingHead
	if err := bson.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("解码预处理配置失败: %w", err)
	}
	decode := func(v any) error { return bson.Unmarshal(raw, v) }
	return decodePreprocessing(head.Type, decode)
}

// DecodePreprocessingJSON 按 type 字段解码预处理步骤
func DecodePreprocessingJSON(data []byte) (ImagePreprocessing, error) {
	var head preprocessingHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("解析预处理配置失败: %w", err)
	}
	decode := func(v any) error { return json.Unmarshal(data, v) }
	return decodePreprocessing(head.Type, decode)
}

func decodePreprocessing(kind PreprocessingType, decode func(any) error) (ImagePreprocessing, error) {
	switch kind {
	case PreprocessingResize:
		var p ImageResize
		if err := decode(&p); err != nil {
			return nil, err
		}
		return p, nil
	case PreprocessingCenterCrop:
		var p ImageCenterCrop
		if err := decode(&p); err != nil {
			return nil, err
		}
		return p, nil
	case PreprocessingPad:
		var p ImagePad
		if err := decode(&p); err != nil {
			return nil, err
		}
		return p, nil
	case PreprocessingGrayscale:
		var p ImageGrayscale
		if err := decode(&p); err != nil {
			return nil, err
		}
		return p, nil
	case PreprocessingNormalize:
		var p ImageNormalize
		if err := decode(&p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: 不支持的预处理类型 %q", ErrUnknownType, kind)
	}
}

// DecodeRecognizerBSON 解码识别器文档
func DecodeRecognizerBSON(raw bson.Raw) (*ImageRecognizer, error) {
	var doc recognizerDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("解码识别器失败: %w", err)
	}
	if doc.Type != RecognizerImage {
		return nil, fmt.Errorf("%w: 不支持的识别器类型 %q", ErrUnknownType, doc.Type)
	}
	steps := make([]ImagePreprocessing, 0, len(doc.PreprocBSON))
	for _, p := range doc.PreprocBSON {
		step, err := DecodePreprocessingBSON(p)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		steps = nil
	}
	return doc.toModel(steps), nil
}

// DecodeRecognizerJSON 解码识别器请求体
func DecodeRecognizerJSON(data []byte) (*ImageRecognizer, error) {
	var doc recognizerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析识别器请求失败: %w", err)
	}
	if doc.Type != RecognizerImage {
		return nil, fmt.Errorf("%w: 不支持的识别器类型 %q", ErrUnknownType, doc.Type)
	}
	if doc.ModelFileID == "" || len(doc.OutputClasses) == 0 {
		return nil, fmt.Errorf("%w: model_file_id 和 output_classes 不能为空", ErrInvalidDocument)
	}
	steps := make([]ImagePreprocessing, 0, len(doc.PreprocJSON))
	for _, p := range doc.PreprocJSON {
		step, err := DecodePreprocessingJSON(p)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		steps = nil
	}
	return doc.toModel(steps), nil
}
