package export

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// tokenSeparator 令牌字段分隔符，字段值中不允许出现
const tokenSeparator = "::"

var (
	// ErrInvalidToken 令牌非法（格式错误、签名不匹配或已过期，统一返回同一错误）
	ErrInvalidToken = errors.New("invalid or expired download token")
	// ErrUnsafeField 字段值包含分隔符，无法安全编码进令牌
	ErrUnsafeField = errors.New("field value contains token separator")
)

// FileInformation 描述本地存储上的一个具体文件，仅在令牌与归档环节短暂存在
type FileInformation struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Path     string `json:"path"`
}

// TokenCodec 签发并校验自包含的下载令牌，无服务端会话状态
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec 创建令牌编解码器
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// Issue 为文件签发带签名的限时下载令牌，subject 可为空
func (c *TokenCodec) Issue(info FileInformation, ttl time.Duration, subject string) (string, error) {
	for _, v := range []string{info.Name, info.Path, info.MimeType, subject} {
		if strings.Contains(v, tokenSeparator) {
			return "", fmt.Errorf("%w: %q", ErrUnsafeField, v)
		}
	}

	nonce, err := newNonce()
	if err != nil {
		return "", fmt.Errorf("生成令牌随机数失败: %w", err)
	}

	expiry := c.now().Add(ttl).Unix()
	parts := []string{
		info.Name,
		info.Path,
		info.MimeType,
		strconv.FormatInt(expiry, 10),
		nonce,
	}
	if subject != "" {
		parts = append(parts, subject)
	}

	payload := strings.Join(parts, tokenSeparator)
	signed := payload + tokenSeparator + c.sign(payload)
	return base64.URLEncoding.EncodeToString([]byte(signed)), nil
}

// Verify 校验令牌并还原文件信息。签名错误、格式错误与过期一律返回 ErrInvalidToken，
// 不区分失败原因。
func (c *TokenCodec) Verify(token string) (FileInformation, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return FileInformation{}, ErrInvalidToken
	}

	parts := strings.Split(string(decoded), tokenSeparator)
	// name, path, mime, expiry, nonce, [subject], signature
	if len(parts) != 6 && len(parts) != 7 {
		return FileInformation{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:len(parts)-1], tokenSeparator)
	signature := parts[len(parts)-1]
	if !hmac.Equal([]byte(signature), []byte(c.sign(payload))) {
		return FileInformation{}, ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || c.now().Unix() >= expiry {
		return FileInformation{}, ErrInvalidToken
	}

	return FileInformation{
		Name:     parts[0],
		Path:     parts[1],
		MimeType: parts[2],
	}, nil
}

func (c *TokenCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// newNonce 生成 16 字节 URL 安全随机数
func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
