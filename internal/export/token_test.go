package export

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(secret string, now time.Time) *TokenCodec {
	codec := NewTokenCodec(secret)
	codec.now = func() time.Time { return now }
	return codec
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec("test-secret", now)

	info := FileInformation{
		Name:     "agent_archive.zip",
		MimeType: "application/zip",
		Path:     "/app/cache/agent_archive.zip",
	}

	token, err := codec.Issue(info, time.Hour, "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestTokenRoundTripWithSubject(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec("test-secret", now)

	info := FileInformation{Name: "a.txt", MimeType: "text/plain", Path: "/tmp/a.txt"}
	token, err := codec.Issue(info, time.Hour, "user-42")
	require.NoError(t, err)

	// subject 只参与签名，校验结果中不出现
	got, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestTokenTamperDetection(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec("test-secret", now)

	info := FileInformation{Name: "a.zip", MimeType: "application/zip", Path: "/tmp/a.zip"}
	token, err := codec.Issue(info, time.Hour, "")
	require.NoError(t, err)

	// 篡改载荷中的路径字段后重编码
	decoded, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	tampered := strings.Replace(string(decoded), "/tmp/a.zip", "/etc/passwd", 1)
	forged := base64.URLEncoding.EncodeToString([]byte(tampered))

	_, err = codec.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	issuer := newTestCodec("secret-a", now)
	verifier := newTestCodec("secret-b", now)

	token, err := issuer.Issue(FileInformation{Name: "a", MimeType: "b", Path: "c"}, time.Hour, "")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec("test-secret", now)

	info := FileInformation{Name: "a.zip", MimeType: "application/zip", Path: "/tmp/a.zip"}

	t.Run("零 TTL 立即失效", func(t *testing.T) {
		token, err := codec.Issue(info, 0, "")
		require.NoError(t, err)

		_, err = codec.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("过期后拒绝", func(t *testing.T) {
		token, err := codec.Issue(info, time.Hour, "")
		require.NoError(t, err)

		codec.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err = codec.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)

		// 有效期内可重复兑换
		codec.now = func() time.Time { return now.Add(30 * time.Minute) }
		_, err = codec.Verify(token)
		assert.NoError(t, err)
		_, err = codec.Verify(token)
		assert.NoError(t, err)
	})
}

func TestTokenRejectsSeparatorInFields(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	_, err := codec.Issue(FileInformation{
		Name:     "bad::name.zip",
		MimeType: "application/zip",
		Path:     "/tmp/a.zip",
	}, time.Hour, "")
	assert.ErrorIs(t, err, ErrUnsafeField)

	_, err = codec.Issue(FileInformation{
		Name:     "a.zip",
		MimeType: "application/zip",
		Path:     "/tmp/a.zip",
	}, time.Hour, "sub::ject")
	assert.ErrorIs(t, err, ErrUnsafeField)
}

func TestTokenMalformedInput(t *testing.T) {
	codec := NewTokenCodec("test-secret")

	cases := []struct {
		name  string
		token string
	}{
		{"非法 base64", "not!!base64"},
		{"字段数不足", base64.URLEncoding.EncodeToString([]byte("a::b::c"))},
		{"空令牌", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Verify(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenNonceUnique(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	info := FileInformation{Name: "a.zip", MimeType: "application/zip", Path: "/tmp/a.zip"}

	first, err := codec.Issue(info, time.Hour, "")
	require.NoError(t, err)
	second, err := codec.Issue(info, time.Hour, "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
