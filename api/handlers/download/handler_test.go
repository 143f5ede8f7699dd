package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/export"
)

func setupRouter(tokens *export.TokenCodec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/download", NewHandler(tokens).Download)
	return router
}

func TestDownloadWithValidToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip-bytes"), 0o644))

	tokens := export.NewTokenCodec("download-secret")
	token, err := tokens.Issue(export.FileInformation{
		Name:     "export.zip",
		MimeType: "application/zip",
		Path:     path,
	}, time.Hour, "")
	require.NoError(t, err)

	router := setupRouter(tokens)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download?token="+token, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "zip-bytes", w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "export.zip")
}

func TestDownloadRejectsInvalidToken(t *testing.T) {
	tokens := export.NewTokenCodec("download-secret")
	router := setupRouter(tokens)

	// 伪造、过期、缺失的令牌返回完全一致的错误文案
	var bodies []string
	for _, token := range []string{"forged", ""} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/download?token="+token, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		bodies = append(bodies, w.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
}

func TestDownloadMissingFile(t *testing.T) {
	tokens := export.NewTokenCodec("download-secret")
	token, err := tokens.Issue(export.FileInformation{
		Name:     "gone.zip",
		MimeType: "application/zip",
		Path:     filepath.Join(t.TempDir(), "gone.zip"),
	}, time.Hour, "")
	require.NoError(t, err)

	router := setupRouter(tokens)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download?token="+token, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
