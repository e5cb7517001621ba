package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salvaalejos/ceitm-web/pkg/storage"
)

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newUploadHandlerUnderTest(t *testing.T, maxSize int64) (*UploadHandler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "http://localhost:8080")
	require.NoError(t, err)
	return NewUploadHandler(store, maxSize), dir
}

func TestUploadHandlerStoresImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, dir := newUploadHandlerUnderTest(t, 1024)

	body, contentType := multipartBody(t, "poster.png", []byte("fake png bytes"))
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.UploadImage(c)

	require.Equal(t, http.StatusCreated, rec.Code)

	entries, err := os.ReadDir(filepath.Join(dir, storage.ImagesDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
}

func TestUploadHandlerRejectsNonImageExtension(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newUploadHandlerUnderTest(t, 1024)

	body, contentType := multipartBody(t, "report.exe", []byte("bytes"))
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.UploadImage(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandlerRejectsOversizedFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newUploadHandlerUnderTest(t, 8)

	body, contentType := multipartBody(t, "acta.pdf", bytes.Repeat([]byte("a"), 64))
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/uploads/files", body)
	c.Request.Header.Set("Content-Type", contentType)

	handler.UploadFile(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
