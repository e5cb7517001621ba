package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
	"github.com/salvaalejos/ceitm-web/pkg/response"
	"github.com/salvaalejos/ceitm-web/pkg/storage"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// UploadHandler stores images and documents on the local disk store.
type UploadHandler struct {
	store       *storage.LocalStorage
	maxFileSize int64
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(store *storage.LocalStorage, maxFileSize int64) *UploadHandler {
	return &UploadHandler{store: store, maxFileSize: maxFileSize}
}

// UploadImage godoc
// @Summary Upload an image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Router /uploads/images [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	h.save(c, storage.ImagesDir, true)
}

// UploadFile godoc
// @Summary Upload a document file
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Router /uploads/files [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	h.save(c, storage.UploadsDir, false)
}

func (h *UploadHandler) save(c *gin.Context, subdir string, imagesOnly bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file field"))
		return
	}
	if header.Size > h.maxFileSize {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "file exceeds the allowed size"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if imagesOnly && !imageExtensions[ext] {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "unsupported image format"))
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "could not read upload"))
		return
	}
	defer src.Close()

	filename := uuid.NewString() + ext
	url, err := h.store.SaveStream(subdir, filename, src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "could not store upload"))
		return
	}

	response.Created(c, gin.H{
		"filename": filename,
		"url":      url,
	})
}
