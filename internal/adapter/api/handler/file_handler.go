package handler

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"trocly/internal/usecase"
	"trocly/pkg/errors"
	"trocly/pkg/logger"
	"trocly/pkg/response"
)

type FileHandler struct {
	storage     usecase.FileStorage
	maxFileSize int64
}

var fileHandler *FileHandler

func NewFileHandler(storage usecase.FileStorage) *FileHandler {
	return &FileHandler{
		storage:     storage,
		maxFileSize: 10 * 1024 * 1024,
	}
}

func SetupFileHandler(storage usecase.FileStorage) {
	fileHandler = NewFileHandler(storage)
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

var allowedFolders = map[string]bool{
	"items":           true,
	"avatars":         true,
	"messages/images": true,
	"messages/audio":  true,
}

func isAllowedFileType(fileType string) bool {
	switch fileType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp",
		"audio/mpeg", "audio/mp3", "audio/mp4", "audio/m4a", "audio/ogg", "audio/webm":
		return true
	default:
		return false
	}
}

// UploadFile stores an image or voice recording and returns its public URL.
// The caller passes that URL when sending the message or creating the item.
func (h *FileHandler) UploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		logger.Error("Error getting file from form: %v", err)
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	if file.Size > h.maxFileSize {
		logger.Warn("File too large: %d bytes (max: %d)", file.Size, h.maxFileSize)
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	fileType := file.Header.Get("Content-Type")
	if !isAllowedFileType(fileType) {
		logger.Warn("Invalid file type: %s", fileType)
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	folder := strings.Trim(c.FormValue("folder"), "/")
	if !allowedFolders[folder] {
		return response.Error(c, errors.BadRequest("Unknown upload folder", nil))
	}
	if strings.HasPrefix(fileType, "audio/") && folder != "messages/audio" {
		return response.Error(c, errors.BadRequest("Audio uploads go to the messages/audio folder", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	url, err := h.storage.UploadFile(c.Request().Context(), src, fileType, folder)
	if err != nil {
		logger.Error("Error from storage client: %v", err)
		return response.Error(c, errors.Internal("Failed to upload file", err))
	}

	return response.Created(c, map[string]string{"url": url})
}

// DeleteFile removes an uploaded file by its URL.
func (h *FileHandler) DeleteFile(c echo.Context) error {
	var req struct {
		URL string `json:"url" validate:"required,url"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.storage.DeleteFile(c.Request().Context(), req.URL); err != nil {
		return response.Error(c, errors.Internal("Failed to delete file", err))
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}
