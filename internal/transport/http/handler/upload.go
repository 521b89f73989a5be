package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"anonymizer-api/internal/app"
	"anonymizer-api/internal/transport/http/middleware"
	"anonymizer-api/internal/transport/http/response"
)

const uploadField = "file"

// UploadHandler accepts images and returns the anonymized copy's location.
type UploadHandler struct {
	imageService *app.ImageService
}

func NewUploadHandler(imageService *app.ImageService) *UploadHandler {
	return &UploadHandler{imageService: imageService}
}

// Upload expects a multipart form with the image in the "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	email, _ := middleware.EmailFromContext(c)

	file, err := c.FormFile(uploadField)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file (form field 'file')")
		return
	}

	if limit := h.imageService.MaxBytes(); limit > 0 && file.Size > limit {
		response.Error(c, http.StatusBadRequest, response.CodeImageTooLarge, fmt.Sprintf("image too large (max %dMB)", limit>>20))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.imageService.Process(c.Request.Context(), app.UploadInput{
		Email:       email,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		var procErr *app.ProcessingError
		switch {
		case errors.Is(err, app.ErrNotAnImage):
			response.Error(c, http.StatusBadRequest, response.CodeNotAnImage, "File must be an image")
		case errors.Is(err, app.ErrImageTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeImageTooLarge, "image too large")
		case errors.As(err, &procErr):
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeProcessingFailed, "Processing error: "+procErr.Err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "Processing error: "+err.Error())
		}
		return
	}

	response.OK(c, gin.H{
		"message":            "File processed successfully",
		"original_filename":  result.OriginalFilename,
		"processed_filename": result.ProcessedFilename,
		"processed_url":      result.ProcessedURL,
		"faces_detected":     result.FacesDetected,
		"status":             "success",
	})
}
