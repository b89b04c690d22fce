// internal/handlers/upload.go
package handlers

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type UploadHandler struct {
	imageService   *services.ImageService
	storageService *services.StorageService
	config         *config.Config
}

func NewUploadHandler(imageService *services.ImageService, storageService *services.StorageService, config *config.Config) *UploadHandler {
	return &UploadHandler{
		imageService:   imageService,
		storageService: storageService,
		config:         config,
	}
}

// POST /admin/uploads/images
//
// Accepts either a multipart form (field "images") or a JSON body with
// base64-encoded images. Files that fail validation or processing are
// skipped; the response lists the uploads that made it to staging.
func (h *UploadHandler) UploadImages(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.uploadMultipart(c)
		return
	}
	h.uploadBase64(c)
}

func (h *UploadHandler) uploadMultipart(c *gin.Context) {
	// Parse multipart form
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "File upload failed", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images uploaded", nil)
		return
	}

	var uploadedImages []map[string]interface{}

	for _, fileHeader := range files {
		if fileHeader.Size > h.config.Media.MaxUploadSize {
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			continue
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			continue
		}

		entry, err := h.stage(data)
		if err != nil {
			continue
		}

		uploadedImages = append(uploadedImages, entry)
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Images uploaded",
		"images":  uploadedImages,
	})
}

func (h *UploadHandler) uploadBase64(c *gin.Context) {
	var req struct {
		Images []string `json:"images" validate:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	var uploadedImages []map[string]interface{}

	for _, encoded := range req.Images {
		data, err := decodeBase64Image(encoded)
		if err != nil {
			continue
		}

		if int64(len(data)) > h.config.Media.MaxUploadSize {
			continue
		}

		entry, err := h.stage(data)
		if err != nil {
			continue
		}

		uploadedImages = append(uploadedImages, entry)
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Images uploaded",
		"images":  uploadedImages,
	})
}

// stage runs an image through the processing pipeline and uploads the result
// to the staging area.
func (h *UploadHandler) stage(data []byte) (map[string]interface{}, error) {
	processed, err := h.imageService.Process(data)
	if err != nil {
		return nil, err
	}

	result, err := h.storageService.StageImage(processed.Data, processed.Ext)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"key":       result.Key,
		"url":       result.URL,
		"size":      result.Size,
		"mime_type": result.MimeType,
		"width":     processed.Width,
		"height":    processed.Height,
		"quality":   processed.Quality,
	}, nil
}

// decodeBase64Image accepts raw base64 or a data URL
// ("data:image/png;base64,....").
func decodeBase64Image(encoded string) ([]byte, error) {
	if strings.HasPrefix(encoded, "data:") {
		if idx := strings.Index(encoded, ","); idx >= 0 {
			encoded = encoded[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(encoded)
}
