// services/upload_service.go
package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"bonus-listing-system/logging"
	"bonus-listing-system/utils"

	"github.com/gofiber/fiber/v2"
)

var allowedImageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true,
}

type UploadService struct {
	Uploader utils.Uploader
	Prefix   string
}

func NewUploadService(u utils.Uploader) *UploadService {
	return &UploadService{Uploader: u, Prefix: "logos"}
}

// UploadImage stores the multipart "file" field and returns its public URL.
func (s *UploadService) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fieldError("file", "is required"))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return respondError(c, fieldError("file", "must be a png, jpg, gif, webp or svg image"))
	}

	key := utils.UploadKey(s.Prefix, file.Filename)
	url, err := s.Uploader.Upload(c.UserContext(), file, key)
	if err != nil {
		return respondError(c, fmt.Errorf("failed to upload file: %w", err))
	}
	logging.Ctx(c.UserContext()).Info().Str("key", key).Int64("size", file.Size).Msg("📦 image uploaded")
	return c.JSON(fiber.Map{"url": url})
}
