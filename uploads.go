package forum

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// UploadConfig controls where images land and how large they may be.
type UploadConfig struct {
	Dir        string
	MaxBytes   int64
	AuthScheme string
	Validator  interface {
		Validate(tokenString string) (AuthClaims, error)
	}
	Logger Logger
}

// RegisterUploadRoutes mounts the image upload endpoint and the static file
// handler directly on the fiber app. Multipart handling stays fiber-native,
// the abstract router only sees JSON routes.
func RegisterUploadRoutes(app *fiber.App, cfg UploadConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = defLogger{}
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "./uploads"
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}

	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = "Bearer"
	}

	app.Static("/uploads", dir)

	app.Post("/upload-image", func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		parts := strings.Fields(header)
		if len(parts) < 2 || !strings.EqualFold(parts[0], scheme) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := cfg.Validator.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		if claims.IsBanned() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "User is banned",
			})
		}

		file, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Image file required",
			})
		}

		if file.Size > maxBytes {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Image too large",
			})
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedImageExts[ext] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Only image files are allowed",
			})
		}

		name := uniqueUploadName(ext)
		if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
			logger.Error("failed to store uploaded image", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}

		return c.JSON(fiber.Map{
			"imageUrl": "/uploads/" + name,
		})
	})
}

func uniqueUploadName(ext string) string {
	return fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), rand.Int63n(1e9), ext)
}
