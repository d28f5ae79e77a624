// Package handler holds what the JSON API handlers share: the handler
// interface, route constants and the mapping of errors to HTTP responses.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoSiteSettings/GoSiteSettings/internal/config"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, cfg *config.Config, db *gorm.DB) error
}
