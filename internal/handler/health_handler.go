package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/cubis-academy-api/internal/config"
	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Service         string    `json:"service"`
	Environment     string    `json:"environment"`
	CacheEnabled    bool      `json:"cache_enabled"`
	StorageProvider string    `json:"storage_provider"`
}

// HealthStatus reports runtime facts that are only known after startup.
type HealthStatus struct {
	CacheEnabled    func() bool
	StorageProvider string
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config, status HealthStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:          "ok",
			Timestamp:       time.Now().UTC(),
			Service:         cfg.AppName,
			Environment:     cfg.AppEnv,
			StorageProvider: status.StorageProvider,
		}
		if status.CacheEnabled != nil {
			payload.CacheEnabled = status.CacheEnabled()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
