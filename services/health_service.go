// services/health_service.go
package services

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is the readiness probe of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	Store   Pinger
	Timeout time.Duration
}

func NewHealthService(p Pinger) *HealthService {
	return &HealthService{Store: p, Timeout: 2 * time.Second}
}

func (s *HealthService) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *HealthService) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.Timeout)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
