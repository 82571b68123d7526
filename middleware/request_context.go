// middleware/request_context.go
package middleware

import (
	"strconv"
	"time"

	"bonus-listing-system/logging"
	"bonus-listing-system/metrics"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderRequestID = "X-Request-ID"

	LocalsRequestID = "request_id"
	LocalsAdmin     = "is_admin"
)

// RequestContextMiddleware tags each request with an id, carries it on the
// user context for logging, and records latency per route.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id := c.Get(HeaderRequestID)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		c.Locals(LocalsRequestID, id)
		c.Set(HeaderRequestID, id)
		c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))

		err := c.Next()
		if err != nil {
			// let the app error handler pick the status before we read it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)
		metrics.APIRequestDuration.
			WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		event := logging.Ctx(c.UserContext()).Debug()
		if status >= fiber.StatusInternalServerError {
			event = logging.Ctx(c.UserContext()).Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("request")
		return err
	}
}
