package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/branch-ledger/pkg/logger"
	"github.com/rs/zerolog"
)

// RequestLogger registra cada petición terminada. 5xx como error, 4xx como warn.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// el ErrorHandler de la app todavía no escribió la respuesta
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				return hErr
			}
			err = nil
		}
		status := c.Response().StatusCode()

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", time.Since(start))
		if actor := GetUserID(c); actor != "" {
			ev = ev.Str("actor_id", actor)
		}
		if code, ok := c.Locals(LocalErrorCode).(string); ok {
			ev = ev.Str("code", code)
		}
		ev.Msg("petición HTTP")
		return err
	}
}

// MetricsMiddleware cuenta peticiones y rechazos por código de error.
// La ruta se etiqueta con el patrón registrado (/api/products/:id), no con el path real.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				return hErr
			}
			err = nil
		}
		route := c.Route().Path
		status := c.Response().StatusCode()
		if status == fiber.StatusNotFound && route == c.Path() {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Method(), route, strconv.Itoa(status), time.Since(start))
		if code, ok := c.Locals(LocalErrorCode).(string); ok {
			m.Rejected(code)
		}
		return err
	}
}
