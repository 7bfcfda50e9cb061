package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	traceIDHeader   = "X-Trace-Id"
	requestIDHeader = "X-Request-Id"
	traceIDLocal    = "trace_id"
	maxTraceIDLen   = 128
)

// Tracing assigns the request a trace id, echoes it in X-Trace-Id and attaches a logger
// carrying it to the user context. A caller-supplied X-Trace-Id or X-Request-Id is reused.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := incomingTraceID(c)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(traceIDHeader, traceID)

		l := log.With().Str("trace_id", traceID).Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))
		return c.Next()
	}
}

func incomingTraceID(c *fiber.Ctx) string {
	for _, h := range []string{traceIDHeader, requestIDHeader} {
		if id := c.Get(h); id != "" && len(id) <= maxTraceIDLen {
			return id
		}
	}
	return ""
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}
