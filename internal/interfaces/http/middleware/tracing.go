package middleware

import (
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the handlers that open a span per request on tp and tag
// it with the request id. They must run after RequestID.
func Tracing(serviceName string, tp trace.TracerProvider) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName, otelgin.WithTracerProvider(tp)),
		annotateSpan,
	}
}

func annotateSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		if requestID := c.GetString(logger.RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request.id", requestID))
		}
		if id := c.Param("id"); id != "" {
			span.SetAttributes(attribute.String("sync.channel_id", id))
		}
	}
	c.Next()
}
