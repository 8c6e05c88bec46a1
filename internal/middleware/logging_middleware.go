package middleware

import (
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeader: заголовок ответа с идентификатором запроса
const TraceHeader = "X-Trace-Id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи.
// Использует глобальный logging пакет (Info/Debug).
type RequestLogger struct {
	// пути, запросы к которым пишутся только на уровне DEBUG
	quiet map[string]struct{}
}

// NewRequestLogger создаёт middleware; quietPaths логируются на уровне DEBUG
func NewRequestLogger(quietPaths ...string) *RequestLogger {
	rl := &RequestLogger{quiet: make(map[string]struct{}, len(quietPaths))}
	for _, p := range quietPaths {
		rl.quiet[p] = struct{}{}
	}
	return rl
}

// Handler возвращает gin.HandlerFunc для router.Use()
func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пытаемся извлечь trace-id из OpenTelemetry, если уже создан.
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header(TraceHeader, traceID)

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logf := logging.Info
		if _, ok := rl.quiet[path]; ok {
			logf = logging.Debug
		}

		logf("[HTTP] ▶ %s %s ip=%s trace=%s", method, c.Request.URL.RequestURI(), c.ClientIP(), traceID)

		c.Next()

		logf("[HTTP] ◀ %s %s %d %s trace=%s", method, path, c.Writer.Status(), time.Since(start), traceID)
	}
}
