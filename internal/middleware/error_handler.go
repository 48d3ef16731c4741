package middleware

import (
	"net/http"
	"time"

	"blendcaja/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const mensajeInterno = "Error interno del servidor"

// ErrorHandler turns errors a handler pushed with c.Error into a generic 500.
// The cause is logged, never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		evento(c, zerolog.ErrorLevel).
			Err(c.Errors.Last().Err).
			Int("errores", len(c.Errors)).
			Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(mensajeInterno))
	}
}

// Recovery converts a panic into a 500 with the same body as ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				evento(c, zerolog.ErrorLevel).Interface("panic", r).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(mensajeInterno))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx log at error, 4xx at warn.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		nivel := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			nivel = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			nivel = zerolog.WarnLevel
		}
		evento(c, nivel).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// evento starts a log line carrying the request id, the route and the
// authenticated user when there is one.
func evento(c *gin.Context, nivel zerolog.Level) *zerolog.Event {
	e := log.WithLevel(nivel).
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if claims := GetClaims(c); claims != nil {
		e = e.Str("user_id", claims.UserID)
	}
	return e
}
