package middleware

import (
	"net/http"
	"sync"
	"time"

	"blendcaja/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventana counts requests per key inside a fixed window.
type ventana struct {
	count     int
	windowEnd time.Time
}

// limitador is a per-IP fixed-window counter. Expired entries are purged lazily
// on each call once purgeInterval has passed.
type limitador struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	entries   map[string]*ventana
	lastPurge time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func newLimitador(limit int, window time.Duration) *limitador {
	return &limitador{
		limit:   limit,
		window:  window,
		entries: make(map[string]*ventana),
		now:     time.Now,
	}
}

// permitir records one request for key and reports whether it is within the
// limit, plus the end of the current window.
func (l *limitador) permitir(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPurge) >= purgeInterval {
		l.purgar(now)
	}

	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &ventana{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// purgar must be called under lock.
func (l *limitador) purgar(now time.Time) {
	purged := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter entries purged")
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newLimitador(20, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := l.permitir(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter returns a general-purpose per-IP limiter of limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newLimitador(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := l.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
