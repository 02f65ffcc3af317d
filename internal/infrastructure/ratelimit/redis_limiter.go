package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

var (
	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_ratelimit_rejected_total",
		Help: "Solicitudes rechazadas por rate limit.",
	}, []string{"scope"})
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_ratelimit_errors_total",
		Help: "Errores de Redis al evaluar el rate limit (la solicitud pasa).",
	}, []string{"scope"})
)

// Decision resultado de evaluar una clave.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // vigencia restante de la ventana
}

// Limiter decide si una clave (actor, empresa, IP) puede hacer otra solicitud en la ventana actual.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// counter incrementa la clave y devuelve el conteo y el TTL de la ventana.
type counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type redisCounter struct {
	rdb redis.UniversalClient
}

func (c redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis incr: %w", err)
	}
	// Primer hit de la ventana: fija la expiración.
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis expire: %w", err)
		}
		return count, window, nil
	}
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis ttl: %w", err)
	}
	if ttl < 0 {
		// la clave quedó sin expiración (Expire previo fallido)
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis expire: %w", err)
		}
		ttl = window
	}
	return count, ttl, nil
}

// RedisLimiter ventana fija por clave: INCR + EXPIRE sobre Redis.
// Ante fallas de Redis deja pasar la solicitud (fail open) y lo registra.
type RedisLimiter struct {
	counter counter
	limit   int
	window  time.Duration
	scope   string
	log     *logger.Logger
}

// NewRedisLimiter construye el limitador. scope se usa como prefijo de clave y etiqueta de métricas.
func NewRedisLimiter(rdb redis.UniversalClient, limit int, window time.Duration, scope string, log *logger.Logger) *RedisLimiter {
	return newLimiter(redisCounter{rdb: rdb}, limit, window, scope, log)
}

func newLimiter(c counter, limit int, window time.Duration, scope string, log *logger.Logger) *RedisLimiter {
	return &RedisLimiter{counter: c, limit: limit, window: window, scope: scope, log: log.Component("ratelimit")}
}

// Allow registra un hit para key y decide.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := l.counter.Hit(ctx, "rl:"+l.scope+":"+key, l.window)
	if err != nil {
		errorsTotal.WithLabelValues(l.scope).Inc()
		l.log.Warn().Err(err).Str("scope", l.scope).Msg("rate limit no disponible, se deja pasar")
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, nil
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: count <= int64(l.limit), Limit: l.limit, Remaining: remaining, RetryAfter: ttl}
	if !d.Allowed {
		rejectedTotal.WithLabelValues(l.scope).Inc()
	}
	return d, nil
}

// Connect abre el cliente Redis y verifica la conexión.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
