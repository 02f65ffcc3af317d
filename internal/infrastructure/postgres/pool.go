package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/marianoberton/marketpaper-demo-sub001/pkg/config"
)

// NewPool crea el pool de conexiones y verifica la conexión con un ping.
// El servicio hace lecturas cortas por request y transacciones breves, así que el pool es chico.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 && cfg.MinConns <= cfg.MaxConns {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// poolCollector expone pgxpool.Stat como métricas de Prometheus.
type poolCollector struct {
	pool     *pgxpool.Pool
	total    *prometheus.Desc
	idle     *prometheus.Desc
	acquired *prometheus.Desc
	max      *prometheus.Desc
	waits    *prometheus.Desc
}

// RegisterPoolMetrics registra las métricas del pool (ma_db_pool_*) en el registry dado.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	c := &poolCollector{
		pool:     pool,
		total:    prometheus.NewDesc("ma_db_pool_total_conns", "Conexiones abiertas en el pool.", nil, nil),
		idle:     prometheus.NewDesc("ma_db_pool_idle_conns", "Conexiones ociosas.", nil, nil),
		acquired: prometheus.NewDesc("ma_db_pool_acquired_conns", "Conexiones en uso.", nil, nil),
		max:      prometheus.NewDesc("ma_db_pool_max_conns", "Tamaño máximo del pool.", nil, nil),
		waits:    prometheus.NewDesc("ma_db_pool_empty_acquire_total", "Adquisiciones que esperaron por pool vacío.", nil, nil),
	}
	return reg.Register(c)
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.idle
	ch <- c.acquired
	ch <- c.max
	ch <- c.waits
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.waits, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
}
