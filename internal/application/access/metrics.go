package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_module_resolutions_total",
		Help: "Resoluciones de módulos visibles por usuario.",
	})
	accessChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ma_access_changes_total",
		Help: "Escrituras sobre la matriz y los overrides, por operación.",
	}, []string{"op"})
)
