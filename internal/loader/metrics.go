package loader

import (
	"errors"

	"github.com/annel0/voxel-world/internal/regionfile"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics: Prometheus-метрики загрузки регионов.
//
// Метрики:
// * voxelworld_loader_regions_loaded_total: counter
// * voxelworld_loader_regions_failed_total{reason}: counter (name, format, conflict, io)
// * voxelworld_loader_blocks_inserted_total: counter
// * voxelworld_loader_region_duration_seconds: histogram
type Metrics struct {
	regionsLoaded  prometheus.Counter
	regionsFailed  *prometheus.CounterVec
	blocksInserted prometheus.Counter
	regionDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// nil означает дефолтный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		regionsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelworld",
			Subsystem: "loader",
			Name:      "regions_loaded_total",
			Help:      "Число успешно загруженных файлов регионов.",
		}),
		regionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelworld",
			Subsystem: "loader",
			Name:      "regions_failed_total",
			Help:      "Число файлов регионов, загрузка которых не удалась.",
		}, []string{"reason"}),
		blocksInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelworld",
			Subsystem: "loader",
			Name:      "blocks_inserted_total",
			Help:      "Число блоков, вставленных в пространственный хеш.",
		}),
		regionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelworld",
			Subsystem: "loader",
			Name:      "region_duration_seconds",
			Help:      "Длительность загрузки одного файла региона.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}

	reg.MustRegister(m.regionsLoaded, m.regionsFailed, m.blocksInserted, m.regionDuration)
	return m
}

func (m *Metrics) observeLoaded(blocks int, seconds float64) {
	if m == nil {
		return
	}
	m.regionsLoaded.Inc()
	m.blocksInserted.Add(float64(blocks))
	m.regionDuration.Observe(seconds)
}

func (m *Metrics) observeFailed(err error) {
	if m == nil {
		return
	}
	m.regionsFailed.WithLabelValues(failureReason(err)).Inc()
}

// failureReason классифицирует ошибку загрузки для метки reason
func failureReason(err error) string {
	switch {
	case errors.Is(err, regionfile.ErrBadName):
		return "name"
	case errors.Is(err, regionfile.ErrFormat):
		return "format"
	case errors.Is(err, world.ErrDuplicate),
		errors.Is(err, world.ErrGeometryMismatch),
		errors.Is(err, world.ErrOutOfBounds),
		errors.Is(err, world.ErrVoxelCount):
		return "conflict"
	default:
		return "io"
	}
}
