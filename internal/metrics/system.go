package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
)

// SystemStats holds the host readings exported alongside the agent metrics.
type SystemStats struct {
	LogicalCPUs  int
	PhysicalCPUs int
}

// SystemReader abstracts OS-level host facts retrieval.
type SystemReader interface {
	ReadStats(ctx context.Context) (*SystemStats, error)
}

// HostReader reads CPU counts with gopsutil.
type HostReader struct{}

// ReadStats returns the logical and physical CPU counts.
func (HostReader) ReadStats(ctx context.Context) (*SystemStats, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("metrics: system: logical cpus: %w", err)
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("metrics: system: physical cpus: %w", err)
	}
	return &SystemStats{LogicalCPUs: logical, PhysicalCPUs: physical}, nil
}

// SystemCollector is a prometheus.Collector reporting host CPU counts at
// scrape time.
type SystemCollector struct {
	reader   SystemReader
	logger   *slog.Logger
	timeout  time.Duration
	logical  *prometheus.Desc
	physical *prometheus.Desc
}

// NewSystemCollector creates a new SystemCollector.
func NewSystemCollector(reader SystemReader, logger *slog.Logger) *SystemCollector {
	return &SystemCollector{
		reader:  reader,
		logger:  logger,
		timeout: 2 * time.Second,
		logical: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "host", "logical_cpus"),
			"Number of online logical CPUs the event set spans.",
			nil, nil,
		),
		physical: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "host", "physical_cpus"),
			"Number of physical CPU cores.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SystemCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.logical
	ch <- c.physical
}

// Collect implements prometheus.Collector. A failed read yields no samples.
func (c *SystemCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.reader.ReadStats(ctx)
	if err != nil {
		c.logger.Warn("host stats read failed", "component", "metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.logical, prometheus.GaugeValue, float64(stats.LogicalCPUs))
	ch <- prometheus.MustNewConstMetric(c.physical, prometheus.GaugeValue, float64(stats.PhysicalCPUs))
}
