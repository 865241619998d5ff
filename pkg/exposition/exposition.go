// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

// Package exposition renders container samples into the Prometheus text
// exposition format. Rendering is stateless: every call builds a one-shot
// registry from the rows it is given, so the output never carries stale
// series for containers that disappeared between scrapes.
package exposition

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/dockerstats/cgroup-exporter/pkg/sampler"
)

const (
	LabelContainerID   = "container_id"
	LabelContainerName = "container_name"

	MetricMemoryUsage = "container_memory_usage_bytes"
	MetricCPUUser     = "container_cpu_user_seconds_total"
	MetricCPUSystem   = "container_cpu_system_seconds_total"
	MetricBlkioRead   = "container_blkio_read_bytes_total"
	MetricBlkioWrite  = "container_blkio_write_bytes_total"
)

// familyOrder pins the order metric families appear in the rendered text.
// The registry sorts series inside a family by label values, so together
// the two give byte-identical output for identical input.
var familyOrder = []string{
	MetricMemoryUsage,
	MetricCPUUser,
	MetricCPUSystem,
	MetricBlkioRead,
	MetricBlkioWrite,
}

const nanosPerSecond = 1e9

// Row is one container ready for rendering. Labels must already be
// filtered and sanitized.
type Row struct {
	ID     string
	Name   string
	Labels map[string]string
	Sample sampler.Sample
}

// rowCollector is an unchecked collector: Describe sends nothing, so the
// registry accepts whatever label dimensions each row carries.
type rowCollector struct {
	rows []Row
}

func (rowCollector) Describe(chan<- *prometheus.Desc) {}

func (c rowCollector) Collect(ch chan<- prometheus.Metric) {
	for _, row := range c.rows {
		labels := prometheus.Labels{
			LabelContainerID:   row.ID,
			LabelContainerName: row.Name,
		}
		for k, v := range row.Labels {
			// Container labels never override the identity labels.
			if _, reserved := labels[k]; reserved {
				continue
			}
			labels[k] = v
		}

		emit := func(name, help string, vt prometheus.ValueType, raw *uint64, scale float64) {
			if raw == nil {
				return
			}
			desc := prometheus.NewDesc(name, help, nil, labels)
			ch <- prometheus.MustNewConstMetric(desc, vt, float64(*raw)*scale)
		}

		emit(MetricMemoryUsage, "Current memory usage of the container in bytes.",
			prometheus.GaugeValue, row.Sample.MemoryBytes, 1)
		emit(MetricCPUUser, "Cumulative user CPU time consumed by the container in seconds.",
			prometheus.CounterValue, row.Sample.UserCPUNanos, 1/nanosPerSecond)
		emit(MetricCPUSystem, "Cumulative system CPU time consumed by the container in seconds.",
			prometheus.CounterValue, row.Sample.SystemCPUNanos, 1/nanosPerSecond)
		emit(MetricBlkioRead, "Cumulative bytes read from block devices by the container.",
			prometheus.CounterValue, row.Sample.IOReadBytes, 1)
		emit(MetricBlkioWrite, "Cumulative bytes written to block devices by the container.",
			prometheus.CounterValue, row.Sample.IOWriteBytes, 1)
	}
}

// Render encodes the rows as Prometheus text exposition. Families appear
// in a fixed order and rows with no present fields contribute nothing.
func Render(rows []Row) ([]byte, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(rowCollector{rows: rows}); err != nil {
		return nil, err
	}

	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, name := range familyOrder {
		mf, ok := byName[name]
		if !ok {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
