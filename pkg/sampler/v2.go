// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package sampler

import (
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

// v2 unified hierarchy file names and keys
const (
	v2MemoryCurrentFile = "memory.current"
	v2CPUStatFile       = "cpu.stat"
	v2CPUUserKey        = "user_usec"
	v2CPUSystemKey      = "system_usec"
	v2IOStatFile        = "io.stat"
	v2IOReadKey         = "rbytes"
	v2IOWriteKey        = "wbytes"
)

// v2Sampler reads the unified per-container directory. cpu.stat accounts in
// microseconds and is converted to nanoseconds so that both strategies
// normalize to the same units.
type v2Sampler struct {
	topo cgroups.Topology

	// Containers directory of the unified hierarchy, computed once.
	base string
}

func newV2Sampler(topo cgroups.Topology) *v2Sampler {
	return &v2Sampler{
		topo: topo,
		base: topo.ContainersDir(""),
	}
}

func (s *v2Sampler) Read(id string) Sample {
	dir := filepath.Join(s.base, s.topo.ContainerDirName(id))

	var sample Sample
	var errs error

	if v, err := readUintFile(filepath.Join(dir, v2MemoryCurrentFile)); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.MemoryBytes = ptr(v)
	}

	if stat, err := readFlatKeyed(filepath.Join(dir, v2CPUStatFile), v2CPUUserKey, v2CPUSystemKey); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.UserCPUNanos = ptr(stat[v2CPUUserKey] * 1000)
		sample.SystemCPUNanos = ptr(stat[v2CPUSystemKey] * 1000)
	}

	if sums, err := readNestedKeyed(filepath.Join(dir, v2IOStatFile), v2IOReadKey, v2IOWriteKey); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.IOReadBytes = ptr(sums[v2IOReadKey])
		sample.IOWriteBytes = ptr(sums[v2IOWriteKey])
	}

	if errs != nil {
		logger.GetLogger().WithError(errs).WithField("container.id", id).
			Debug("Cgroupv2 sample is partial")
	}
	return sample
}
