// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package sampler

import (
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

// v1 controller file names
const (
	v1MemoryUsageFile = "memory.usage_in_bytes"
	v1CPUUserFile     = "cpuacct.usage_user"
	v1CPUSystemFile   = "cpuacct.usage_sys"
	v1IOServiceFile   = "blkio.throttle.io_service_bytes"
	v1IOReadOp        = "Read"
	v1IOWriteOp       = "Write"
)

// v1Sampler reads the three independent v1 controller hierarchies. Each
// controller is read on its own: one missing or unreadable file costs only
// the corresponding sample fields.
type v1Sampler struct {
	topo cgroups.Topology

	// Per-controller container directories, computed once.
	memoryBase string
	cpuBase    string
	blkioBase  string
}

func newV1Sampler(topo cgroups.Topology) *v1Sampler {
	return &v1Sampler{
		topo:       topo,
		memoryBase: topo.ContainersDir(cgroups.ControllerMemory),
		cpuBase:    topo.ContainersDir(cgroups.ControllerCPU),
		blkioBase:  topo.ContainersDir(cgroups.ControllerBlkio),
	}
}

func (s *v1Sampler) Read(id string) Sample {
	dir := s.topo.ContainerDirName(id)

	var sample Sample
	var errs error

	if v, err := readUintFile(filepath.Join(s.memoryBase, dir, v1MemoryUsageFile)); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.MemoryBytes = ptr(v)
	}

	// cpuacct accounts in nanoseconds already.
	if v, err := readUintFile(filepath.Join(s.cpuBase, dir, v1CPUUserFile)); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.UserCPUNanos = ptr(v)
	}
	if v, err := readUintFile(filepath.Join(s.cpuBase, dir, v1CPUSystemFile)); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.SystemCPUNanos = ptr(v)
	}

	if sums, err := readServiceBytes(filepath.Join(s.blkioBase, dir, v1IOServiceFile), v1IOReadOp, v1IOWriteOp); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		sample.IOReadBytes = ptr(sums[v1IOReadOp])
		sample.IOWriteBytes = ptr(sums[v1IOWriteOp])
	}

	if errs != nil {
		logger.GetLogger().WithError(errs).WithField("container.id", id).
			Debug("Cgroupv1 sample is partial")
	}
	return sample
}
