// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package sampler

import (
	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
)

// Sample holds the raw counters read for one container. Every field is
// independently optional: nil means the corresponding controller was disabled
// or unreadable at sample time. A sample with all fields nil means the
// container disappeared between enumeration and read and must not be
// rendered.
type Sample struct {
	MemoryBytes    *uint64
	UserCPUNanos   *uint64
	SystemCPUNanos *uint64
	IOReadBytes    *uint64
	IOWriteBytes   *uint64
}

// Empty reports whether no field could be read at all.
func (s Sample) Empty() bool {
	return s.MemoryBytes == nil &&
		s.UserCPUNanos == nil &&
		s.SystemCPUNanos == nil &&
		s.IOReadBytes == nil &&
		s.IOWriteBytes == nil
}

// Sampler reads one container's raw counters from the cgroup filesystem.
// Implementations normalize to the same units regardless of the on-disk
// layout: bytes for memory and I/O, nanoseconds for CPU time.
type Sampler interface {
	Read(id string) Sample
}

// New selects the sampling strategy once, based on the detected topology.
func New(topo cgroups.Topology) Sampler {
	if topo.Version == cgroups.CGROUP_V2 {
		return newV2Sampler(topo)
	}
	return newV1Sampler(topo)
}

func ptr(v uint64) *uint64 {
	return &v
}
