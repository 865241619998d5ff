// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

//go:build linux
// +build linux

package cgroups

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

// Controllers read by the v1 sampler. On v2 the hierarchy is unified and the
// names only appear inside stat files.
const (
	ControllerMemory = "memory"
	ControllerCPU    = "cpu"
	ControllerBlkio  = "blkio"
)

// unifiedMarker exists at the cgroup root only on a v2 unified hierarchy.
const unifiedMarker = "cgroup.controllers"

// A probe inspects the filesystem and returns a definite answer or
// CGROUP_UNDEF / DRIVER_UNDEF when inconclusive. Probes are read-only and
// ordered from most to least authoritative.
type versionProbe func(root string) CgroupVersion

var versionProbes = []versionProbe{
	probeUnifiedMarker,
	probeStatfsMagic,
	probeMemoryController,
}

func probeStatfsMagic(root string) CgroupVersion {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		logger.GetLogger().WithError(err).WithField("cgroup.fs", root).Debug("Statfs on cgroup root failed")
		return CGROUP_UNDEF
	}

	switch st.Type {
	case unix.CGROUP2_SUPER_MAGIC:
		return CGROUP_V2
	case unix.CGROUP_SUPER_MAGIC, unix.TMPFS_MAGIC:
		// A v1 root is a tmpfs holding one mount per controller.
		return CGROUP_V1
	}
	return CGROUP_UNDEF
}

func probeUnifiedMarker(root string) CgroupVersion {
	if _, err := os.Stat(filepath.Join(root, unifiedMarker)); err == nil {
		return CGROUP_V2
	}
	return CGROUP_UNDEF
}

func probeMemoryController(root string) CgroupVersion {
	st, err := os.Stat(filepath.Join(root, ControllerMemory))
	if err == nil && st.IsDir() {
		return CGROUP_V1
	}
	return CGROUP_UNDEF
}

// detectDriver inspects the naming convention of the entries below the
// controller directory. Docker creates either a flat docker/ directory
// (cgroupfs driver) or scopes under system.slice/ (systemd driver).
func detectDriver(dir string) CgroupDriver {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("cgroup.path", dir).Debug("Driver probe could not list directory")
		return DRIVER_UNDEF
	}

	driver := DRIVER_UNDEF
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		switch entry.Name() {
		case dockerDir:
			// docker/ wins even when system.slice also exists, since
			// system.slice is present on any systemd host.
			return DRIVER_CGROUPFS
		case systemSliceDir:
			driver = DRIVER_SYSTEMD
		}
	}
	return driver
}

// Detect determines the cgroup topology in effect. Overrides skip the
// corresponding probe entirely; inconclusive probes collapse to a documented
// default (v1 layout, cgroupfs driver) with LowConfidence set. Detect never
// fails: the caller is expected to log low confidence results and continue.
func Detect(root string, versionOverride CgroupVersion, driverOverride CgroupDriver) Topology {
	log := logger.GetLogger().WithField("cgroup.fs", root)

	topo := Topology{Root: root, Version: versionOverride, Driver: driverOverride}

	if topo.Version != CGROUP_UNDEF && topo.Driver != DRIVER_UNDEF {
		// Both overridden, skip probing entirely.
		log.WithFields(logrus.Fields{
			"cgroup.version": topo.Version.String(),
			"cgroup.driver":  topo.Driver.String(),
		}).Info("Cgroup topology forced by configuration")
		return topo
	}

	if topo.Version == CGROUP_UNDEF {
		for _, probe := range versionProbes {
			if v := probe(root); v != CGROUP_UNDEF {
				topo.Version = v
				break
			}
		}
		if topo.Version == CGROUP_UNDEF {
			topo.Version = CGROUP_V1
			topo.LowConfidence = true
			log.Warn("Cgroup version probes were inconclusive, assuming Cgroupv1")
		}
	} else if guess := probeVersion(root); guess != CGROUP_UNDEF && guess != topo.Version {
		log.WithFields(logrus.Fields{
			"cgroup.version.detected": guess.String(),
			"cgroup.version.forced":   topo.Version.String(),
		}).Warn("Cgroup version override contradicts the detected layout")
	}

	if topo.Driver == DRIVER_UNDEF {
		dir := root
		if topo.Version == CGROUP_V1 {
			dir = filepath.Join(root, ControllerMemory)
		}
		topo.Driver = detectDriver(dir)
		if topo.Driver == DRIVER_UNDEF {
			topo.Driver = DRIVER_CGROUPFS
			topo.LowConfidence = true
			log.Warn("Cgroup driver probe was inconclusive, assuming cgroupfs")
		}
	}

	log.WithFields(logrus.Fields{
		"cgroup.version":        topo.Version.String(),
		"cgroup.driver":         topo.Driver.String(),
		"cgroup.low_confidence": topo.LowConfidence,
	}).Info("Cgroup topology detection done")

	return topo
}

func probeVersion(root string) CgroupVersion {
	for _, probe := range versionProbes {
		if v := probe(root); v != CGROUP_UNDEF {
			return v
		}
	}
	return CGROUP_UNDEF
}

// ContainerIDs lists the container ids currently present in the cgroup
// filesystem. This listing is the ground truth for which containers exist at
// the start of a collection pass. A missing containers directory means no
// containers; an unreadable cgroup root is a systemic error and fails the
// whole pass.
func (t Topology) ContainerIDs() ([]string, error) {
	dir := t.ContainersDir(ControllerMemory)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No containers were ever started under this root.
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, ok := t.containerID(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
