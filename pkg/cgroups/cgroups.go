// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package cgroups

import (
	"fmt"
	"path/filepath"
	"strings"
)

type CgroupVersion int

const (
	CGROUP_UNDEF CgroupVersion = iota
	CGROUP_V1
	CGROUP_V2
)

func (v CgroupVersion) String() string {
	return [...]string{
		CGROUP_UNDEF: "undefined",
		CGROUP_V1:    "Cgroupv1",
		CGROUP_V2:    "Cgroupv2",
	}[v]
}

// ParseVersion parses a user supplied cgroup version override. The empty
// string means autodetect.
func ParseVersion(s string) (CgroupVersion, error) {
	switch strings.ToLower(s) {
	case "":
		return CGROUP_UNDEF, nil
	case "v1", "1":
		return CGROUP_V1, nil
	case "v2", "2":
		return CGROUP_V2, nil
	}
	return CGROUP_UNDEF, fmt.Errorf("unknown cgroup version '%s', expected 'v1' or 'v2'", s)
}

// CgroupDriver is the naming convention the container runtime uses when it
// creates container cgroup directories.
type CgroupDriver int

const (
	DRIVER_UNDEF CgroupDriver = iota
	// DRIVER_CGROUPFS nests containers under a flat docker/<id> path
	DRIVER_CGROUPFS
	// DRIVER_SYSTEMD nests containers under system.slice/docker-<id>.scope
	DRIVER_SYSTEMD
)

func (d CgroupDriver) String() string {
	return [...]string{
		DRIVER_UNDEF:    "undefined",
		DRIVER_CGROUPFS: "cgroupfs",
		DRIVER_SYSTEMD:  "systemd",
	}[d]
}

// ParseDriver parses a user supplied cgroup driver override. The empty string
// means autodetect.
func ParseDriver(s string) (CgroupDriver, error) {
	switch strings.ToLower(s) {
	case "":
		return DRIVER_UNDEF, nil
	case "cgroupfs":
		return DRIVER_CGROUPFS, nil
	case "systemd":
		return DRIVER_SYSTEMD, nil
	}
	return DRIVER_UNDEF, fmt.Errorf("unknown cgroup driver '%s', expected 'cgroupfs' or 'systemd'", s)
}

const (
	// Container ids are 64 hex characters.
	containerIDLen = 64

	systemdScopePrefix = "docker-"
	systemdScopeSuffix = ".scope"

	dockerDir      = "docker"
	systemSliceDir = "system.slice"
)

// Topology is the detected cgroup layout. It is computed once at startup and
// never mutated afterwards.
type Topology struct {
	Root    string
	Version CgroupVersion
	Driver  CgroupDriver

	// LowConfidence is set when one of the probes was inconclusive and a
	// documented default was assumed. Callers should log it, never abort.
	LowConfidence bool
}

// ContainersDir returns the directory holding one cgroup directory per
// container for the given v1 controller. The controller is ignored on v2
// where the hierarchy is unified.
func (t Topology) ContainersDir(controller string) string {
	dir := t.Root
	if t.Version == CGROUP_V1 {
		dir = filepath.Join(dir, controller)
	}
	if t.Driver == DRIVER_SYSTEMD {
		return filepath.Join(dir, systemSliceDir)
	}
	return filepath.Join(dir, dockerDir)
}

// ControllerPath returns the per-container cgroup directory for the given v1
// controller. On v2 the controller is ignored.
func (t Topology) ControllerPath(controller string, id string) string {
	return filepath.Join(t.ContainersDir(controller), t.ContainerDirName(id))
}

// ContainerDirName returns the cgroup directory name for a container id
// under the configured driver convention.
func (t Topology) ContainerDirName(id string) string {
	if t.Driver == DRIVER_SYSTEMD {
		return systemdScopePrefix + id + systemdScopeSuffix
	}
	return id
}

// containerID extracts the container id from a cgroup directory name, or
// returns false when the name does not follow the driver convention.
func (t Topology) containerID(dirName string) (string, bool) {
	if t.Driver == DRIVER_SYSTEMD {
		if !strings.HasPrefix(dirName, systemdScopePrefix) || !strings.HasSuffix(dirName, systemdScopeSuffix) {
			return "", false
		}
		dirName = strings.TrimSuffix(strings.TrimPrefix(dirName, systemdScopePrefix), systemdScopeSuffix)
	}
	if len(dirName) != containerIDLen {
		return "", false
	}
	return dirName, true
}
