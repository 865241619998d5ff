// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package cgroups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("")
	assert.NoError(t, err)
	assert.Equal(t, CGROUP_UNDEF, v)

	v, err = ParseVersion("v2")
	assert.NoError(t, err)
	assert.Equal(t, CGROUP_V2, v)

	v, err = ParseVersion("1")
	assert.NoError(t, err)
	assert.Equal(t, CGROUP_V1, v)

	_, err = ParseVersion("v3")
	assert.Error(t, err)
}

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver("systemd")
	assert.NoError(t, err)
	assert.Equal(t, DRIVER_SYSTEMD, d)

	d, err = ParseDriver("")
	assert.NoError(t, err)
	assert.Equal(t, DRIVER_UNDEF, d)

	_, err = ParseDriver("runc")
	assert.Error(t, err)
}

func TestDetectUnifiedMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, unifiedMarker), []byte("cpu io memory\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, dockerDir), 0755))

	// No driver override present: version still must come out as v2 from
	// the unified marker alone.
	topo := Detect(root, CGROUP_UNDEF, DRIVER_UNDEF)
	assert.Equal(t, CGROUP_V2, topo.Version)
	assert.Equal(t, DRIVER_CGROUPFS, topo.Driver)
	assert.False(t, topo.LowConfidence)
}

func TestDetectV1Layout(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ControllerMemory, systemSliceDir), 0755))

	topo := Detect(root, CGROUP_UNDEF, DRIVER_UNDEF)
	assert.Equal(t, CGROUP_V1, topo.Version)
	assert.Equal(t, DRIVER_SYSTEMD, topo.Driver)
	assert.False(t, topo.LowConfidence)
}

func TestDetectDockerDirWinsOverSystemSlice(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, unifiedMarker), []byte("cpu io memory\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, dockerDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, systemSliceDir), 0755))

	topo := Detect(root, CGROUP_V2, DRIVER_UNDEF)
	assert.Equal(t, DRIVER_CGROUPFS, topo.Driver)
}

func TestDetectInconclusiveFallsBack(t *testing.T) {
	topo := Detect(t.TempDir(), CGROUP_UNDEF, DRIVER_UNDEF)
	assert.Equal(t, CGROUP_V1, topo.Version)
	assert.Equal(t, DRIVER_CGROUPFS, topo.Driver)
	assert.True(t, topo.LowConfidence)
}

func TestDetectOverridesSkipProbing(t *testing.T) {
	// Nonexistent root: probing would be inconclusive, overrides are not.
	topo := Detect("/nonexistent-cgroup-root", CGROUP_V2, DRIVER_SYSTEMD)
	assert.Equal(t, CGROUP_V2, topo.Version)
	assert.Equal(t, DRIVER_SYSTEMD, topo.Driver)
	assert.False(t, topo.LowConfidence)
}

func TestControllerPath(t *testing.T) {
	v1fs := Topology{Root: "/sys/fs/cgroup", Version: CGROUP_V1, Driver: DRIVER_CGROUPFS}
	assert.Equal(t, "/sys/fs/cgroup/memory/docker/"+testID, v1fs.ControllerPath(ControllerMemory, testID))

	v1sd := Topology{Root: "/sys/fs/cgroup", Version: CGROUP_V1, Driver: DRIVER_SYSTEMD}
	assert.Equal(t, "/sys/fs/cgroup/blkio/system.slice/docker-"+testID+".scope", v1sd.ControllerPath(ControllerBlkio, testID))

	v2sd := Topology{Root: "/sys/fs/cgroup", Version: CGROUP_V2, Driver: DRIVER_SYSTEMD}
	assert.Equal(t, "/sys/fs/cgroup/system.slice/docker-"+testID+".scope", v2sd.ControllerPath("", testID))
}

func TestContainerID(t *testing.T) {
	cgroupfs := Topology{Driver: DRIVER_CGROUPFS}
	id, ok := cgroupfs.containerID(testID)
	assert.True(t, ok)
	assert.Equal(t, testID, id)

	_, ok = cgroupfs.containerID("init.scope")
	assert.False(t, ok)

	systemd := Topology{Driver: DRIVER_SYSTEMD}
	id, ok = systemd.containerID("docker-" + testID + ".scope")
	assert.True(t, ok)
	assert.Equal(t, testID, id)

	_, ok = systemd.containerID(testID)
	assert.False(t, ok)

	_, ok = systemd.containerID("docker-tooshort.scope")
	assert.False(t, ok)
}

func TestContainerIDs(t *testing.T) {
	root := t.TempDir()
	otherID := strings.Repeat("f", 64)
	dir := filepath.Join(root, ControllerMemory, dockerDir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, testID), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, otherID), 0755))
	// Files and oddly named directories are not containers.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-container"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.usage_in_bytes"), []byte("0\n"), 0644))

	topo := Topology{Root: root, Version: CGROUP_V1, Driver: DRIVER_CGROUPFS}
	ids, err := topo.ContainerIDs()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{testID, otherID}, ids)
}

func TestContainerIDsMissingDir(t *testing.T) {
	topo := Topology{Root: t.TempDir(), Version: CGROUP_V2, Driver: DRIVER_CGROUPFS}
	ids, err := topo.ContainerIDs()
	assert.NoError(t, err)
	assert.Empty(t, ids)
}
