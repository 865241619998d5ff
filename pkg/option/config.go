// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package option

import (
	"time"

	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
	"github.com/dockerstats/cgroup-exporter/pkg/defaults"
)

// Config contains all the configuration used by the exporter.
var Config = config{
	// Initialize global defaults below.
	CgroupRoot:         defaults.DefaultCgroupRoot,
	ContainersDir:      defaults.DefaultContainersDir,
	ServerAddress:      defaults.DefaultServerAddress,
	MinMetadataRefresh: defaults.DefaultMinMetadataRefresh,

	// LogOpts contains logger parameters
	LogOpts: make(map[string]string),
}

type config struct {
	Debug bool

	// CgroupRoot is the mount point of the cgroup filesystem.
	CgroupRoot string
	// ContainersDir holds the Docker per-container state directories.
	ContainersDir string

	// CgroupVersion and CgroupDriver are CGROUP_UNDEF/DRIVER_UNDEF when
	// left to autodetection.
	CgroupVersion cgroups.CgroupVersion
	CgroupDriver  cgroups.CgroupDriver

	ServerAddress string
	// BasicAuth is a "user:password" pair. Empty disables authentication.
	BasicAuth string

	// MinMetadataRefresh bounds how often the container metadata
	// directory is rescanned. Zero removes the bound.
	MinMetadataRefresh time.Duration

	// IncludeLabels and ExcludeLabels are mutually exclusive container
	// label filters. Both empty passes every label through.
	IncludeLabels []string
	ExcludeLabels []string

	LogOpts map[string]string
}
