// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package defaults

import "time"

const (
	// DefaultCgroupRoot is the default path where cgroupfs is mounted
	DefaultCgroupRoot = "/sys/fs/cgroup"

	// DefaultContainersDir is the default Docker containers metadata directory
	DefaultContainersDir = "/var/lib/docker/containers"

	// DefaultServerAddress is the default listen address for the metrics
	// server. Localhost only; must be changed to be reachable over the network.
	DefaultServerAddress = "127.0.0.1:3000"

	// DefaultMinMetadataRefresh is the minimum interval between two full
	// rescans of the containers metadata directory
	DefaultMinMetadataRefresh = 2000 * time.Millisecond
)
