// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package option

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
	"github.com/dockerstats/cgroup-exporter/pkg/defaults"
	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

const (
	KeyConfigDir = "config-dir"
	KeyDebug     = "debug"

	KeyCgroupRoot    = "cgroup-root"
	KeyContainersDir = "containers-dir"
	KeyCgroupVersion = "cgroup-version"
	KeyCgroupDriver  = "cgroup-driver"

	KeyServerAddress = "server-address"
	KeyBasicAuth     = "basic-auth"

	KeyMinMetadataRefresh = "min-metadata-refresh"
	KeyIncludeLabels      = "include-labels"
	KeyExcludeLabels      = "exclude-labels"

	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
)

func ReadAndSetFlags() error {
	Config.Debug = viper.GetBool(KeyDebug)
	Config.CgroupRoot = viper.GetString(KeyCgroupRoot)
	Config.ContainersDir = viper.GetString(KeyContainersDir)
	Config.ServerAddress = viper.GetString(KeyServerAddress)
	Config.BasicAuth = viper.GetString(KeyBasicAuth)
	Config.MinMetadataRefresh = viper.GetDuration(KeyMinMetadataRefresh)
	Config.IncludeLabels = viper.GetStringSlice(KeyIncludeLabels)
	Config.ExcludeLabels = viper.GetStringSlice(KeyExcludeLabels)

	var err error
	if Config.CgroupVersion, err = cgroups.ParseVersion(viper.GetString(KeyCgroupVersion)); err != nil {
		return fmt.Errorf("failed to parse cgroup-version value: %w", err)
	}
	if Config.CgroupDriver, err = cgroups.ParseDriver(viper.GetString(KeyCgroupDriver)); err != nil {
		return fmt.Errorf("failed to parse cgroup-driver value: %w", err)
	}

	if Config.CgroupRoot == "" {
		return errors.New("cgroup-root must not be empty")
	}
	if Config.ContainersDir == "" {
		return errors.New("containers-dir must not be empty")
	}
	if Config.ServerAddress == "" {
		return errors.New("server-address must not be empty")
	}
	if Config.MinMetadataRefresh < 0 {
		return errors.New("min-metadata-refresh must be >= 0")
	}
	if auth := Config.BasicAuth; auth != "" && !strings.Contains(auth, ":") {
		return errors.New("basic-auth must be of the form user:password")
	}

	logLevel := viper.GetString(KeyLogLevel)
	logFormat := viper.GetString(KeyLogFormat)
	logger.PopulateLogOpts(Config.LogOpts, logLevel, logFormat)

	return nil
}

func AddFlags(flags *pflag.FlagSet) {
	flags.String(KeyConfigDir, "", "Configuration directory that contains a file for each option")
	flags.BoolP(KeyDebug, "d", false, "Enable debug messages. Equivalent to '--log-level=debug'")

	flags.String(KeyCgroupRoot, defaults.DefaultCgroupRoot, "Mount point of the cgroup filesystem")
	flags.String(KeyContainersDir, defaults.DefaultContainersDir, "Directory holding Docker per-container state (config.v2.json files)")
	flags.String(KeyCgroupVersion, "", "Force the cgroup hierarchy version ('v1' or 'v2'). Autodetected by default")
	flags.String(KeyCgroupDriver, "", "Force the container cgroup driver ('cgroupfs' or 'systemd'). Autodetected by default")

	flags.String(KeyServerAddress, defaults.DefaultServerAddress, "HTTP server address serving the /metrics endpoint")
	flags.String(KeyBasicAuth, "", "Require HTTP basic auth credentials of the form 'user:password'. Disabled by default")

	flags.Duration(KeyMinMetadataRefresh, defaults.DefaultMinMetadataRefresh, "Minimum interval between container metadata rescans. Set to 0 to rescan on every scrape that needs it")
	flags.StringSlice(KeyIncludeLabels, nil, "Comma-separated list of container labels to export. Mutually exclusive with exclude-labels")
	flags.StringSlice(KeyExcludeLabels, nil, "Comma-separated list of container labels to drop. Mutually exclusive with include-labels")

	flags.String(KeyLogLevel, "info", "Set log level")
	flags.String(KeyLogFormat, "text", "Set log format")
}
