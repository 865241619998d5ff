// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package option

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
	"github.com/dockerstats/cgroup-exporter/pkg/defaults"
)

func parseFlags(t *testing.T, args ...string) error {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	flags := pflag.NewFlagSet("cgroup-exporter", pflag.ContinueOnError)
	AddFlags(flags)
	require.NoError(t, flags.Parse(args))
	require.NoError(t, viper.BindPFlags(flags))
	return ReadAndSetFlags()
}

func TestDefaults(t *testing.T) {
	require.NoError(t, parseFlags(t))
	assert.Equal(t, defaults.DefaultCgroupRoot, Config.CgroupRoot)
	assert.Equal(t, defaults.DefaultContainersDir, Config.ContainersDir)
	assert.Equal(t, defaults.DefaultServerAddress, Config.ServerAddress)
	assert.Equal(t, defaults.DefaultMinMetadataRefresh, Config.MinMetadataRefresh)
	assert.Equal(t, cgroups.CGROUP_UNDEF, Config.CgroupVersion)
	assert.Equal(t, cgroups.DRIVER_UNDEF, Config.CgroupDriver)
	assert.Empty(t, Config.BasicAuth)
	assert.False(t, Config.Debug)
}

func TestCgroupOverrides(t *testing.T) {
	require.NoError(t, parseFlags(t, "--cgroup-version=v2", "--cgroup-driver=systemd"))
	assert.Equal(t, cgroups.CGROUP_V2, Config.CgroupVersion)
	assert.Equal(t, cgroups.DRIVER_SYSTEMD, Config.CgroupDriver)

	assert.Error(t, parseFlags(t, "--cgroup-version=v3"))
	assert.Error(t, parseFlags(t, "--cgroup-driver=podman"))
}

func TestLabelLists(t *testing.T) {
	require.NoError(t, parseFlags(t, "--include-labels=env,app.kind"))
	assert.Equal(t, []string{"env", "app.kind"}, Config.IncludeLabels)
	assert.Empty(t, Config.ExcludeLabels)
}

func TestMinMetadataRefresh(t *testing.T) {
	require.NoError(t, parseFlags(t, "--min-metadata-refresh=5s"))
	assert.Equal(t, 5*time.Second, Config.MinMetadataRefresh)

	require.NoError(t, parseFlags(t, "--min-metadata-refresh=0"))
	assert.Equal(t, time.Duration(0), Config.MinMetadataRefresh)
}

func TestBasicAuthValidation(t *testing.T) {
	require.NoError(t, parseFlags(t, "--basic-auth=scraper:hunter2"))
	assert.Equal(t, "scraper:hunter2", Config.BasicAuth)

	assert.Error(t, parseFlags(t, "--basic-auth=nopassword"))
}

func TestEmptyPathsRejected(t *testing.T) {
	assert.Error(t, parseFlags(t, "--cgroup-root="))
	assert.Error(t, parseFlags(t, "--containers-dir="))
	assert.Error(t, parseFlags(t, "--server-address="))
}
