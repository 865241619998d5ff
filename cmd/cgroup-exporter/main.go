// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockerstats/cgroup-exporter/pkg/cgroups"
	"github.com/dockerstats/cgroup-exporter/pkg/collector"
	"github.com/dockerstats/cgroup-exporter/pkg/containers"
	"github.com/dockerstats/cgroup-exporter/pkg/labels"
	"github.com/dockerstats/cgroup-exporter/pkg/logger"
	"github.com/dockerstats/cgroup-exporter/pkg/option"
	"github.com/dockerstats/cgroup-exporter/pkg/sampler"
	"github.com/dockerstats/cgroup-exporter/pkg/server"
	"github.com/dockerstats/cgroup-exporter/pkg/version"
)

var log = logger.GetLogger()

const shutdownTimeout = 5 * time.Second

func exporterExecute() error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Logging should always be bootstrapped first. Do not add any code above this!
	if err := logger.SetupLogging(option.Config.LogOpts, option.Config.Debug); err != nil {
		log.Fatal(err)
	}

	log.WithField("version", version.Version).Info("Starting cgroup-exporter")
	log.WithField("config", viper.AllSettings()).Info("config settings")

	if err := checkDirAccess(option.Config.CgroupRoot); err != nil {
		return fmt.Errorf("cgroup root is not accessible: %w", err)
	}
	if err := checkDirAccess(option.Config.ContainersDir); err != nil {
		return fmt.Errorf("containers directory is not accessible: %w", err)
	}

	policy, err := labels.NewPolicy(option.Config.IncludeLabels, option.Config.ExcludeLabels)
	if err != nil {
		return err
	}

	topo := cgroups.Detect(option.Config.CgroupRoot, option.Config.CgroupVersion, option.Config.CgroupDriver)

	cache := containers.NewCache(option.Config.ContainersDir, option.Config.MinMetadataRefresh)
	// Warm the metadata cache so the first scrape already has names and
	// labels for long-running containers.
	cache.Rebuild()

	srv := server.New(server.Config{
		Address:   option.Config.ServerAddress,
		BasicAuth: option.Config.BasicAuth,
	}, collector.New(topo, sampler.New(topo), cache, policy))

	go func() {
		s := <-sigs
		log.Infof("Received signal %s, shutting down...", s)
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown failed")
		}
	}()

	return srv.Serve()
}

func checkDirAccess(dir string) error {
	_, err := os.ReadDir(dir)
	return err
}

func execute() error {
	rootCmd := &cobra.Command{
		Use:   "cgroup-exporter",
		Short: "Export per-container resource metrics from the cgroup filesystem",
		Run: func(cmd *cobra.Command, args []string) {
			if err := option.ReadAndSetFlags(); err != nil {
				log.WithError(err).Fatal("Failed to parse command line flags")
			}
			if err := exporterExecute(); err != nil {
				log.WithError(err).Fatal("Failed to start cgroup-exporter")
			}
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Version: %s\n", version.Version)
			version.ReadBuildInfo().Print()
		},
	})

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix("cgroup_exporter")
		if viper.IsSet(option.KeyConfigDir) {
			configDir := viper.GetString(option.KeyConfigDir)
			cm, err := option.ReadDirConfig(configDir)
			if err != nil {
				log.WithField(option.KeyConfigDir, configDir).WithError(err).Fatal("Failed to read config from directory")
			}
			if err := viper.MergeConfigMap(cm); err != nil {
				log.WithField(option.KeyConfigDir, configDir).WithError(err).Fatal("Failed to merge config from directory")
			}
			log.WithField(option.KeyConfigDir, configDir).Info("Loaded config from directory")
		}
		replacer := strings.NewReplacer("-", "_")
		viper.SetEnvKeyReplacer(replacer)
		viper.AutomaticEnv()
	})

	flags := rootCmd.PersistentFlags()
	option.AddFlags(flags)
	viper.BindPFlags(flags)
	return rootCmd.Execute()
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
