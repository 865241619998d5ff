// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package option

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

// ReadDirConfig reads a configuration directory where each file is named
// after an option key and holds its value, and returns a map suitable for
// viper.MergeConfigMap.
func ReadDirConfig(dirName string) (map[string]interface{}, error) {
	entries, err := os.ReadDir(dirName)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration directory: %w", err)
	}
	m := make(map[string]interface{})
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dirName, entry.Name()))
		if err != nil {
			logger.GetLogger().WithError(err).WithField("option", entry.Name()).
				Warn("Skipping unreadable config file")
			continue
		}
		m[entry.Name()] = strings.TrimSpace(string(data))
	}
	return m, nil
}
