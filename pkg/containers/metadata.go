// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package containers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// ConfigFile is the per-container descriptor Docker maintains under the
// containers directory.
const ConfigFile = "config.v2.json"

// Metadata is an immutable snapshot of one container's descriptive data,
// taken at scan time.
type Metadata struct {
	ID     string
	Name   string
	Labels map[string]string
}

// readMetadata extracts the container id, name and labels from one
// config.v2.json. The file is large and its schema churns across Docker
// versions, so only the three paths we need are extracted instead of
// unmarshalling the whole document.
func readMetadata(dir string) (Metadata, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	if !gjson.ValidBytes(data) {
		return Metadata{}, fmt.Errorf("%s: malformed JSON", path)
	}

	fields := gjson.GetManyBytes(data, "ID", "Name", "Config.Labels")

	id := fields[0].String()
	if id == "" {
		return Metadata{}, fmt.Errorf("%s: missing container ID", path)
	}

	meta := Metadata{
		ID: id,
		// Docker stores names with a leading slash.
		Name:   strings.TrimPrefix(fields[1].String(), "/"),
		Labels: make(map[string]string),
	}
	fields[2].ForEach(func(k, v gjson.Result) bool {
		meta.Labels[k.String()] = v.String()
		return true
	})
	return meta, nil
}
