// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package sampler

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readUintFile reads a pseudo-file holding a single numeric value.
func readUintFile(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// readFlatKeyed reads a "KEY VALUE" per line pseudo-file (e.g. cpu.stat) and
// returns the values of the requested keys. Unknown keys are skipped; a
// requested key that is missing from the file is an error.
func readFlatKeyed(path string, keys ...string) (map[string]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	out := make(map[string]uint64, len(keys))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		for _, key := range keys {
			if fields[0] != key {
				continue
			}
			v, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %s key %s: %w", path, key, err)
			}
			out[fields[0]] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, key := range keys {
		if _, ok := out[key]; !ok {
			return nil, fmt.Errorf("key %s not found in %s", key, path)
		}
	}
	return out, nil
}

// readNestedKeyed reads a per-device "DEVICE KEY=VALUE ..." pseudo-file (e.g.
// io.stat) and returns the requested keys summed across all device lines.
func readNestedKeyed(path string, keys ...string) (map[string]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	out := make(map[string]uint64, len(keys))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		for _, kv := range fields[1:] {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			for _, key := range keys {
				if k != key {
					continue
				}
				n, err := strconv.ParseUint(v, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("parsing %s key %s: %w", path, key, err)
				}
				out[k] += n
			}
		}
	}
	return out, scanner.Err()
}

// readServiceBytes reads a v1 "MAJOR:MINOR OP VALUE" per-device accounting
// file (blkio.throttle.io_service_bytes) and returns the per-operation sums
// across all devices.
func readServiceBytes(path string, ops ...string) (map[string]uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	out := make(map[string]uint64, len(ops))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// The trailing "Total VALUE" line has only two fields.
		if len(fields) != 3 {
			continue
		}
		for _, op := range ops {
			if fields[1] != op {
				continue
			}
			v, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing %s op %s: %w", path, op, err)
			}
			out[op] += v
		}
	}
	return out, scanner.Err()
}
