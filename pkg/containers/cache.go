// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

package containers

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

// Snapshot maps container ids to their metadata. A snapshot is always fully
// built before it becomes visible and is never mutated afterwards; the cache
// replaces it wholesale.
type Snapshot struct {
	Entries map[string]Metadata
	BuiltAt time.Time
}

// Cache holds the current metadata snapshot. Lookups are read-mostly against
// an atomically published pointer; rescans rebuild the whole snapshot under a
// rate limit and concurrent triggers collapse into one in-flight rebuild.
type Cache struct {
	dir      string
	snapshot atomic.Pointer[Snapshot]
	limiter  *rate.Limiter
	rescan   singleflight.Group
}

// NewCache returns a cache over the given containers directory, initialized
// with an empty snapshot. A minRefresh of zero disables the rate gate so
// unknown ids always trigger a rescan.
func NewCache(dir string, minRefresh time.Duration) *Cache {
	c := &Cache{dir: dir}
	if minRefresh > 0 {
		c.limiter = rate.NewLimiter(rate.Every(minRefresh), 1)
	}
	c.snapshot.Store(&Snapshot{Entries: make(map[string]Metadata), BuiltAt: time.Now()})
	return c
}

// Lookup returns the metadata of a container from the current snapshot. It
// never touches the filesystem.
func (c *Cache) Lookup(id string) (Metadata, bool) {
	meta, ok := c.snapshot.Load().Entries[id]
	return meta, ok
}

// EnsureFresh rescans the containers directory when ids unknown to the
// current snapshot were observed and the minimum refresh interval elapsed.
// Racing callers either perform the one rescan or return once it finished.
func (c *Cache) EnsureFresh(unknownIDsPresent bool) {
	if !unknownIDsPresent {
		return
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return
	}
	c.rescan.Do("rebuild", func() (interface{}, error) {
		c.Rebuild()
		return nil, nil
	})
}

// Rebuild scans every container descriptor and atomically publishes a brand
// new snapshot. A descriptor that fails to parse is skipped; readers keep the
// previous snapshot if the directory itself cannot be listed.
func (c *Cache) Rebuild() {
	log := logger.GetLogger()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		log.WithError(err).WithField("containers.dir", c.dir).
			Warn("Failed to list containers directory, keeping previous metadata snapshot")
		return
	}

	snap := &Snapshot{
		Entries: make(map[string]Metadata, len(entries)),
		BuiltAt: time.Now(),
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			log.WithError(err).WithField("container.dir", entry.Name()).
				Warn("Skipping unparsable container descriptor")
			continue
		}
		snap.Entries[meta.ID] = meta
	}

	c.snapshot.Store(snap)
	log.WithField("containers.count", len(snap.Entries)).Debug("Refreshed container metadata")
}
