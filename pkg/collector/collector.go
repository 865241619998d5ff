// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

// Package collector ties the cgroup scanner, the sampler and the metadata
// cache together into a single collection pass per scrape.
package collector

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dockerstats/cgroup-exporter/pkg/containers"
	"github.com/dockerstats/cgroup-exporter/pkg/exposition"
	"github.com/dockerstats/cgroup-exporter/pkg/labels"
	"github.com/dockerstats/cgroup-exporter/pkg/logger"
	"github.com/dockerstats/cgroup-exporter/pkg/sampler"
)

// Lister enumerates the container IDs currently present in the cgroup
// hierarchy. cgroups.Topology satisfies it.
type Lister interface {
	ContainerIDs() ([]string, error)
}

type Collector struct {
	lister  Lister
	sampler sampler.Sampler
	cache   *containers.Cache
	policy  labels.Policy
	log     logrus.FieldLogger
}

func New(lister Lister, s sampler.Sampler, cache *containers.Cache, policy labels.Policy) *Collector {
	return &Collector{
		lister:  lister,
		sampler: s,
		cache:   cache,
		policy:  policy,
		log:     logger.GetLogger(),
	}
}

// Collect runs one collection pass and returns the rendered exposition.
// Listing failures are systemic and surface as an error; everything that
// goes wrong for an individual container only removes that container
// from the output.
func (c *Collector) Collect() ([]byte, error) {
	ids, err := c.lister.ContainerIDs()
	if err != nil {
		return nil, fmt.Errorf("listing container cgroups: %w", err)
	}

	type sampled struct {
		id     string
		sample sampler.Sample
	}
	live := make([]sampled, 0, len(ids))
	unknown := false
	for _, id := range ids {
		s := c.sampler.Read(id)
		if s.Empty() {
			// The container exited between listing and reading.
			c.log.WithField("container", id).Debug("Skipping container with no readable cgroup data")
			continue
		}
		live = append(live, sampled{id: id, sample: s})
		if _, ok := c.cache.Lookup(id); !ok {
			unknown = true
		}
	}

	c.cache.EnsureFresh(unknown)

	rows := make([]exposition.Row, 0, len(live))
	for _, s := range live {
		row := exposition.Row{ID: s.id, Sample: s.sample}
		if meta, ok := c.cache.Lookup(s.id); ok {
			row.Name = meta.Name
			row.Labels = c.policy.Apply(meta.Labels)
		} else {
			// Still render the counters, with the id as the only identity.
			c.log.WithField("container", s.id).Debug("No metadata for container, rendering without name and labels")
		}
		rows = append(rows, row)
	}

	return exposition.Render(rows)
}
