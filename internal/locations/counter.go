// Open Event Server - Event Management Platform
// Copyright 2026 The Open Event Server Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/simarsingh24/open-event-server

package locations

import (
	"sort"

	"github.com/simarsingh24/open-event-server/internal/models"
)

// Counter tallies names and remembers the order each was first seen.
// The zero value is ready to use. Counter is not safe for concurrent use.
type Counter struct {
	counts map[string]int
	order  []string
}

// Add counts one occurrence of name.
func (c *Counter) Add(name string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, seen := c.counts[name]; !seen {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// Len returns the number of distinct names.
func (c *Counter) Len() int {
	return len(c.order)
}

// MostCommon returns up to n names ordered by descending count. Names with
// equal counts keep their first-seen order. n <= 0 returns every name.
func (c *Counter) MostCommon(n int) []models.LocationCount {
	out := make([]models.LocationCount, len(c.order))
	for i, name := range c.order {
		out[i] = models.LocationCount{Name: name, Count: c.counts[name]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopLocations counts names and returns the n most frequent.
func TopLocations(names []string, n int) []string {
	var c Counter
	for _, name := range names {
		c.Add(name)
	}
	return Names(c.MostCommon(n))
}

// Names projects a ranking to its names.
func Names(counts []models.LocationCount) []string {
	names := make([]string, len(counts))
	for i, lc := range counts {
		names[i] = lc.Name
	}
	return names
}
