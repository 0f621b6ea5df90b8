// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testcollector provides an implementation of stats.Collector that
// stores recorded metrics for verification in tests.
package testcollector

import (
	"sync"
	"time"

	"github.com/google/ldaudit/stats"
)

// Collector implements the stats.Collector interface and simply stores metrics
// by path. It is safe for concurrent use.
type Collector struct {
	stats.NoopCollector

	mu            sync.Mutex
	dirStats      map[string]*stats.DirScannedStats
	binaryStats   map[string]*stats.BinaryAnalyzedStats
	detectorRuns  []string
	exportedBytes map[string]int
}

// New returns a new test Collector with maps initialized.
func New() *Collector {
	return &Collector{
		dirStats:      make(map[string]*stats.DirScannedStats),
		binaryStats:   make(map[string]*stats.BinaryAnalyzedStats),
		exportedBytes: make(map[string]int),
	}
}

// AfterDirScanned stores the metrics of a directory listing.
func (c *Collector) AfterDirScanned(dirstats *stats.DirScannedStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirStats[dirstats.Path] = dirstats
}

// AfterBinaryAnalyzed stores the metrics of an attribute extraction.
func (c *Collector) AfterBinaryAnalyzed(binstats *stats.BinaryAnalyzedStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.binaryStats[binstats.Path] = binstats
}

// AfterDetectorRun records the names of the detectors that ran, in order.
func (c *Collector) AfterDetectorRun(name string, _ time.Duration, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detectorRuns = append(c.detectorRuns, name)
}

// AfterResultsExported sums the bytes written per destination.
func (c *Collector) AfterResultsExported(destination string, bytes int, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exportedBytes[destination] += bytes
}

// DirScannedResult returns the result metric for a given directory, if found.
// Otherwise, returns an empty string.
func (c *Collector) DirScannedResult(path string) stats.DirScannedResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dirstats, ok := c.dirStats[path]; ok {
		return dirstats.Result
	}
	return ""
}

// DirScannedFiles returns the number of files assessed in a given directory.
func (c *Collector) DirScannedFiles(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dirstats, ok := c.dirStats[path]; ok {
		return dirstats.Files
	}
	return 0
}

// BinaryAnalyzedResult returns the result metric for a given binary, if found.
// Otherwise, returns an empty string.
func (c *Collector) BinaryAnalyzedResult(path string) stats.BinaryAnalyzedResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if binstats, ok := c.binaryStats[path]; ok {
		return binstats.Result
	}
	return ""
}

// DetectorRuns returns the names of the detectors that ran.
func (c *Collector) DetectorRuns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.detectorRuns...)
}

// ExportedBytes returns the number of bytes written to a destination.
func (c *Collector) ExportedBytes(destination string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exportedBytes[destination]
}
