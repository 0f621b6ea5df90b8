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

// Package stats contains interfaces and utilities relating to the collection of
// statistics from ldaudit.
package stats

import (
	"time"

	"github.com/google/ldaudit/plugin"
)

// Collector is a component which is notified when certain events occur. It can be implemented with
// different metric backends to enable monitoring of ldaudit.
// Methods may be called concurrently from the scan workers.
type Collector interface {
	// AfterDirScanned is called after the files of a search directory were listed.
	AfterDirScanned(dirstats *DirScannedStats)
	// AfterBinaryAnalyzed is called after the link attributes of a binary were extracted.
	AfterBinaryAnalyzed(binstats *BinaryAnalyzedStats)
	AfterDetectorRun(name string, runtime time.Duration, err error)
	AfterScan(runtime time.Duration, status *plugin.ScanStatus)

	// AfterResultsExported is called after results have been exported. destination should merely be
	// a category of where the result was written to (e.g. 'file', 'stdout'), not the precise location.
	AfterResultsExported(destination string, bytes int, err error)
}

// NoopCollector implements Collector by doing nothing.
type NoopCollector struct{}

// AfterDirScanned implements Collector by doing nothing.
func (c NoopCollector) AfterDirScanned(dirstats *DirScannedStats) {}

// AfterBinaryAnalyzed implements Collector by doing nothing.
func (c NoopCollector) AfterBinaryAnalyzed(binstats *BinaryAnalyzedStats) {}

// AfterDetectorRun implements Collector by doing nothing.
func (c NoopCollector) AfterDetectorRun(name string, runtime time.Duration, err error) {}

// AfterScan implements Collector by doing nothing.
func (c NoopCollector) AfterScan(runtime time.Duration, status *plugin.ScanStatus) {}

// AfterResultsExported implements Collector by doing nothing.
func (c NoopCollector) AfterResultsExported(destination string, bytes int, err error) {}
