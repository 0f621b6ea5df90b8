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

// Package binaries extracts the link attributes of every program and library
// found in the search directories and detects hijackable RPATH and RUNPATH
// directories, missing dependencies, sanitizer runtimes and writable program
// interpreters.
package binaries

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/ldaudit/classifier"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/elfattr"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/searchpath"
	"github.com/google/ldaudit/stats"
	"github.com/google/ldaudit/tools"
	"go.uber.org/multierr"
)

// Name of the detector.
const Name = "binaries"

// Detector analyzes binaries.
type Detector struct{}

// New returns a new binaries detector.
func New() detector.Detector { return &Detector{} }

// Name of the detector.
func (Detector) Name() string { return Name }

// Version of the detector.
func (Detector) Version() int { return 0 }

// Requirements of the Detector. Both tools are optional: without readelf the
// RPATH, RUNPATH and interpreter checks are skipped, without ldd the
// dependency checks are.
func (Detector) Requirements() *plugin.Capabilities {
	return &plugin.Capabilities{OS: plugin.OSLinux, RunningSystem: true, Tools: []string{tools.Readelf, tools.Ldd}}
}

// Scan lists the search directories, then extracts and classifies every
// candidate binary once.
func (Detector) Scan(ctx context.Context, sc *detector.ScanContext) ([]*finding.Finding, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if sc.Extractor == nil {
		return nil, nil
	}

	var seen detector.Seen
	var found candidates
	listErr := detector.ForEach(ctx, sc.Workers, sc.Dirs(detector.ListedOrigins...), func(_ context.Context, d detector.Dir) error {
		files, err := sc.ListFiles(d.Path)
		if err != nil {
			return err
		}
		for _, f := range files {
			a := sc.Checker.Assess(f, "")
			if isCandidate(a, d.Library) && seen.Add(a.Resolved) {
				found.add(a.Resolved)
			}
		}
		return nil
	})

	var acc finding.Accumulator
	analyzeErr := detector.ForEach(ctx, sc.Workers, found.list(), func(ctx context.Context, p string) error {
		findings, err := Analyze(ctx, sc, p)
		acc.Add(findings...)
		return err
	})
	return acc.Findings(), multierr.Append(listErr, analyzeErr)
}

// Analyze extracts and classifies the binary at path p.
func Analyze(ctx context.Context, sc *detector.ScanContext, p string) ([]*finding.Finding, error) {
	start := time.Now()
	bs := &stats.BinaryAnalyzedStats{Path: p, Result: stats.BinaryAnalyzedResultSuccess}
	defer func() {
		bs.Runtime = time.Since(start)
		sc.StatsCollector().AfterBinaryAnalyzed(bs)
	}()

	r, err := sc.Extractor.Extract(ctx, p)
	if r == nil && err == nil {
		bs.Result = stats.BinaryAnalyzedResultNotApplicable
		return nil, nil
	}
	var findings []*finding.Finding
	if r != nil {
		findings = Classify(sc.Checker, r)
	}
	if err != nil {
		bs.Result = stats.BinaryAnalyzedResultErrorTool
		bs.Error = err
		return findings, &detector.SubjectError{Path: p, Err: err}
	}
	return findings, nil
}

// Classify assesses the RPATH, RUNPATH and interpreter of r and classifies
// the record.
func Classify(c *risk.Checker, r *elfattr.Record) []*finding.Finding {
	var interp *risk.Assessment
	if r.Interpreter != "" {
		a := c.Assess(r.Interpreter, "")
		interp = &a
	}
	return classifier.Binary(r, assessAll(c, r.Rpath), assessAll(c, r.Runpath), interp)
}

func assessAll(c *risk.Checker, entries []searchpath.Entry) []risk.Assessment {
	as := make([]risk.Assessment, 0, len(entries))
	for _, e := range entries {
		as = append(as, c.Assess(e.Raw, e.RelativeBase))
	}
	return as
}

// isCandidate reports whether a listed file should be analyzed: executables
// anywhere, and shared objects in library directories.
func isCandidate(a risk.Assessment, library bool) bool {
	if !a.Exists || !a.IsRegular {
		return false
	}
	return a.IsExecutable || (library && strings.Contains(filepath.Base(a.Resolved), ".so"))
}

// candidates collects binary paths from concurrent directory listings.
type candidates struct {
	mu    sync.Mutex
	paths []string
}

func (c *candidates) add(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, p)
}

func (c *candidates) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.paths)
}
