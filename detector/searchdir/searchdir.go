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

// Package searchdir detects writable directories in the program and library
// search paths, and replaceable files directly inside them.
package searchdir

import (
	"context"

	"github.com/google/ldaudit/classifier"
	"github.com/google/ldaudit/detector"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/searchpath"
)

// Name of the detector.
const Name = "searchdir"

// dirOrigins are classified as search directories here. The library path
// variables are classified by the envvar detector.
var dirOrigins = []searchpath.Origin{
	searchpath.OriginPath,
	searchpath.OriginLinkerDefault,
	searchpath.OriginLdSoConf,
	searchpath.OriginLdSoConfD,
}

// Detector checks search directories and the files they contain.
type Detector struct{}

// New returns a new searchdir detector.
func New() detector.Detector { return &Detector{} }

// Name of the detector.
func (Detector) Name() string { return Name }

// Version of the detector.
func (Detector) Version() int { return 0 }

// Requirements of the Detector. The linker default search path needs the
// loader trace; without it those directories are simply not collected.
func (Detector) Requirements() *plugin.Capabilities {
	return &plugin.Capabilities{OS: plugin.OSUnix, RunningSystem: true}
}

// Scan classifies the search directories, then lists each one once and
// classifies its files.
func (Detector) Scan(ctx context.Context, sc *detector.ScanContext) ([]*finding.Finding, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var acc finding.Accumulator
	for _, e := range sc.EntriesFrom(dirOrigins...) {
		acc.Add(classifier.SearchDir(e, sc.Checker.Assess(e.Raw, ""))...)
	}

	// A file reachable through several directories, e.g. a symlinked /bin, is
	// classified once.
	var seen detector.Seen
	err := detector.ForEach(ctx, sc.Workers, sc.Dirs(detector.ListedOrigins...), func(_ context.Context, d detector.Dir) error {
		files, err := sc.ListFiles(d.Path)
		if err != nil {
			return err
		}
		for _, f := range files {
			a := sc.Checker.Assess(f, "")
			if !relevant(a, d.Library) || !seen.Add(a.Resolved) {
				continue
			}
			acc.Add(classifier.TargetFile(d.Entry, a)...)
		}
		return nil
	})
	return acc.Findings(), err
}

// relevant reports whether a listed file is searched for: any file in a
// library directory, only executables in a program directory.
func relevant(a risk.Assessment, library bool) bool {
	if !a.Exists || a.IsDir {
		return false
	}
	return library || a.IsExecutable
}
