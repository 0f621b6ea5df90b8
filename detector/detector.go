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

// Package detector provides the interface for search-order detection plugins
// and the context they scan with.
package detector

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"bitbucket.org/creachadair/stringset"
	"github.com/gobwas/glob"
	"github.com/google/ldaudit/elfattr"
	"github.com/google/ldaudit/environment"
	"github.com/google/ldaudit/finding"
	"github.com/google/ldaudit/plugin"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/searchpath"
	"github.com/google/ldaudit/stats"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Detector is the interface for a detector plugin, used to scan for search-order
// escalation vectors.
type Detector interface {
	plugin.Plugin
	// Scan classifies the part of the scan context the detector is responsible
	// for. Errors about individual subjects are returned next to the findings
	// and don't invalidate them.
	Scan(ctx context.Context, sc *ScanContext) ([]*finding.Finding, error)
}

// ScanContext is the state shared by all detectors of one scan. It is not
// modified by detectors.
type ScanContext struct {
	Env environment.Snapshot
	// Entries are the search path entries collected at the start of the scan.
	Entries []searchpath.Entry
	// ConfigFiles are the absolute paths of the existing linker config files.
	ConfigFiles []string
	Checker     *risk.Checker
	Extractor   *elfattr.Extractor
	// SkipDir matches search directories whose files shouldn't be listed. May be nil.
	SkipDir glob.Glob
	// Workers bounds the concurrent directory listings and binary extractions.
	Workers int
	Stats   stats.Collector
	// Capabilities of the scanning environment.
	Capabilities *plugin.Capabilities
}

// EntriesFrom returns the entries with one of the given origins, in collection order.
func (sc *ScanContext) EntriesFrom(origins ...searchpath.Origin) []searchpath.Entry {
	var res []searchpath.Entry
	for _, e := range sc.Entries {
		if slices.Contains(origins, e.Origin) {
			res = append(res, e)
		}
	}
	return res
}

// ListedOrigins are the origins of the search directories whose files are
// looked at: PATH and every directory the dynamic linker searches.
var ListedOrigins = []searchpath.Origin{
	searchpath.OriginPath,
	searchpath.OriginLDLibraryPath,
	searchpath.OriginLDRunPath,
	searchpath.OriginLinkerDefault,
	searchpath.OriginLdSoConf,
	searchpath.OriginLdSoConfD,
}

// Dir is a search directory to list, with the first entry naming it.
type Dir struct {
	Entry searchpath.Entry
	Path  string
	// Library is set when the directory is searched by the dynamic linker, in
	// which case every file is relevant, not only executables.
	Library bool
}

// Dirs assesses the entries of the given origins and returns the existing
// directories among them, each once, in collection order. Current directory
// entries and anything that isn't a directory are dropped.
func (sc *ScanContext) Dirs(origins ...searchpath.Origin) []Dir {
	var dirs []Dir
	index := map[string]int{}
	for _, e := range sc.EntriesFrom(origins...) {
		a := sc.Checker.Assess(e.Raw, "")
		if !a.Exists || !a.IsDir {
			continue
		}
		if i, ok := index[a.Resolved]; ok {
			dirs[i].Library = dirs[i].Library || e.IsLibraryPath()
			continue
		}
		index[a.Resolved] = len(dirs)
		dirs = append(dirs, Dir{Entry: e, Path: a.Resolved, Library: e.IsLibraryPath()})
	}
	return dirs
}

// StatsCollector returns the stats collector, never nil.
func (sc *ScanContext) StatsCollector() stats.Collector {
	if sc.Stats == nil {
		return stats.NoopCollector{}
	}
	return sc.Stats
}

// ListFiles returns the absolute paths of the direct children of dir that
// aren't directories. Directories matching SkipDir yield nothing.
func (sc *ScanContext) ListFiles(dir string) ([]string, error) {
	start := time.Now()
	ds := &stats.DirScannedStats{Path: dir, Result: stats.DirScannedResultOK}
	defer func() {
		ds.Runtime = time.Since(start)
		sc.StatsCollector().AfterDirScanned(ds)
	}()

	if sc.SkipDir != nil && sc.SkipDir.Match(dir) {
		ds.Result = stats.DirScannedResultSkipped
		return nil, nil
	}
	des, err := sc.Checker.Host().ReadDir(dir)
	if err != nil {
		ds.Result = stats.DirScannedResultError
		ds.Error = err
		return nil, &SubjectError{Path: dir, Err: err}
	}
	var files []string
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, de.Name()))
	}
	ds.Files = len(files)
	return files, nil
}

// SubjectError is a failure to inspect one path. It never aborts a scan.
type SubjectError struct {
	Path string
	Err  error
}

func (e *SubjectError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *SubjectError) Unwrap() error { return e.Err }

// ForEach calls fn for every item on at most workers goroutines and waits for
// all of them. Unlike an errgroup, an error doesn't stop the other calls:
// all errors are combined with multierr.
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	var g errgroup.Group
	g.SetLimit(max(workers, 1))

	var mu sync.Mutex
	var errs error
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := fn(ctx, item); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	// The goroutines never return an error.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Seen is a set of paths already handled by a detector, safe for concurrent
// use. The zero value is empty.
type Seen struct {
	mu  sync.Mutex
	set stringset.Set
}

// Add inserts p and reports whether it wasn't in the set yet.
func (s *Seen) Add(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		s.set = stringset.New()
	}
	if s.set.Contains(p) {
		return false
	}
	s.set.Add(p)
	return true
}
