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

// Package elfattr extracts the link-time attributes of executables and shared
// objects: RPATH, RUNPATH, program interpreter, unresolved dependencies and
// sanitizer runtimes.
package elfattr

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/ldaudit/risk"
	"github.com/google/ldaudit/searchpath"
	"github.com/google/ldaudit/tools"
	"go.uber.org/multierr"
)

// sanitizerRuntimes are the runtime libraries of the compiler sanitizers.
var sanitizerRuntimes = []string{"asan", "tsan", "msan", "lsan", "ubsan", "hwasan"}

// Record holds the attributes of one binary.
type Record struct {
	// Path is the canonical absolute path.
	Path     string
	Writable bool
	Setuid   bool
	// Rpath and Runpath are the entries of the dynamic section in declaration
	// order. The linker ignores RPATH when RUNPATH is present.
	Rpath       []searchpath.Entry
	Runpath     []searchpath.Entry
	Interpreter string
	// MissingDependencies are the needed libraries the linker couldn't find.
	MissingDependencies stringset.Set
	LinksSanitizer      bool
}

// Extractor builds Records. A nil reader or resolver disables the attributes
// that depend on it.
type Extractor struct {
	checker  *risk.Checker
	reader   tools.MetadataReader
	resolver tools.DependencyResolver
}

// New returns an Extractor.
func New(checker *risk.Checker, reader tools.MetadataReader, resolver tools.DependencyResolver) *Extractor {
	return &Extractor{checker: checker, reader: reader, resolver: resolver}
}

// Extract returns the record of the binary at path. Only existing regular
// files get a record; anything else returns (nil, nil). The returned error
// reports a tool failure for this subject; the record is still filled with
// whatever could be read.
func (e *Extractor) Extract(ctx context.Context, path string) (*Record, error) {
	a := e.checker.Assess(path, "")
	if !a.Exists || !a.IsRegular {
		return nil, nil
	}
	r := &Record{
		Path:                a.Resolved,
		Writable:            a.Writable,
		Setuid:              a.IsSetuid,
		MissingDependencies: stringset.New(),
	}

	var err error
	if e.reader != nil {
		err = multierr.Append(err, e.readMetadata(ctx, r))
	}
	if e.resolver != nil {
		err = multierr.Append(err, e.resolveDependencies(ctx, r))
	}
	return r, err
}

func (e *Extractor) readMetadata(ctx context.Context, r *Record) error {
	md, err := e.reader.ReadMetadata(ctx, r.Path)
	if errors.Is(err, tools.ErrNotELF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	base := filepath.Dir(r.Path)
	r.Rpath = splitAll(searchpath.OriginRpath, md.Rpath, r.Path, base)
	r.Runpath = splitAll(searchpath.OriginRunpath, md.Runpath, r.Path, base)
	r.Interpreter = md.Interpreter
	return nil
}

func (e *Extractor) resolveDependencies(ctx context.Context, r *Record) error {
	deps, err := e.resolver.ResolveDependencies(ctx, r.Path)
	if err != nil {
		return fmt.Errorf("resolving dependencies: %w", err)
	}
	for _, d := range deps {
		if d.Missing {
			r.MissingDependencies.Add(d.Name)
		}
		if IsSanitizerRuntime(d.Name) || (d.Path != "" && IsSanitizerRuntime(filepath.Base(d.Path))) {
			r.LinksSanitizer = true
		}
	}
	return nil
}

// splitAll splits every dynamic-section string and renumbers the entries in
// declaration order.
func splitAll(origin searchpath.Origin, values []string, owner, base string) []searchpath.Entry {
	var entries []searchpath.Entry
	for _, v := range values {
		for _, e := range searchpath.Split(origin, v, owner, base) {
			e.Index = len(entries)
			entries = append(entries, e)
		}
	}
	return entries
}

// IsSanitizerRuntime reports whether name is the file name of a sanitizer
// runtime library, e.g. "libasan.so.8".
func IsSanitizerRuntime(name string) bool {
	for _, s := range sanitizerRuntimes {
		if strings.HasPrefix(name, "lib"+s+".so") {
			return true
		}
	}
	return false
}
