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

package searchpath

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/google/ldaudit/environment"
	scanfs "github.com/google/ldaudit/fs"
	"github.com/google/ldaudit/log"
	"github.com/google/ldaudit/tools"
)

// Collector gathers the search order inputs of one environment snapshot.
type Collector struct {
	env    environment.Snapshot
	root   scanfs.FS
	tracer tools.LoaderTracer
}

// NewCollector returns a Collector reading linker configuration from root,
// which must be rooted at the system root. tracer may be nil, in which case
// the linker default search path is not collected.
func NewCollector(env environment.Snapshot, root scanfs.FS, tracer tools.LoaderTracer) *Collector {
	return &Collector{env: env, root: root, tracer: tracer}
}

// Collect returns all entries in a fixed source order: PATH, LD_LIBRARY_PATH,
// LD_RUN_PATH, the linker default search path, ld.so.preload, ld.so.conf and
// the ld.so.conf.d fragments. Unreadable sources contribute nothing.
func (c *Collector) Collect(ctx context.Context) []Entry {
	entries := c.EnvEntries()
	entries = append(entries, c.linkerDefault(ctx)...)

	for i, p := range c.readLines(PreloadPath, ParsePreload) {
		entries = append(entries, Entry{Origin: OriginLdSoPreload, Raw: p, Source: "/" + PreloadPath, Index: i})
	}
	for i, d := range c.readLines(ConfPath, ParseConf) {
		entries = append(entries, Entry{Origin: OriginLdSoConf, Raw: d, Source: "/" + ConfPath, Index: i})
	}
	for _, f := range c.confDFiles() {
		for i, d := range c.readLines(f, ParseConf) {
			entries = append(entries, Entry{Origin: OriginLdSoConfD, Raw: d, Source: "/" + f, Index: i})
		}
	}
	return entries
}

// EnvEntries returns the entries of PATH, LD_LIBRARY_PATH and LD_RUN_PATH.
// Unset variables contribute nothing; set but empty ones contribute a single
// current directory entry.
func (c *Collector) EnvEntries() []Entry {
	var entries []Entry
	for _, v := range []struct {
		name   string
		origin Origin
	}{
		{environment.VarPath, OriginPath},
		{environment.VarLDLibraryPath, OriginLDLibraryPath},
		{environment.VarLDRunPath, OriginLDRunPath},
	} {
		if value, ok := c.env.Lookup(v.name); ok {
			entries = append(entries, Split(v.origin, value, "", "")...)
		}
	}
	return entries
}

// ConfigFiles returns the absolute paths of the existing ld.so.conf and
// ld.so.conf.d fragments.
func (c *Collector) ConfigFiles() []string {
	var files []string
	if _, err := c.root.Stat(ConfPath); err == nil {
		files = append(files, "/"+ConfPath)
	}
	for _, f := range c.confDFiles() {
		files = append(files, "/"+f)
	}
	return files
}

func (c *Collector) linkerDefault(ctx context.Context) []Entry {
	if c.tracer == nil {
		return nil
	}
	dirs, err := c.tracer.DefaultSearchPath(ctx)
	if err != nil {
		log.Debugf("linker default search path unavailable: %v", err)
		return nil
	}
	entries := make([]Entry, 0, len(dirs))
	for i, d := range dirs {
		entries = append(entries, Entry{Origin: OriginLinkerDefault, Raw: d, Index: i})
	}
	return entries
}

func (c *Collector) confDFiles() []string {
	files, err := fs.Glob(c.root, ConfDGlob)
	if err != nil {
		log.Debugf("fs.Glob(%q): %v", ConfDGlob, err)
		return nil
	}
	return files
}

func (c *Collector) readLines(p string, parse func(io.Reader) []string) []string {
	f, err := c.root.Open(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debugf("reading /%s: %v", p, err)
		}
		return nil
	}
	defer f.Close()
	return parse(f)
}
