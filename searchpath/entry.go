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

// Package searchpath enumerates every directory or file the shell and the
// dynamic linker consult when resolving programs and shared libraries.
package searchpath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Origin identifies where a search path entry was read from.
type Origin int

// Origin values.
const (
	OriginUnknown Origin = iota
	OriginPath
	OriginLDLibraryPath
	OriginLDRunPath
	OriginLinkerDefault
	OriginLdSoPreload
	OriginLdSoConf
	OriginLdSoConfD
	OriginRpath
	OriginRunpath
)

var originNames = map[Origin]string{
	OriginPath:          "PATH",
	OriginLDLibraryPath: "LD_LIBRARY_PATH",
	OriginLDRunPath:     "LD_RUN_PATH",
	OriginLinkerDefault: "linker default search path",
	OriginLdSoPreload:   "/etc/ld.so.preload",
	OriginLdSoConf:      "/etc/ld.so.conf",
	OriginLdSoConfD:     "/etc/ld.so.conf.d",
	OriginRpath:         "RPATH",
	OriginRunpath:       "RUNPATH",
}

func (o Origin) String() string {
	if n, ok := originNames[o]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the origin by name.
func (o Origin) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Entry is one candidate path in a search order.
type Entry struct {
	Origin Origin
	// Raw is the value as read from its source, before any expansion.
	Raw string
	// Source is the ld.so.conf.d fragment the entry was read from, or the
	// binary declaring an RPATH/RUNPATH entry. Empty otherwise.
	Source string
	// RelativeBase is the directory of the declaring binary, used to expand
	// $ORIGIN. Only set for RPATH/RUNPATH entries.
	RelativeBase string
	// Index is the position of the entry within its source.
	Index int
}

// IsCurrentDir reports whether the entry denotes the current working
// directory: an empty segment or ".".
func (e Entry) IsCurrentDir() bool { return e.Raw == "" || e.Raw == "." }

// IsLibraryPath reports whether the entry is consulted by the dynamic linker
// rather than by the shell.
func (e Entry) IsLibraryPath() bool { return e.Origin != OriginPath && e.Origin != OriginUnknown }

func (e Entry) String() string {
	if e.Source != "" {
		return fmt.Sprintf("%s[%d] of %s = %q", e.Origin, e.Index, e.Source, e.Raw)
	}
	return fmt.Sprintf("%s[%d] = %q", e.Origin, e.Index, e.Raw)
}

// Split splits a list-separated value into entries, keeping empty segments as
// current directory entries.
func Split(origin Origin, value, source, base string) []Entry {
	parts := strings.Split(value, string(filepath.ListSeparator))
	entries := make([]Entry, 0, len(parts))
	for i, p := range parts {
		entries = append(entries, Entry{
			Origin:       origin,
			Raw:          p,
			Source:       source,
			RelativeBase: base,
			Index:        i,
		})
	}
	return entries
}
